package middleware

import (
	"github.com/adminsys/backoffice/internal/pkg/apperrors"
	"github.com/adminsys/backoffice/internal/service"
	"github.com/gin-gonic/gin"
)

// LoginRateLimit throttles requests per client IP.
func LoginRateLimit(limiter *service.KeyedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter.Allow(c.ClientIP()) {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		_ = c.Error(apperrors.New(apperrors.ErrRateLimited, "too many login attempts, try again later", nil))
		c.Abort()
	}
}
