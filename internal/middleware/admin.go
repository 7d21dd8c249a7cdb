package middleware

import (
	"github.com/adminsys/backoffice/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

// RequireAdmin must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			_ = c.Error(apperrors.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}
		if !user.IsAdmin() {
			_ = c.Error(apperrors.NewForbidden("admin role required"))
			c.Abort()
			return
		}
		c.Next()
	}
}
