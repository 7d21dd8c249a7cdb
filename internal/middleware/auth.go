package middleware

import (
	"strings"

	"github.com/adminsys/backoffice/internal/pkg/apperrors"
	"github.com/adminsys/backoffice/internal/pkg/jwtauth"
	"github.com/gin-gonic/gin"
)

const HeaderAuthorization = "Authorization"

// Auth requires a valid bearer token and stores the caller on the context.
func Auth(tokens *jwtauth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderAuthorization)
		token, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			_ = c.Error(apperrors.NewUnauthorized("missing bearer token"))
			c.Abort()
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			_ = c.Error(apperrors.NewUnauthorized("invalid or expired token"))
			c.Abort()
			return
		}

		// 将用户信息存入上下文
		c.Set(ContextUserKey, claims.AuthUser())
		c.Next()
	}
}
