package middleware

import (
	"github.com/adminsys/backoffice/internal/model"
	"github.com/adminsys/backoffice/internal/service"
	"github.com/gin-gonic/gin"
)

const ContextUserKey = "user"

// CurrentUser returns the identity set by Auth, or nil on public routes.
func CurrentUser(c *gin.Context) *model.AuthUser {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*model.AuthUser)
	return u
}

func RequestMeta(c *gin.Context) *service.RequestMeta {
	return &service.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
