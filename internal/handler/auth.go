package handler

import (
	"github.com/adminsys/backoffice/internal/middleware"
	"github.com/adminsys/backoffice/internal/model"
	"github.com/adminsys/backoffice/internal/service"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, "registration successful", user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), middleware.RequestMeta(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	okMessage(c, "login successful", resp)
}

// Logout only records the event; tokens are stateless and expire on their own.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.svc.Logout(middleware.RequestMeta(c), middleware.CurrentUser(c))
	okMessage(c, "logout successful", nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.svc.Me(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, user)
}
