package handler

import (
	"github.com/adminsys/backoffice/internal/middleware"
	"github.com/adminsys/backoffice/internal/model"
	"github.com/adminsys/backoffice/internal/pkg/apperrors"
	"github.com/adminsys/backoffice/internal/service"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.svc.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, users)
}

// Get is open to admins and to the user themself.
func (h *UserHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if me := middleware.CurrentUser(c); !me.IsAdmin() && me.ID != id {
		_ = c.Error(apperrors.NewForbidden("not allowed to view this user"))
		return
	}
	user, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	var req model.UserUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.svc.Update(c.Request.Context(), middleware.RequestMeta(c), middleware.CurrentUser(c), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	okMessage(c, "user updated", user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.RequestMeta(c), middleware.CurrentUser(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	okMessage(c, "user deleted", nil)
}
