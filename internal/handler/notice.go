package handler

import (
	"github.com/adminsys/backoffice/internal/middleware"
	"github.com/adminsys/backoffice/internal/model"
	"github.com/adminsys/backoffice/internal/service"
	"github.com/gin-gonic/gin"
)

type NoticeHandler struct {
	svc *service.NoticeService
}

func NewNoticeHandler(svc *service.NoticeService) *NoticeHandler {
	return &NoticeHandler{svc: svc}
}

func (h *NoticeHandler) List(c *gin.Context) {
	notices, err := h.svc.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, notices)
}

func (h *NoticeHandler) Get(c *gin.Context) {
	n, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, n)
}

func (h *NoticeHandler) Create(c *gin.Context) {
	var req model.NoticeCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.svc.Create(c.Request.Context(), middleware.RequestMeta(c), middleware.CurrentUser(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, "notice created", n)
}

func (h *NoticeHandler) Update(c *gin.Context) {
	var req model.NoticeUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.svc.Update(c.Request.Context(), middleware.RequestMeta(c), middleware.CurrentUser(c), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	okMessage(c, "notice updated", n)
}

func (h *NoticeHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.RequestMeta(c), middleware.CurrentUser(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	okMessage(c, "notice deleted", nil)
}
