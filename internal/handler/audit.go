package handler

import (
	"fmt"

	"github.com/adminsys/backoffice/internal/pkg/apperrors"
	"github.com/adminsys/backoffice/internal/service"
	"github.com/gin-gonic/gin"
)

// AuditHandler serves /api/logs. All routes are admin-only.
type AuditHandler struct {
	svc           *service.LogQueryService
	retentionDays int
}

func NewAuditHandler(svc *service.LogQueryService, retentionDays int) *AuditHandler {
	return &AuditHandler{svc: svc, retentionDays: retentionDays}
}

func (h *AuditHandler) List(c *gin.Context) {
	var params service.LogListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		_ = c.Error(apperrors.NewInvalidRequest("invalid query parameters"))
		return
	}
	page, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, page)
}

func (h *AuditHandler) Get(c *gin.Context) {
	entry, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, entry)
}

func (h *AuditHandler) Overview(c *gin.Context) {
	ov, err := h.svc.Overview(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, ov)
}

// Cleanup permanently deletes entries older than ?days (default retention window).
func (h *AuditHandler) Cleanup(c *gin.Context) {
	days, err := service.ParseCleanupDays(c.Query("days"), h.retentionDays)
	if err != nil {
		_ = c.Error(err)
		return
	}
	deleted, err := h.svc.Cleanup(c.Request.Context(), days)
	if err != nil {
		_ = c.Error(err)
		return
	}
	okMessage(c, fmt.Sprintf("deleted %d log entries older than %d days", deleted, days),
		gin.H{"deletedCount": deleted})
}
