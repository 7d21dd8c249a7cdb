package handler

import (
	"github.com/adminsys/backoffice/internal/middleware"
	"github.com/adminsys/backoffice/internal/model"
	"github.com/adminsys/backoffice/internal/service"
	"github.com/gin-gonic/gin"
)

type TodoHandler struct {
	svc *service.TodoService
}

func NewTodoHandler(svc *service.TodoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

func (h *TodoHandler) List(c *gin.Context) {
	todos, err := h.svc.List(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	ok(c, todos)
}

func (h *TodoHandler) Create(c *gin.Context) {
	var req model.TodoCreateRequest
	if !bindJSON(c, &req) {
		return
	}
	todo, err := h.svc.Create(c.Request.Context(), middleware.RequestMeta(c), middleware.CurrentUser(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	created(c, "todo created", todo)
}

func (h *TodoHandler) Update(c *gin.Context) {
	var req model.TodoUpdateRequest
	if !bindJSON(c, &req) {
		return
	}
	todo, err := h.svc.Update(c.Request.Context(), middleware.RequestMeta(c), middleware.CurrentUser(c), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	okMessage(c, "todo updated", todo)
}

func (h *TodoHandler) SetStatus(c *gin.Context) {
	var req model.TodoStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	todo, err := h.svc.SetCompleted(c.Request.Context(), middleware.RequestMeta(c), middleware.CurrentUser(c), c.Param("id"), *req.Completed)
	if err != nil {
		_ = c.Error(err)
		return
	}
	okMessage(c, "todo status updated", todo)
}

func (h *TodoHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.RequestMeta(c), middleware.CurrentUser(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	okMessage(c, "todo deleted", nil)
}
