package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adminsys/backoffice/internal/model"
	"github.com/adminsys/backoffice/internal/pkg/apperrors"
	"github.com/adminsys/backoffice/internal/repository"
	"github.com/google/uuid"
)

var errTodoNotFound = apperrors.NewNotFound("todo not found")

// TodoService manages the caller's own items; other users' items look absent.
type TodoService struct {
	todos TodoStore
	audit *AuditService
}

func NewTodoService(todos TodoStore, audit *AuditService) *TodoService {
	return &TodoService{todos: todos, audit: audit}
}

func (s *TodoService) List(ctx context.Context, user *model.AuthUser) ([]*model.Todo, error) {
	todos, err := s.todos.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, apperrors.NewInternal("failed to list todos", err)
	}
	if todos == nil {
		todos = []*model.Todo{}
	}
	return todos, nil
}

func (s *TodoService) Create(ctx context.Context, meta *RequestMeta, user *model.AuthUser, req model.TodoCreateRequest) (*model.Todo, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.NewValidation("validation failed", map[string]string{"content": "is required"})
	}
	priority := req.Priority
	if priority == "" {
		priority = model.PriorityInfo
	}
	todo := &model.Todo{
		ID:       uuid.NewString(),
		UserID:   user.ID,
		Content:  content,
		Priority: priority,
		Deadline: req.Deadline,
	}
	if err := s.todos.Create(ctx, todo); err != nil {
		return nil, apperrors.NewInternal("failed to create todo", err)
	}
	s.audit.LogAction(meta, user, model.ActionCreate, model.ModuleTodo,
		"created todo", true, map[string]any{"todoId": todo.ID, "priority": string(priority)})
	return todo, nil
}

func (s *TodoService) Update(ctx context.Context, meta *RequestMeta, user *model.AuthUser, id string, req model.TodoUpdateRequest) (*model.Todo, error) {
	todo, err := s.get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if req.Content != nil {
		if c := strings.TrimSpace(*req.Content); c != "" {
			todo.Content = c
		}
	}
	if req.Priority != nil && *req.Priority != "" {
		todo.Priority = *req.Priority
	}
	if req.Deadline != nil {
		todo.Deadline = req.Deadline
	}
	if err := s.todos.Update(ctx, todo); err != nil {
		return nil, apperrors.NewInternal("failed to update todo", err)
	}
	s.audit.LogAction(meta, user, model.ActionUpdate, model.ModuleTodo,
		"updated todo", true, map[string]any{"todoId": id})
	return todo, nil
}

func (s *TodoService) SetCompleted(ctx context.Context, meta *RequestMeta, user *model.AuthUser, id string, completed bool) (*model.Todo, error) {
	todo, err := s.get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	todo.Completed = completed
	if err := s.todos.Update(ctx, todo); err != nil {
		return nil, apperrors.NewInternal("failed to update todo", err)
	}
	s.audit.LogAction(meta, user, model.ActionUpdate, model.ModuleTodo,
		fmt.Sprintf("set todo completed=%t", completed), true, map[string]any{"todoId": id})
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, meta *RequestMeta, user *model.AuthUser, id string) error {
	err := s.todos.DeleteForUser(ctx, id, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return errTodoNotFound
	}
	if err != nil {
		return apperrors.NewInternal("failed to delete todo", err)
	}
	s.audit.LogAction(meta, user, model.ActionDelete, model.ModuleTodo,
		"deleted todo", true, map[string]any{"todoId": id})
	return nil
}

func (s *TodoService) get(ctx context.Context, user *model.AuthUser, id string) (*model.Todo, error) {
	todo, err := s.todos.GetForUser(ctx, id, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errTodoNotFound
	}
	if err != nil {
		return nil, apperrors.NewInternal("failed to load todo", err)
	}
	return todo, nil
}
