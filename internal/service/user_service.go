package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adminsys/backoffice/internal/model"
	"github.com/adminsys/backoffice/internal/pkg/apperrors"
	"github.com/adminsys/backoffice/internal/repository"
)

type UserService struct {
	users UserStore
	audit *AuditService
}

func NewUserService(users UserStore, audit *AuditService) *UserService {
	return &UserService{users: users, audit: audit}
}

func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternal("failed to list users", err)
	}
	if users == nil {
		users = []*model.User{}
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("user not found")
	}
	if err != nil {
		return nil, apperrors.NewInternal("failed to load user", err)
	}
	return user, nil
}

// Update lets admins edit anyone and users edit themselves. Only admins may change roles.
func (s *UserService) Update(ctx context.Context, meta *RequestMeta, actor *model.AuthUser, id string, req model.UserUpdateRequest) (*model.User, error) {
	if !actor.IsAdmin() && actor.ID != id {
		return nil, apperrors.NewForbidden("not allowed to modify this user")
	}
	if req.Role != nil && !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("only admins can change roles")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	changed := []string{}
	if req.Username != nil && *req.Username != user.Username {
		user.Username = strings.TrimSpace(*req.Username)
		changed = append(changed, "username")
	}
	if req.Email != nil && *req.Email != user.Email {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
		changed = append(changed, "email")
	}
	if req.Role != nil && *req.Role != user.Role {
		user.Role = *req.Role
		changed = append(changed, "role")
	}

	if err := s.users.Update(ctx, user); err != nil {
		s.audit.LogAction(meta, actor, model.ActionUpdate, model.ModuleUser,
			fmt.Sprintf("update user %s failed", id), false, map[string]any{"userId": id})
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.New(apperrors.ErrConflict, "username or email already exists", err)
		}
		return nil, apperrors.NewInternal("failed to update user", err)
	}
	s.audit.LogAction(meta, actor, model.ActionUpdate, model.ModuleUser,
		fmt.Sprintf("updated user %s", user.Username), true, map[string]any{"userId": id, "fields": changed})
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, meta *RequestMeta, actor *model.AuthUser, id string) error {
	err := s.users.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("user not found")
	}
	if err != nil {
		return apperrors.NewInternal("failed to delete user", err)
	}
	s.audit.LogAction(meta, actor, model.ActionDelete, model.ModuleUser,
		fmt.Sprintf("deleted user %s", id), true, map[string]any{"userId": id})
	return nil
}
