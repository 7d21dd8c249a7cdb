package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/adminsys/backoffice/internal/model"
	"github.com/adminsys/backoffice/internal/pkg/apperrors"
	"github.com/adminsys/backoffice/internal/pkg/jwtauth"
	"github.com/adminsys/backoffice/internal/pkg/metrics"
	"github.com/adminsys/backoffice/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var errBadCredentials = apperrors.NewUnauthorized("invalid username or password")

type AuthService struct {
	users  UserStore
	tokens *jwtauth.Manager
	audit  *AuditService
	cost   int
}

func NewAuthService(users UserStore, tokens *jwtauth.Manager, audit *AuditService, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, tokens: tokens, audit: audit, cost: bcryptCost}
}

func (s *AuthService) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.users.Exists(ctx, req.Username, req.Email)
	if err != nil {
		return nil, apperrors.NewInternal("failed to check user", err)
	}
	if exists {
		return nil, apperrors.New(apperrors.ErrConflict, "username or email already exists", nil)
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, apperrors.NewInternal("failed to hash password", err)
	}
	user := &model.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.New(apperrors.ErrConflict, "username or email already exists", err)
		}
		return nil, apperrors.NewInternal("failed to create user", err)
	}
	return user, nil
}

// Login verifies credentials and issues a token. Every attempt is audited.
func (s *AuthService) Login(ctx context.Context, meta *RequestMeta, req model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if errors.Is(err, repository.ErrNotFound) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		s.audit.LogLogin(meta, nil, false, fmt.Sprintf("unknown user %q", req.Username))
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, apperrors.NewInternal("failed to load user", err)
	}

	au := user.AuthUser()
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		s.audit.LogLogin(meta, au, false, "wrong password")
		return nil, errBadCredentials
	}

	token, err := s.tokens.Generate(au)
	if err != nil {
		return nil, apperrors.NewInternal("failed to issue token", err)
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	s.audit.LogLogin(meta, au, true, "")
	return &model.LoginResponse{Token: token, User: au}, nil
}

func (s *AuthService) Logout(meta *RequestMeta, user *model.AuthUser) {
	s.audit.LogLogout(meta, user)
}

func (s *AuthService) Me(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("user not found")
	}
	if err != nil {
		return nil, apperrors.NewInternal("failed to load user", err)
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap admin when no user has that name yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password, email string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	_, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	hash, err := s.hash(password)
	if err != nil {
		return false, err
	}
	admin := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return false, err
	}
	s.audit.LogAction(nil, nil, model.ActionCreate, model.ModuleUser,
		fmt.Sprintf("bootstrap admin %q created", username), true, map[string]any{"userId": admin.ID})
	return true, nil
}

// ResetAdminPassword sets a new password on username, or on the first admin
// account when username does not exist.
func (s *AuthService) ResetAdminPassword(ctx context.Context, username, password string) (*model.User, error) {
	if password == "" {
		return nil, fmt.Errorf("password must not be empty")
	}
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		user, err = s.firstAdmin(ctx)
	}
	if err != nil {
		return nil, err
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.audit.LogAction(nil, nil, model.ActionUpdate, model.ModuleUser,
		fmt.Sprintf("password reset for %q", user.Username), true, map[string]any{"userId": user.ID})
	return user, nil
}

func (s *AuthService) firstAdmin(ctx context.Context) (*model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Role == model.RoleAdmin {
			return u, nil
		}
	}
	return nil, fmt.Errorf("no admin user found: %w", repository.ErrNotFound)
}
