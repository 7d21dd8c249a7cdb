package service

import (
	"context"

	"github.com/adminsys/backoffice/internal/model"
)

// Store contracts implemented by the gorm repositories in internal/repository.
// Not-found and duplicate conditions surface as repository.ErrNotFound / ErrDuplicate.

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Exists(ctx context.Context, username, email string) (bool, error)
	List(ctx context.Context) ([]*model.User, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id string) error
	UsernamesByID(ctx context.Context, ids []string) (map[string]string, error)
}

type TodoStore interface {
	ListByUser(ctx context.Context, userID string) ([]*model.Todo, error)
	GetForUser(ctx context.Context, id, userID string) (*model.Todo, error)
	Create(ctx context.Context, t *model.Todo) error
	Update(ctx context.Context, t *model.Todo) error
	DeleteForUser(ctx context.Context, id, userID string) error
}

type NoticeStore interface {
	List(ctx context.Context) ([]*model.Notice, error)
	Get(ctx context.Context, id string) (*model.Notice, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, n *model.Notice) error
	Update(ctx context.Context, n *model.Notice) error
	Delete(ctx context.Context, id string) error
}
