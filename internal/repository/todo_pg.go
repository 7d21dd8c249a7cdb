package repository

import (
	"context"

	"github.com/adminsys/backoffice/internal/model"
	"gorm.io/gorm"
)

type TodoRepo struct {
	db *gorm.DB
}

func NewTodoRepo(db *gorm.DB) *TodoRepo {
	return &TodoRepo{db: db}
}

// ListByUser returns the user's items, newest first.
func (r *TodoRepo) ListByUser(ctx context.Context, userID string) ([]*model.Todo, error) {
	var todos []*model.Todo
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&todos).Error
	return todos, err
}

func (r *TodoRepo) GetForUser(ctx context.Context, id, userID string) (*model.Todo, error) {
	var t model.Todo
	if err := r.db.WithContext(ctx).First(&t, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *TodoRepo) Create(ctx context.Context, t *model.Todo) error {
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r *TodoRepo) Update(ctx context.Context, t *model.Todo) error {
	return translate(r.db.WithContext(ctx).Save(t).Error)
}

func (r *TodoRepo) DeleteForUser(ctx context.Context, id, userID string) error {
	return affected(r.db.WithContext(ctx).Delete(&model.Todo{}, "id = ? AND user_id = ?", id, userID))
}
