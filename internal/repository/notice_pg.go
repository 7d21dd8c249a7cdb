package repository

import (
	"context"

	"github.com/adminsys/backoffice/internal/model"
	"gorm.io/gorm"
)

type NoticeRepo struct {
	db *gorm.DB
}

func NewNoticeRepo(db *gorm.DB) *NoticeRepo {
	return &NoticeRepo{db: db}
}

func (r *NoticeRepo) List(ctx context.Context) ([]*model.Notice, error) {
	var notices []*model.Notice
	err := r.db.WithContext(ctx).Order("date DESC").Find(&notices).Error
	return notices, err
}

func (r *NoticeRepo) Get(ctx context.Context, id string) (*model.Notice, error) {
	var n model.Notice
	if err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

func (r *NoticeRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Notice{}).Count(&n).Error
	return n, err
}

func (r *NoticeRepo) Create(ctx context.Context, n *model.Notice) error {
	return translate(r.db.WithContext(ctx).Create(n).Error)
}

func (r *NoticeRepo) Update(ctx context.Context, n *model.Notice) error {
	return translate(r.db.WithContext(ctx).Save(n).Error)
}

func (r *NoticeRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.WithContext(ctx).Delete(&model.Notice{}, "id = ?", id))
}
