package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adminsys/backoffice/internal/model"
	"github.com/adminsys/backoffice/internal/pkg/apperrors"
	"github.com/adminsys/backoffice/internal/repository"
	"github.com/google/uuid"
)

type NoticeService struct {
	notices NoticeStore
	users   UserStore
	audit   *AuditService
	now     func() time.Time
}

func NewNoticeService(notices NoticeStore, users UserStore, audit *AuditService) *NoticeService {
	return &NoticeService{notices: notices, users: users, audit: audit, now: time.Now}
}

// List returns notices newest first with CreatedByName resolved.
func (s *NoticeService) List(ctx context.Context) ([]*model.Notice, error) {
	notices, err := s.notices.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternal("failed to list notices", err)
	}
	if notices == nil {
		return []*model.Notice{}, nil
	}
	s.resolveAuthors(ctx, notices)
	return notices, nil
}

func (s *NoticeService) Get(ctx context.Context, id string) (*model.Notice, error) {
	n, err := s.notices.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("notice not found")
	}
	if err != nil {
		return nil, apperrors.NewInternal("failed to load notice", err)
	}
	s.resolveAuthors(ctx, []*model.Notice{n})
	return n, nil
}

func (s *NoticeService) Create(ctx context.Context, meta *RequestMeta, actor *model.AuthUser, req model.NoticeCreateRequest) (*model.Notice, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return nil, apperrors.NewValidation("title and content are required", map[string]string{
			"title":   "is required",
			"content": "is required",
		})
	}
	typ := req.Type
	if typ == "" {
		typ = model.NoticeInfo
	}
	n := &model.Notice{
		ID:            uuid.NewString(),
		Title:         title,
		Content:       content,
		Type:          typ,
		CreatedBy:     actor.ID,
		CreatedByName: actor.Username,
		Date:          s.now().UTC(),
	}
	if err := s.notices.Create(ctx, n); err != nil {
		return nil, apperrors.NewInternal("failed to create notice", err)
	}
	s.audit.LogAction(meta, actor, model.ActionCreate, model.ModuleNotice,
		fmt.Sprintf("created notice %q", n.Title), true, map[string]any{"noticeId": n.ID})
	return n, nil
}

func (s *NoticeService) Update(ctx context.Context, meta *RequestMeta, actor *model.AuthUser, id string, req model.NoticeUpdateRequest) (*model.Notice, error) {
	n, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// 空值保留原字段
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		n.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil && strings.TrimSpace(*req.Content) != "" {
		n.Content = strings.TrimSpace(*req.Content)
	}
	if req.Type != nil && *req.Type != "" {
		n.Type = *req.Type
	}
	if err := s.notices.Update(ctx, n); err != nil {
		return nil, apperrors.NewInternal("failed to update notice", err)
	}
	s.audit.LogAction(meta, actor, model.ActionUpdate, model.ModuleNotice,
		fmt.Sprintf("updated notice %q", n.Title), true, map[string]any{"noticeId": id})
	return n, nil
}

func (s *NoticeService) Delete(ctx context.Context, meta *RequestMeta, actor *model.AuthUser, id string) error {
	err := s.notices.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("notice not found")
	}
	if err != nil {
		return apperrors.NewInternal("failed to delete notice", err)
	}
	s.audit.LogAction(meta, actor, model.ActionDelete, model.ModuleNotice,
		"deleted notice", true, map[string]any{"noticeId": id})
	return nil
}

// Seed inserts the default notices when the table is empty. Returns how many were created.
func (s *NoticeService) Seed(ctx context.Context, createdBy string) (int, error) {
	count, err := s.notices.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	defaults := defaultNotices(createdBy)
	for _, n := range defaults {
		if err := s.notices.Create(ctx, n); err != nil {
			return 0, fmt.Errorf("seed notice %q: %w", n.Title, err)
		}
	}
	return len(defaults), nil
}

func defaultNotices(createdBy string) []*model.Notice {
	day := func(d int) time.Time { return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC) }
	return []*model.Notice{
		{
			ID:        uuid.NewString(),
			Title:     "System launch",
			Content:   "The back-office system is now live. Welcome aboard!",
			Type:      model.NoticeSuccess,
			CreatedBy: createdBy,
			Date:      day(18),
		},
		{
			ID:        uuid.NewString(),
			Title:     "Feature update",
			Content:   "Users can now edit their own profile from the personal settings page.",
			Type:      model.NoticeInfo,
			CreatedBy: createdBy,
			Date:      day(17),
		},
		{
			ID:        uuid.NewString(),
			Title:     "Scheduled maintenance",
			Content:   "Maintenance runs this Sunday from 02:00 to 04:00. The system may be unavailable during that window.",
			Type:      model.NoticeWarning,
			CreatedBy: createdBy,
			Date:      day(16),
		},
	}
}

// resolveAuthors fills CreatedByName. Lookup failures leave names empty.
func (s *NoticeService) resolveAuthors(ctx context.Context, notices []*model.Notice) {
	ids := make([]string, 0, len(notices))
	seen := make(map[string]bool)
	for _, n := range notices {
		if n.CreatedBy != "" && !seen[n.CreatedBy] {
			seen[n.CreatedBy] = true
			ids = append(ids, n.CreatedBy)
		}
	}
	if len(ids) == 0 {
		return
	}
	names, err := s.users.UsernamesByID(ctx, ids)
	if err != nil {
		return
	}
	for _, n := range notices {
		n.CreatedByName = names[n.CreatedBy]
	}
}
