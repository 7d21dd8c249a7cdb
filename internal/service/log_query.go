package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/adminsys/backoffice/internal/model"
	"github.com/adminsys/backoffice/internal/pkg/apperrors"
	"github.com/adminsys/backoffice/internal/pkg/metrics"
	"github.com/adminsys/backoffice/internal/repository"
)

const (
	overviewDays         = 7
	DefaultRetentionDays = 90
	dateLayout           = "2006-01-02"
	minUnixDigits        = 9
)

// OverviewCache is satisfied by repository.OverviewCache (Redis).
type OverviewCache interface {
	Get(ctx context.Context) (*model.LogOverview, error)
	Set(ctx context.Context, ov *model.LogOverview) error
	Invalidate(ctx context.Context) error
}

// LogListParams are the raw query parameters of GET /api/logs.
type LogListParams struct {
	Page       string `form:"page"`
	Limit      string `form:"limit"`
	Sort       string `form:"sort"`
	Module     string `form:"module"`
	ActionType string `form:"actionType"`
	Status     string `form:"status"`
	Username   string `form:"username"`
	UserID     string `form:"userId"`
	StartDate  string `form:"startDate"`
	EndDate    string `form:"endDate"`
}

type LogQueryOption func(*LogQueryService)

func WithOverviewCache(c OverviewCache) LogQueryOption {
	return func(s *LogQueryService) { s.cache = c }
}

func WithClock(now func() time.Time) LogQueryOption {
	return func(s *LogQueryService) { s.now = now }
}

// WithLocation sets the timezone that defines calendar days. Defaults to time.Local.
func WithLocation(loc *time.Location) LogQueryOption {
	return func(s *LogQueryService) { s.loc = loc }
}

func WithPageSizes(defaultLimit, maxLimit int) LogQueryOption {
	return func(s *LogQueryService) {
		if defaultLimit > 0 {
			s.defaultLimit = defaultLimit
		}
		if maxLimit >= s.defaultLimit {
			s.maxLimit = maxLimit
		}
	}
}

func WithLogger(log *slog.Logger) LogQueryOption {
	return func(s *LogQueryService) { s.log = log }
}

// LogQueryService serves read access and retention cleanup over the audit store.
type LogQueryService struct {
	repo         AuditRepo
	cache        OverviewCache
	now          func() time.Time
	loc          *time.Location
	defaultLimit int
	maxLimit     int
	log          *slog.Logger
}

func NewLogQueryService(repo AuditRepo, opts ...LogQueryOption) *LogQueryService {
	s := &LogQueryService{
		repo:         repo,
		now:          time.Now,
		loc:          time.Local,
		defaultLimit: 20,
		maxLimit:     100,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LogQueryService) List(ctx context.Context, p LogListParams) (*model.AuditPage, error) {
	q, err := s.parseQuery(p)
	if err != nil {
		return nil, err
	}
	logs, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, apperrors.NewInternal("failed to list logs", err)
	}
	if logs == nil {
		logs = []*model.AuditEntry{}
	}
	return &model.AuditPage{Total: total, Page: q.Page, Limit: q.Limit, Logs: logs}, nil
}

func (s *LogQueryService) Get(ctx context.Context, id string) (*model.AuditEntry, error) {
	entry, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("log not found")
	}
	if err != nil {
		return nil, apperrors.NewInternal("failed to get log", err)
	}
	return entry, nil
}

// Overview aggregates counts for the trailing seven local calendar days.
func (s *LogQueryService) Overview(ctx context.Context) (*model.LogOverview, error) {
	if s.cache != nil {
		ov, err := s.cache.Get(ctx)
		switch {
		case err == nil:
			metrics.OverviewCache.WithLabelValues("hit").Inc()
			return ov, nil
		case errors.Is(err, repository.ErrCacheMiss):
			metrics.OverviewCache.WithLabelValues("miss").Inc()
		default:
			metrics.OverviewCache.WithLabelValues("error").Inc()
			s.log.Warn("overview cache read failed", "error", err.Error())
		}
	}

	ov, err := s.computeOverview(ctx)
	if err != nil {
		return nil, apperrors.NewInternal("failed to compute overview", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, ov); err != nil {
			s.log.Warn("overview cache write failed", "error", err.Error())
		}
	}
	return ov, nil
}

func (s *LogQueryService) computeOverview(ctx context.Context) (*model.LogOverview, error) {
	today := startOfDay(s.now().In(s.loc))
	windowStart := today.AddDate(0, 0, -(overviewDays - 1))

	todayCount, err := s.repo.Count(ctx, model.AuditFilter{From: &today})
	if err != nil {
		return nil, err
	}
	totalCount, err := s.repo.Count(ctx, model.AuditFilter{})
	if err != nil {
		return nil, err
	}
	errorCount, err := s.repo.Count(ctx, model.AuditFilter{Status: model.StatusFailure})
	if err != nil {
		return nil, err
	}
	window := model.AuditFilter{From: &windowStart}
	actionCounts, err := s.repo.CountBy(ctx, model.GroupActionType, window)
	if err != nil {
		return nil, err
	}
	moduleCounts, err := s.repo.CountBy(ctx, model.GroupModule, window)
	if err != nil {
		return nil, err
	}

	daily := make([]model.DailyCount, 0, overviewDays)
	for i := 0; i < overviewDays; i++ {
		start := windowStart.AddDate(0, 0, i)
		end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
		n, err := s.repo.Count(ctx, model.AuditFilter{From: &start, To: &end})
		if err != nil {
			return nil, err
		}
		daily = append(daily, model.DailyCount{Date: start.Format(dateLayout), Count: n})
	}

	return &model.LogOverview{
		TodayCount:       todayCount,
		TotalCount:       totalCount,
		ErrorCount:       errorCount,
		ActionTypeCounts: actionCounts,
		DailyCounts:      daily,
		ModuleCounts:     moduleCounts,
	}, nil
}

// Cleanup deletes entries created more than days days ago.
func (s *LogQueryService) Cleanup(ctx context.Context, days int) (int64, error) {
	if days < 0 {
		return 0, apperrors.NewValidation("invalid days", map[string]string{"days": "must be a non-negative integer"})
	}
	cutoff := s.now().AddDate(0, 0, -days)
	deleted, err := s.repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, apperrors.NewInternal("failed to clean up logs", err)
	}
	metrics.AuditCleanupDeleted.Add(float64(deleted))
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn("overview cache invalidate failed", "error", err.Error())
		}
	}
	s.log.Info("audit log cleanup", "days", days, "cutoff", cutoff, "deleted", deleted)
	return deleted, nil
}

// ParseCleanupDays reads the days query value; empty means fallback.
func ParseCleanupDays(raw string, fallback int) (int, error) {
	if raw == "" {
		if fallback < 0 {
			fallback = DefaultRetentionDays
		}
		return fallback, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		return 0, apperrors.NewValidation("invalid days", map[string]string{"days": "must be a non-negative integer"})
	}
	return days, nil
}

func (s *LogQueryService) parseQuery(p LogListParams) (model.AuditQuery, error) {
	fields := map[string]string{}
	q := model.AuditQuery{Page: 1, Limit: s.defaultLimit}

	if p.Page != "" {
		page, err := strconv.Atoi(p.Page)
		if err != nil || page < 1 {
			fields["page"] = "must be a positive integer"
		} else {
			q.Page = page
		}
	}
	if p.Limit != "" {
		limit, err := strconv.Atoi(p.Limit)
		if err != nil || limit < 1 {
			fields["limit"] = "must be a positive integer"
		} else {
			q.Limit = min(limit, s.maxLimit)
		}
	}

	sort, err := model.ParseSort(p.Sort)
	if err != nil {
		fields["sort"] = "unsupported sort field"
	}
	q.Sort = sort

	f := &q.Filter
	if p.Module != "" {
		if m := model.Module(p.Module); m.Valid() {
			f.Module = m
		} else {
			fields["module"] = "unknown module"
		}
	}
	if p.ActionType != "" {
		if a := model.ActionType(p.ActionType); a.Valid() {
			f.ActionType = a
		} else {
			fields["actionType"] = "unknown action type"
		}
	}
	if p.Status != "" {
		if st := model.Status(p.Status); st.Valid() {
			f.Status = st
		} else {
			fields["status"] = "unknown status"
		}
	}
	f.Username = p.Username
	f.UserID = p.UserID

	if p.StartDate != "" {
		t, err := parseDateParam(p.StartDate, false, s.loc)
		if err != nil {
			fields["startDate"] = "invalid date"
		} else {
			f.From = &t
		}
	}
	if p.EndDate != "" {
		t, err := parseDateParam(p.EndDate, true, s.loc)
		if err != nil {
			fields["endDate"] = "invalid date"
		} else {
			f.To = &t
		}
	}

	if len(fields) > 0 {
		return q, apperrors.NewValidation("invalid query parameters", fields)
	}
	return q, nil
}

// parseDateParam accepts RFC3339, YYYY-MM-DD (in loc) or unix seconds with at
// least nine digits. A bare date used as an upper bound covers the whole day.
func parseDateParam(raw string, endOfDay bool, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(dateLayout, raw, loc); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return t, nil
	}
	// 8-digit values like 20240101 are compact dates, not epoch seconds
	if len(raw) < minUnixDigits {
		return time.Time{}, fmt.Errorf("ambiguous date %q", raw)
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(secs, 0), nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
