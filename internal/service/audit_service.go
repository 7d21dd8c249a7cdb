package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/adminsys/backoffice/internal/model"
	"github.com/adminsys/backoffice/internal/pkg/metrics"
)

// AuditRepo is the audit record store. Postgres, Mongo and the bounded in-memory store implement it.
type AuditRepo interface {
	Insert(ctx context.Context, entry *model.AuditEntry) error
	Get(ctx context.Context, id string) (*model.AuditEntry, error)
	List(ctx context.Context, q model.AuditQuery) ([]*model.AuditEntry, int64, error)
	Count(ctx context.Context, f model.AuditFilter) (int64, error)
	CountBy(ctx context.Context, field model.GroupField, f model.AuditFilter) (map[string]int64, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RequestMeta carries the caller address and agent into an audit entry.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// AuditService writes audit entries. Failures never reach the caller; they are
// logged and counted instead.
type AuditService struct {
	repo AuditRepo
	log  *slog.Logger
	wg   sync.WaitGroup
}

func NewAuditService(repo AuditRepo, log *slog.Logger) *AuditService {
	if log == nil {
		log = slog.Default()
	}
	return &AuditService{repo: repo, log: log}
}

// Record applies defaults, validates and persists entry. Returns the stored
// entry, or nil when it was rejected or the store failed.
func (s *AuditService) Record(ctx context.Context, entry *model.AuditEntry) *model.AuditEntry {
	if entry == nil {
		return nil
	}
	entry.ApplyDefaults()
	if err := entry.Validate(); err != nil {
		metrics.AuditWrites.WithLabelValues("invalid").Inc()
		s.log.Warn("audit entry rejected",
			"error", err.Error(),
			"action_type", entry.ActionType,
			"module", entry.Module,
		)
		return nil
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		metrics.AuditWrites.WithLabelValues("failure").Inc()
		s.log.Error("failed to write audit entry",
			"error", err.Error(),
			"action_type", entry.ActionType,
			"module", entry.Module,
			"description", entry.Description,
		)
		return nil
	}
	metrics.AuditWrites.WithLabelValues("success").Inc()
	return entry
}

// Submit records entry on its own goroutine. Close waits for it.
func (s *AuditService) Submit(entry *model.AuditEntry) {
	if entry == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				metrics.AuditWrites.WithLabelValues("failure").Inc()
				s.log.Error("audit write panicked", "panic", fmt.Sprint(r))
			}
		}()
		s.Record(context.Background(), entry)
	}()
}

// Close blocks until every submitted entry has been handled.
func (s *AuditService) Close() {
	s.wg.Wait()
}

// LogLogin records a login attempt. message is optional and is appended to
// the outcome, e.g. "login failed: wrong password".
func (s *AuditService) LogLogin(meta *RequestMeta, user *model.AuthUser, success bool, message string) {
	description := "login succeeded"
	if !success {
		description = "login failed"
	}
	if message != "" {
		description += ": " + message
	}
	entry := newEntry(meta, user, model.ActionLogin, model.ModuleAuth, description, success)
	if user == nil {
		entry.Username = "unknown"
	}
	s.Submit(entry)
}

func (s *AuditService) LogLogout(meta *RequestMeta, user *model.AuthUser) {
	s.Submit(newEntry(meta, user, model.ActionLogout, model.ModuleAuth, "user logout", true))
}

func (s *AuditService) LogAction(meta *RequestMeta, user *model.AuthUser, actionType model.ActionType, module model.Module, description string, success bool, fields map[string]any) {
	entry := newEntry(meta, user, actionType, module, description, success)
	entry.Details = model.NewFieldDetails(fields)
	s.Submit(entry)
}

// LogError records an unhandled error. module defaults to SYSTEM.
func (s *AuditService) LogError(meta *RequestMeta, user *model.AuthUser, err error, module model.Module, stack string) {
	if err == nil {
		return
	}
	if module == "" {
		module = model.ModuleSystem
	}
	entry := newEntry(meta, user, model.ActionError, module, "system error: "+err.Error(), false)
	entry.Details = model.NewErrorDetails(model.ErrorDetails{
		Name:    fmt.Sprintf("%T", err),
		Message: err.Error(),
		Stack:   stack,
	})
	s.Submit(entry)
}

func newEntry(meta *RequestMeta, user *model.AuthUser, actionType model.ActionType, module model.Module, description string, success bool) *model.AuditEntry {
	entry := &model.AuditEntry{
		ActionType:  actionType,
		Module:      module,
		Description: description,
		Status:      model.StatusFromSuccess(success),
	}
	if meta != nil {
		entry.IP = meta.IP
		entry.UserAgent = meta.UserAgent
	}
	if user != nil {
		id := user.ID
		entry.UserID = &id
		entry.Username = user.Username
	}
	return entry
}
