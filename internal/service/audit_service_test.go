package service

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/adminsys/backoffice/internal/model"
	"github.com/adminsys/backoffice/internal/pkg/logger"
	"github.com/adminsys/backoffice/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingRepo rejects every write.
type failingRepo struct {
	*repository.MemoryAuditRepo
	mu    sync.Mutex
	calls int
}

func (f *failingRepo) Insert(context.Context, *model.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return errors.New("connection reset")
}

type panickingRepo struct {
	*repository.MemoryAuditRepo
}

func (panickingRepo) Insert(context.Context, *model.AuditEntry) error {
	panic("boom")
}

func newTestAudit(t *testing.T) (*AuditService, *repository.MemoryAuditRepo, *bytes.Buffer) {
	t.Helper()
	repo := repository.NewMemoryAuditRepo(100)
	buf := &bytes.Buffer{}
	return NewAuditService(repo, logger.New(buf, "debug", "json")), repo, buf
}

func allEntries(t *testing.T, repo AuditRepo) []*model.AuditEntry {
	t.Helper()
	logs, _, err := repo.List(context.Background(), model.AuditQuery{Sort: model.DefaultSort, Page: 1, Limit: 1000})
	require.NoError(t, err)
	return logs
}

func TestRecordAppliesDefaults(t *testing.T) {
	svc, _, _ := newTestAudit(t)
	saved := svc.Record(context.Background(), &model.AuditEntry{
		ActionType:  model.ActionSystem,
		Module:      model.ModuleSystem,
		Description: "server started",
	})
	require.NotNil(t, saved)
	assert.Equal(t, "system", saved.Username)
	assert.Equal(t, model.StatusSuccess, saved.Status)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
}

func TestRecordRejectsOutOfSetValues(t *testing.T) {
	svc, repo, buf := newTestAudit(t)
	cases := []*model.AuditEntry{
		{ActionType: "READ", Module: model.ModuleTodo, Description: "x"},
		{ActionType: model.ActionCreate, Module: "BILLING", Description: "x"},
		{ActionType: model.ActionCreate, Module: model.ModuleTodo, Description: ""},
		{ActionType: model.ActionCreate, Module: model.ModuleTodo, Description: "x", Status: "DONE"},
		{ActionType: model.ActionCreate, Module: model.ModuleTodo, Description: "x", Details: &model.Details{Kind: model.DetailsError}},
	}
	for _, e := range cases {
		assert.Nil(t, svc.Record(context.Background(), e))
	}
	assert.Empty(t, allEntries(t, repo))
	assert.Contains(t, buf.String(), "audit entry rejected")
}

func TestRecordSwallowsStoreFailure(t *testing.T) {
	repo := &failingRepo{MemoryAuditRepo: repository.NewMemoryAuditRepo(10)}
	buf := &bytes.Buffer{}
	svc := NewAuditService(repo, logger.New(buf, "info", "json"))

	assert.NotPanics(t, func() {
		assert.Nil(t, svc.Record(context.Background(), &model.AuditEntry{
			ActionType: model.ActionCreate, Module: model.ModuleTodo, Description: "x",
		}))
	})
	assert.Equal(t, 1, repo.calls)
	assert.Contains(t, buf.String(), "failed to write audit entry")
	assert.Contains(t, buf.String(), "connection reset")
}

func TestRecordReportsFullMemoryStore(t *testing.T) {
	repo := repository.NewMemoryAuditRepo(1)
	buf := &bytes.Buffer{}
	svc := NewAuditService(repo, logger.New(buf, "info", "json"))
	entry := func() *model.AuditEntry {
		return &model.AuditEntry{ActionType: model.ActionCreate, Module: model.ModuleTodo, Description: "x"}
	}

	require.NotNil(t, svc.Record(context.Background(), entry()))
	assert.Nil(t, svc.Record(context.Background(), entry()))
	assert.Contains(t, buf.String(), "store is full")
	assert.Len(t, allEntries(t, repo), 1)
}

func TestSubmitRecoversPanics(t *testing.T) {
	buf := &bytes.Buffer{}
	svc := NewAuditService(panickingRepo{repository.NewMemoryAuditRepo(10)}, logger.New(buf, "info", "json"))

	svc.Submit(&model.AuditEntry{ActionType: model.ActionOther, Module: model.ModuleOther, Description: "x"})
	svc.Close()
	assert.Contains(t, buf.String(), "audit write panicked")
}

func TestLogLogin(t *testing.T) {
	svc, repo, _ := newTestAudit(t)
	meta := &RequestMeta{IP: "10.0.0.1", UserAgent: "curl/8"}
	user := &model.AuthUser{ID: "u1", Username: "alice", Role: model.RoleUser}

	svc.LogLogin(meta, user, true, "")
	svc.LogLogin(meta, nil, false, "bad password")
	svc.Close()

	logs := allEntries(t, repo)
	require.Len(t, logs, 2)
	byUser := map[string]*model.AuditEntry{}
	for _, l := range logs {
		byUser[l.Username] = l
	}

	ok := byUser["alice"]
	require.NotNil(t, ok)
	assert.Equal(t, model.ActionLogin, ok.ActionType)
	assert.Equal(t, model.ModuleAuth, ok.Module)
	assert.Equal(t, model.StatusSuccess, ok.Status)
	assert.Equal(t, "10.0.0.1", ok.IP)
	assert.Equal(t, "curl/8", ok.UserAgent)
	require.NotNil(t, ok.UserID)
	assert.Equal(t, "u1", *ok.UserID)
	assert.Equal(t, "login succeeded", ok.Description)

	failed := byUser["unknown"]
	require.NotNil(t, failed)
	assert.Equal(t, model.StatusFailure, failed.Status)
	assert.Nil(t, failed.UserID)
	assert.Equal(t, "login failed: bad password", failed.Description)
}

func TestLogLoginWithoutMessage(t *testing.T) {
	svc, repo, buf := newTestAudit(t)
	svc.LogLogin(nil, nil, true, "")
	svc.LogLogin(nil, nil, false, "")
	svc.Close()

	logs := allEntries(t, repo)
	require.Len(t, logs, 2)
	descriptions := []string{logs[0].Description, logs[1].Description}
	assert.ElementsMatch(t, []string{"login succeeded", "login failed"}, descriptions)
	assert.NotContains(t, buf.String(), "audit entry rejected")
}

func TestLogLogoutAndAction(t *testing.T) {
	svc, repo, _ := newTestAudit(t)
	user := &model.AuthUser{ID: "u1", Username: "alice"}

	svc.LogLogout(nil, user)
	svc.LogAction(nil, user, model.ActionDelete, model.ModuleTodo, "deleted todo", true, map[string]any{"todoId": "t1"})
	svc.LogAction(nil, nil, model.ActionUpdate, model.ModuleNotice, "updated notice", false, nil)
	svc.Close()

	logs := allEntries(t, repo)
	require.Len(t, logs, 3)
	var sawLogout, sawDelete, sawUpdate bool
	for _, l := range logs {
		switch l.ActionType {
		case model.ActionLogout:
			sawLogout = true
			assert.Equal(t, model.ModuleAuth, l.Module)
		case model.ActionDelete:
			sawDelete = true
			require.NotNil(t, l.Details)
			assert.Equal(t, model.DetailsGeneric, l.Details.Kind)
			assert.Equal(t, "t1", l.Details.Fields["todoId"])
		case model.ActionUpdate:
			sawUpdate = true
			assert.Equal(t, model.StatusFailure, l.Status)
			assert.Equal(t, "system", l.Username)
			assert.Nil(t, l.Details)
		}
	}
	assert.True(t, sawLogout && sawDelete && sawUpdate)
}

func TestLogError(t *testing.T) {
	svc, repo, _ := newTestAudit(t)
	svc.LogError(&RequestMeta{IP: "::1"}, nil, errors.New("db exploded"), "", "goroutine 1 [running]")
	svc.LogError(nil, nil, nil, model.ModuleTodo, "")
	svc.Close()

	logs := allEntries(t, repo)
	require.Len(t, logs, 1)
	e := logs[0]
	assert.Equal(t, model.ActionError, e.ActionType)
	assert.Equal(t, model.ModuleSystem, e.Module)
	assert.Equal(t, model.StatusFailure, e.Status)
	assert.Equal(t, "system error: db exploded", e.Description)
	require.NotNil(t, e.Details)
	assert.Equal(t, model.DetailsError, e.Details.Kind)
	assert.Equal(t, "*errors.errorString", e.Details.Error.Name)
	assert.Equal(t, "db exploded", e.Details.Error.Message)
	assert.Equal(t, "goroutine 1 [running]", e.Details.Error.Stack)
}

func TestCloseWaitsForSubmissions(t *testing.T) {
	svc, repo, _ := newTestAudit(t)
	for i := 0; i < 50; i++ {
		svc.LogAction(nil, nil, model.ActionCreate, model.ModuleTodo, "bulk", true, nil)
	}
	done := make(chan struct{})
	go func() {
		svc.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}
	assert.Len(t, allEntries(t, repo), 50)
}
