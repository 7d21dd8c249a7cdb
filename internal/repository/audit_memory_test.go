package repository

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/adminsys/backoffice/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepClock struct {
	t time.Time
}

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newMemRepo(t *testing.T, size int) (*MemoryAuditRepo, *stepClock) {
	t.Helper()
	clock := &stepClock{t: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}
	repo := NewMemoryAuditRepo(size)
	repo.SetClock(clock.now)
	return repo, clock
}

func newEntry(username string, action model.ActionType, module model.Module, status model.Status) *model.AuditEntry {
	return &model.AuditEntry{
		Username:    username,
		ActionType:  action,
		Module:      module,
		Status:      status,
		Description: fmt.Sprintf("%s %s", action, module),
	}
}

func TestMemoryInsertAndGet(t *testing.T) {
	repo, _ := newMemRepo(t, 10)
	ctx := context.Background()

	e := newEntry("alice", model.ActionLogin, model.ModuleAuth, model.StatusSuccess)
	require.NoError(t, repo.Insert(ctx, e))
	require.NotEmpty(t, e.ID)

	got, err := repo.Get(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRefusesWritesWhenFull(t *testing.T) {
	repo, clock := newMemRepo(t, 3)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Insert(ctx, newEntry(fmt.Sprintf("u%d", i), model.ActionCreate, model.ModuleTodo, model.StatusSuccess)))
	}

	err := repo.Insert(ctx, newEntry("u3", model.ActionCreate, model.ModuleTodo, model.StatusSuccess))
	assert.ErrorIs(t, err, ErrStoreFull)

	// existing entries are untouched
	logs, total, err := repo.List(ctx, model.AuditQuery{Sort: model.DefaultSort, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, logs, 3)
	assert.Equal(t, "u2", logs[0].Username)
	assert.Equal(t, "u0", logs[2].Username)

	// cleanup frees room
	deleted, err := repo.DeleteBefore(ctx, clock.t)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)
	require.NoError(t, repo.Insert(ctx, newEntry("u4", model.ActionCreate, model.ModuleTodo, model.StatusSuccess)))
}

func TestMemoryListHugePage(t *testing.T) {
	repo, _ := newMemRepo(t, 10)
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, newEntry("alice", model.ActionCreate, model.ModuleTodo, model.StatusSuccess)))

	for _, q := range []model.AuditQuery{
		{Sort: model.DefaultSort, Page: 500000000000000001, Limit: 20},
		{Sort: model.DefaultSort, Page: math.MaxInt, Limit: 100},
	} {
		logs, total, err := repo.List(ctx, q)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Empty(t, logs)
	}
}

func TestMemoryListFiltersAndPaging(t *testing.T) {
	repo, _ := newMemRepo(t, 100)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		status := model.StatusSuccess
		if i%5 == 0 {
			status = model.StatusFailure
		}
		require.NoError(t, repo.Insert(ctx, newEntry("Alice", model.ActionLogin, model.ModuleAuth, status)))
	}
	require.NoError(t, repo.Insert(ctx, newEntry("bob", model.ActionDelete, model.ModuleUser, model.StatusSuccess)))

	logs, total, err := repo.List(ctx, model.AuditQuery{
		Filter: model.AuditFilter{Username: "ALI"},
		Sort:   model.DefaultSort,
		Page:   2,
		Limit:  10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	assert.Len(t, logs, 10)

	logs, total, err = repo.List(ctx, model.AuditQuery{
		Filter: model.AuditFilter{Module: model.ModuleAuth, Status: model.StatusFailure},
		Sort:   model.DefaultSort,
		Page:   1,
		Limit:  20,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	for _, l := range logs {
		assert.Equal(t, model.StatusFailure, l.Status)
	}

	logs, _, err = repo.List(ctx, model.AuditQuery{Sort: model.DefaultSort, Page: 10, Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestMemoryListSortsAscending(t *testing.T) {
	repo, _ := newMemRepo(t, 10)
	ctx := context.Background()
	for _, name := range []string{"carol", "alice", "bob"} {
		require.NoError(t, repo.Insert(ctx, newEntry(name, model.ActionOther, model.ModuleOther, model.StatusInfo)))
	}
	sort, err := model.ParseSort("username")
	require.NoError(t, err)

	logs, _, err := repo.List(ctx, model.AuditQuery{Sort: sort, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, []string{"alice", "bob", "carol"}, []string{logs[0].Username, logs[1].Username, logs[2].Username})
}

func TestMemoryDateRangeAndUserID(t *testing.T) {
	repo, _ := newMemRepo(t, 10)
	ctx := context.Background()
	uid := "user-1"
	var mid time.Time
	for i := 0; i < 4; i++ {
		e := newEntry("alice", model.ActionUpdate, model.ModuleTodo, model.StatusSuccess)
		if i >= 2 {
			e.UserID = &uid
		}
		require.NoError(t, repo.Insert(ctx, e))
		if i == 1 {
			mid = e.CreatedAt
		}
	}

	n, err := repo.Count(ctx, model.AuditFilter{From: &mid})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	n, err = repo.Count(ctx, model.AuditFilter{To: &mid})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = repo.Count(ctx, model.AuditFilter{UserID: uid})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestMemoryCountBy(t *testing.T) {
	repo, _ := newMemRepo(t, 10)
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, newEntry("a", model.ActionLogin, model.ModuleAuth, model.StatusSuccess)))
	require.NoError(t, repo.Insert(ctx, newEntry("a", model.ActionLogin, model.ModuleAuth, model.StatusFailure)))
	require.NoError(t, repo.Insert(ctx, newEntry("a", model.ActionCreate, model.ModuleTodo, model.StatusSuccess)))

	byAction, err := repo.CountBy(ctx, model.GroupActionType, model.AuditFilter{})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"LOGIN": 2, "CREATE": 1}, byAction)

	byModule, err := repo.CountBy(ctx, model.GroupModule, model.AuditFilter{Status: model.StatusSuccess})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"AUTH": 1, "TODO": 1}, byModule)
}

func TestMemoryDeleteBefore(t *testing.T) {
	repo, _ := newMemRepo(t, 10)
	ctx := context.Background()
	var entries []*model.AuditEntry
	for i := 0; i < 5; i++ {
		e := newEntry(fmt.Sprintf("u%d", i), model.ActionCreate, model.ModuleTodo, model.StatusSuccess)
		require.NoError(t, repo.Insert(ctx, e))
		entries = append(entries, e)
	}

	deleted, err := repo.DeleteBefore(ctx, entries[3].CreatedAt)
	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted)

	n, err := repo.Count(ctx, model.AuditFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, repo.Insert(ctx, newEntry("u5", model.ActionCreate, model.ModuleTodo, model.StatusSuccess)))
	require.NoError(t, repo.Insert(ctx, newEntry("u6", model.ActionCreate, model.ModuleTodo, model.StatusSuccess)))
	logs, total, err := repo.List(ctx, model.AuditQuery{Sort: model.DefaultSort, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Equal(t, "u6", logs[0].Username)
	assert.Equal(t, "u3", logs[3].Username)
}
