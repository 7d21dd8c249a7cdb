package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adminsys/backoffice/internal/model"
)

// In-process stores used when no database DSN is configured. They mirror the
// gorm repositories, including timestamps, ordering and sentinel errors.

type MemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]*model.User
	seq   map[string]int64
	next  int64
	now   func() time.Time
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]*model.User), seq: make(map[string]int64), now: time.Now}
}

func (r *MemoryUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; ok || r.takenLocked(u.Username, u.Email, "") {
		return ErrDuplicate
	}
	now := r.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	cp := *u
	r.users[u.ID] = &cp
	r.next++
	r.seq[u.ID] = r.next
	return nil
}

func (r *MemoryUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepo) Exists(_ context.Context, username, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.takenLocked(username, email, ""), nil
}

func (r *MemoryUserRepo) List(_ context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return r.seq[out[i].ID] > r.seq[out[j].ID]
	})
	return out, nil
}

func (r *MemoryUserRepo) Update(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return ErrNotFound
	}
	if r.takenLocked(u.Username, u.Email, u.ID) {
		return ErrDuplicate
	}
	u.UpdatedAt = r.now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *MemoryUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	delete(r.seq, id)
	return nil
}

func (r *MemoryUserRepo) UsernamesByID(_ context.Context, ids []string) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = u.Username
		}
	}
	return out, nil
}

// takenLocked reports whether username or email belongs to a user other than except.
func (r *MemoryUserRepo) takenLocked(username, email, except string) bool {
	for id, u := range r.users {
		if id == except {
			continue
		}
		if u.Username == username || strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

type MemoryTodoRepo struct {
	mu    sync.RWMutex
	todos map[string]*model.Todo
	seq   map[string]int64
	next  int64
	now   func() time.Time
}

func NewMemoryTodoRepo() *MemoryTodoRepo {
	return &MemoryTodoRepo{todos: make(map[string]*model.Todo), seq: make(map[string]int64), now: time.Now}
}

func (r *MemoryTodoRepo) ListByUser(_ context.Context, userID string) ([]*model.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*model.Todo{}
	for _, t := range r.todos {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return r.seq[out[i].ID] > r.seq[out[j].ID]
	})
	return out, nil
}

func (r *MemoryTodoRepo) GetForUser(_ context.Context, id, userID string) (*model.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.todos[id]
	if !ok || t.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *MemoryTodoRepo) Create(_ context.Context, t *model.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.todos[t.ID]; ok {
		return ErrDuplicate
	}
	now := r.now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	cp := *t
	r.todos[t.ID] = &cp
	r.next++
	r.seq[t.ID] = r.next
	return nil
}

func (r *MemoryTodoRepo) Update(_ context.Context, t *model.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.todos[t.ID]; !ok {
		return ErrNotFound
	}
	t.UpdatedAt = r.now()
	cp := *t
	r.todos[t.ID] = &cp
	return nil
}

func (r *MemoryTodoRepo) DeleteForUser(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.todos[id]
	if !ok || t.UserID != userID {
		return ErrNotFound
	}
	delete(r.todos, id)
	delete(r.seq, id)
	return nil
}

type MemoryNoticeRepo struct {
	mu      sync.RWMutex
	notices map[string]*model.Notice
	now     func() time.Time
}

func NewMemoryNoticeRepo() *MemoryNoticeRepo {
	return &MemoryNoticeRepo{notices: make(map[string]*model.Notice), now: time.Now}
}

func (r *MemoryNoticeRepo) List(_ context.Context) ([]*model.Notice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.Notice, 0, len(r.notices))
	for _, n := range r.notices {
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryNoticeRepo) Get(_ context.Context, id string) (*model.Notice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.notices[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *MemoryNoticeRepo) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.notices)), nil
}

func (r *MemoryNoticeRepo) Create(_ context.Context, n *model.Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notices[n.ID]; ok {
		return ErrDuplicate
	}
	now := r.now()
	if n.Date.IsZero() {
		n.Date = now
	}
	n.CreatedAt = now
	n.UpdatedAt = now
	cp := *n
	cp.CreatedByName = ""
	r.notices[n.ID] = &cp
	return nil
}

func (r *MemoryNoticeRepo) Update(_ context.Context, n *model.Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notices[n.ID]; !ok {
		return ErrNotFound
	}
	n.UpdatedAt = r.now()
	cp := *n
	cp.CreatedByName = ""
	r.notices[n.ID] = &cp
	return nil
}

func (r *MemoryNoticeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notices[id]; !ok {
		return ErrNotFound
	}
	delete(r.notices, id)
	return nil
}
