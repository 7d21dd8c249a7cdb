package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adminsys/backoffice/internal/model"
	"github.com/google/uuid"
)

// MemoryAuditRepo keeps up to maxSize entries in insertion order. Entries are
// never evicted: once full, Insert fails with ErrStoreFull until DeleteBefore
// frees room. Used when no database is configured and in tests.
type MemoryAuditRepo struct {
	mu      sync.Mutex
	maxSize int
	records []memoryRecord
	seq     uint64
	now     func() time.Time
}

type memoryRecord struct {
	seq   uint64
	entry model.AuditEntry
}

func NewMemoryAuditRepo(maxSize int) *MemoryAuditRepo {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &MemoryAuditRepo{
		maxSize: maxSize,
		records: []memoryRecord{},
		now:     time.Now,
	}
}

// SetClock overrides the timestamp source.
func (r *MemoryAuditRepo) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *MemoryAuditRepo) Insert(_ context.Context, entry *model.AuditEntry) error {
	if entry == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.records) >= r.maxSize {
		return fmt.Errorf("%w: %d entries", ErrStoreFull, r.maxSize)
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := r.now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	r.seq++
	r.records = append(r.records, memoryRecord{seq: r.seq, entry: *entry})
	return nil
}

func (r *MemoryAuditRepo) Get(_ context.Context, id string) (*model.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.entry.ID == id {
			e := rec.entry
			return &e, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryAuditRepo) List(_ context.Context, q model.AuditQuery) ([]*model.AuditEntry, int64, error) {
	r.mu.Lock()
	matched := r.filterLocked(q.Filter)
	r.mu.Unlock()

	sortRecords(matched, q.Sort)

	total := int64(len(matched))
	offset := q.Offset()
	if offset < 0 || offset >= len(matched) {
		return []*model.AuditEntry{}, total, nil
	}
	end := len(matched)
	if q.Limit > 0 && q.Limit < end-offset {
		end = offset + q.Limit
	}
	out := make([]*model.AuditEntry, 0, end-offset)
	for _, rec := range matched[offset:end] {
		e := rec.entry
		out = append(out, &e)
	}
	return out, total, nil
}

func (r *MemoryAuditRepo) Count(_ context.Context, f model.AuditFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.filterLocked(f))), nil
}

func (r *MemoryAuditRepo) CountBy(_ context.Context, field model.GroupField, f model.AuditFilter) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int64{}
	for _, rec := range r.filterLocked(f) {
		switch field {
		case model.GroupActionType:
			out[string(rec.entry.ActionType)]++
		case model.GroupModule:
			out[string(rec.entry.Module)]++
		default:
			return nil, fmt.Errorf("unsupported group field %q", field)
		}
	}
	return out, nil
}

func (r *MemoryAuditRepo) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make([]memoryRecord, 0, len(r.records))
	var deleted int64
	for _, rec := range r.records {
		if rec.entry.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	r.records = kept
	return deleted, nil
}

func (r *MemoryAuditRepo) filterLocked(f model.AuditFilter) []memoryRecord {
	out := []memoryRecord{}
	for _, rec := range r.records {
		if matchesFilter(&rec.entry, f) {
			out = append(out, rec)
		}
	}
	return out
}

func matchesFilter(e *model.AuditEntry, f model.AuditFilter) bool {
	if f.Module != "" && e.Module != f.Module {
		return false
	}
	if f.ActionType != "" && e.ActionType != f.ActionType {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.Username != "" && !strings.Contains(strings.ToLower(e.Username), strings.ToLower(f.Username)) {
		return false
	}
	if f.UserID != "" && (e.UserID == nil || *e.UserID != f.UserID) {
		return false
	}
	if f.From != nil && e.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && e.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

func sortRecords(recs []memoryRecord, s model.Sort) {
	if s.Field == "" {
		s = model.DefaultSort
	}
	compare := func(a, b *memoryRecord) int {
		var c int
		switch s.Field {
		case model.SortUpdatedAt:
			c = a.entry.UpdatedAt.Compare(b.entry.UpdatedAt)
		case model.SortActionType:
			c = strings.Compare(string(a.entry.ActionType), string(b.entry.ActionType))
		case model.SortModule:
			c = strings.Compare(string(a.entry.Module), string(b.entry.Module))
		case model.SortStatus:
			c = strings.Compare(string(a.entry.Status), string(b.entry.Status))
		case model.SortUsername:
			c = strings.Compare(a.entry.Username, b.entry.Username)
		default:
			c = a.entry.CreatedAt.Compare(b.entry.CreatedAt)
		}
		if c == 0 {
			switch {
			case a.seq < b.seq:
				c = -1
			case a.seq > b.seq:
				c = 1
			}
		}
		return c
	}
	sort.Slice(recs, func(i, j int) bool {
		c := compare(&recs[i], &recs[j])
		if s.Desc {
			return c > 0
		}
		return c < 0
	})
}
