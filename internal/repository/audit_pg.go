package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adminsys/backoffice/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const auditColumns = `id, user_id, username, action_type, module, description, status, ip, user_agent, details, created_at, updated_at`

var auditSortColumns = map[model.SortField]string{
	model.SortCreatedAt:  "created_at",
	model.SortUpdatedAt:  "updated_at",
	model.SortActionType: "action_type",
	model.SortModule:     "module",
	model.SortStatus:     "status",
	model.SortUsername:   "username",
}

var auditGroupColumns = map[model.GroupField]string{
	model.GroupActionType: "action_type",
	model.GroupModule:     "module",
}

type PostgresAuditRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPostgresAuditRepo(db *sqlx.DB) *PostgresAuditRepo {
	return &PostgresAuditRepo{db: db, now: time.Now}
}

type auditRow struct {
	ID          string         `db:"id"`
	UserID      sql.NullString `db:"user_id"`
	Username    string         `db:"username"`
	ActionType  string         `db:"action_type"`
	Module      string         `db:"module"`
	Description string         `db:"description"`
	Status      string         `db:"status"`
	IP          sql.NullString `db:"ip"`
	UserAgent   sql.NullString `db:"user_agent"`
	Details     []byte         `db:"details"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r auditRow) toModel() *model.AuditEntry {
	entry := &model.AuditEntry{
		ID:          r.ID,
		Username:    r.Username,
		ActionType:  model.ActionType(r.ActionType),
		Module:      model.Module(r.Module),
		Description: r.Description,
		Status:      model.Status(r.Status),
		IP:          r.IP.String,
		UserAgent:   r.UserAgent.String,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.UserID.Valid {
		id := r.UserID.String
		entry.UserID = &id
	}
	if len(r.Details) > 0 && string(r.Details) != "null" {
		var d model.Details
		if err := json.Unmarshal(r.Details, &d); err == nil {
			entry.Details = &d
		}
	}
	return entry
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Insert assigns id and timestamps, then writes the entry.
func (r *PostgresAuditRepo) Insert(ctx context.Context, entry *model.AuditEntry) error {
	if entry == nil {
		return nil
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := r.now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	var details []byte
	if entry.Details != nil {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("marshal details: %w", err)
		}
		details = raw
	}
	var userID sql.NullString
	if entry.UserID != nil {
		userID = nullString(*entry.UserID)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (
			id, user_id, username, action_type, module, description,
			status, ip, user_agent, details, created_at, updated_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,
			$7,$8,$9,$10,$11,$12
		)
	`, entry.ID, userID, entry.Username, string(entry.ActionType), string(entry.Module), entry.Description,
		string(entry.Status), nullString(entry.IP), nullString(entry.UserAgent), details, entry.CreatedAt, entry.UpdatedAt)
	return err
}

func (r *PostgresAuditRepo) Get(ctx context.Context, id string) (*model.AuditEntry, error) {
	var row auditRow
	err := r.db.GetContext(ctx, &row, `SELECT `+auditColumns+` FROM audit_logs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

// List returns one page of entries plus the total matching the filter.
func (r *PostgresAuditRepo) List(ctx context.Context, q model.AuditQuery) ([]*model.AuditEntry, int64, error) {
	where, args := buildAuditWhere(q.Filter)

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM audit_logs`+where, args...); err != nil {
		return nil, 0, err
	}

	col, ok := auditSortColumns[q.Sort.Field]
	if !ok {
		col = "created_at"
	}
	dir := "ASC"
	if q.Sort.Desc {
		dir = "DESC"
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	idx := len(args) + 1
	query := fmt.Sprintf(`SELECT %s FROM audit_logs%s ORDER BY %s %s, id %s LIMIT $%d OFFSET $%d`,
		auditColumns, where, col, dir, dir, idx, idx+1)
	args = append(args, limit, q.Offset())

	var rows []auditRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}
	entries := make([]*model.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toModel())
	}
	return entries, total, nil
}

func (r *PostgresAuditRepo) Count(ctx context.Context, f model.AuditFilter) (int64, error) {
	where, args := buildAuditWhere(f)
	var total int64
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM audit_logs`+where, args...)
	return total, err
}

func (r *PostgresAuditRepo) CountBy(ctx context.Context, field model.GroupField, f model.AuditFilter) (map[string]int64, error) {
	col, ok := auditGroupColumns[field]
	if !ok {
		return nil, fmt.Errorf("unsupported group field %q", field)
	}
	where, args := buildAuditWhere(f)
	query := fmt.Sprintf(`SELECT %s AS group_key, COUNT(*) AS count FROM audit_logs%s GROUP BY %s`, col, where, col)

	var rows []struct {
		Key   string `db:"group_key"`
		Count int64  `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Count
	}
	return out, nil
}

// DeleteBefore removes entries created strictly before cutoff.
func (r *PostgresAuditRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func buildAuditWhere(f model.AuditFilter) (string, []interface{}) {
	clauses := []string{}
	args := []interface{}{}
	idx := 1

	add := func(clause string, arg interface{}) {
		clauses = append(clauses, fmt.Sprintf(clause, idx))
		args = append(args, arg)
		idx++
	}

	if f.Module != "" {
		add("module = $%d", string(f.Module))
	}
	if f.ActionType != "" {
		add("action_type = $%d", string(f.ActionType))
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.Username != "" {
		add("username ILIKE $%d", "%"+escapeLike(f.Username)+"%")
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if f.From != nil {
		add("created_at >= $%d", f.From.UTC())
	}
	if f.To != nil {
		add("created_at <= $%d", f.To.UTC())
	}
	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// escapeLike makes user input literal inside a LIKE pattern (backslash is the default escape).
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// EnsureSchema creates the audit table and its indexes when missing.
func (r *PostgresAuditRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_logs (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			username TEXT NOT NULL DEFAULT 'system',
			action_type TEXT NOT NULL CHECK (action_type IN ('LOGIN','LOGOUT','CREATE','UPDATE','DELETE','SYSTEM','ERROR','OTHER')),
			module TEXT NOT NULL CHECK (module IN ('AUTH','USER','TODO','NOTICE','SYSTEM','OTHER')),
			description TEXT NOT NULL CHECK (description <> ''),
			status TEXT NOT NULL DEFAULT 'SUCCESS' CHECK (status IN ('SUCCESS','FAILURE','WARNING','INFO')),
			ip TEXT,
			user_agent TEXT,
			details JSONB,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return err
	}
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_user ON audit_logs(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_action ON audit_logs(action_type)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_module ON audit_logs(module)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_status ON audit_logs(status)`,
	}
	for _, stmt := range indexes {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
