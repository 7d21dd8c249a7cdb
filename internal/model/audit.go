package model

import (
	"errors"
	"math"
	"strings"
	"time"
)

// ActionType 操作类型
type ActionType string

const (
	ActionLogin  ActionType = "LOGIN"
	ActionLogout ActionType = "LOGOUT"
	ActionCreate ActionType = "CREATE"
	ActionUpdate ActionType = "UPDATE"
	ActionDelete ActionType = "DELETE"
	// ActionSystem also marks read (GET) requests recorded by the request logger.
	ActionSystem ActionType = "SYSTEM"
	ActionError  ActionType = "ERROR"
	ActionOther  ActionType = "OTHER"
)

// Module 操作模块
type Module string

const (
	ModuleAuth   Module = "AUTH"
	ModuleUser   Module = "USER"
	ModuleTodo   Module = "TODO"
	ModuleNotice Module = "NOTICE"
	ModuleSystem Module = "SYSTEM"
	ModuleOther  Module = "OTHER"
)

// Status 操作结果
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
	StatusWarning Status = "WARNING"
	StatusInfo    Status = "INFO"
)

const DefaultUsername = "system"

var (
	ActionTypes = []ActionType{ActionLogin, ActionLogout, ActionCreate, ActionUpdate, ActionDelete, ActionSystem, ActionError, ActionOther}
	Modules     = []Module{ModuleAuth, ModuleUser, ModuleTodo, ModuleNotice, ModuleSystem, ModuleOther}
	Statuses    = []Status{StatusSuccess, StatusFailure, StatusWarning, StatusInfo}
)

func (a ActionType) Valid() bool {
	for _, v := range ActionTypes {
		if v == a {
			return true
		}
	}
	return false
}

func (m Module) Valid() bool {
	for _, v := range Modules {
		if v == m {
			return true
		}
	}
	return false
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// StatusFromSuccess maps a success flag to SUCCESS / FAILURE.
func StatusFromSuccess(success bool) Status {
	if success {
		return StatusSuccess
	}
	return StatusFailure
}

// AuditEntry 代表一条审计记录，写入后不可修改，只能被保留期清理删除
type AuditEntry struct {
	ID          string     `json:"id"`
	UserID      *string    `json:"userId,omitempty"`
	Username    string     `json:"username"`
	ActionType  ActionType `json:"actionType" validate:"required,oneof=LOGIN LOGOUT CREATE UPDATE DELETE SYSTEM ERROR OTHER"`
	Module      Module     `json:"module" validate:"required,oneof=AUTH USER TODO NOTICE SYSTEM OTHER"`
	Description string     `json:"description" validate:"required"`
	Status      Status     `json:"status" validate:"required,oneof=SUCCESS FAILURE WARNING INFO"`
	IP          string     `json:"ip,omitempty"`
	UserAgent   string     `json:"userAgent,omitempty"`

	// 详细数据：请求元数据、错误堆栈或任意键值
	Details *Details `json:"details,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ApplyDefaults fills the fields the store would otherwise default.
func (e *AuditEntry) ApplyDefaults() {
	if e.Username == "" {
		e.Username = DefaultUsername
	}
	if e.Status == "" {
		e.Status = StatusSuccess
	}
}

// DetailsKind tags which payload a Details value carries.
type DetailsKind string

const (
	DetailsRequest DetailsKind = "request"
	DetailsError   DetailsKind = "error"
	DetailsGeneric DetailsKind = "generic"
)

// Details is the structured payload attached to an entry. Exactly one of
// Request, Error or Fields is set, matching Kind.
type Details struct {
	Kind    DetailsKind     `json:"kind" bson:"kind"`
	Request *RequestDetails `json:"request,omitempty" bson:"request,omitempty"`
	Error   *ErrorDetails   `json:"error,omitempty" bson:"error,omitempty"`
	Fields  map[string]any  `json:"fields,omitempty" bson:"fields,omitempty"`
}

type RequestDetails struct {
	Method     string              `json:"method" bson:"method"`
	Path       string              `json:"path" bson:"path"`
	Query      map[string][]string `json:"query,omitempty" bson:"query,omitempty"`
	StatusCode int                 `json:"statusCode" bson:"statusCode"`
	DurationMs int64               `json:"durationMs" bson:"durationMs"`
	Timestamp  time.Time           `json:"timestamp" bson:"timestamp"`
}

type ErrorDetails struct {
	Name    string `json:"name" bson:"name"`
	Message string `json:"message" bson:"message"`
	Stack   string `json:"stack,omitempty" bson:"stack,omitempty"`
}

var ErrDetailsMismatch = errors.New("details payload does not match its kind")

func NewRequestDetails(r RequestDetails) *Details {
	return &Details{Kind: DetailsRequest, Request: &r}
}

func NewErrorDetails(e ErrorDetails) *Details {
	return &Details{Kind: DetailsError, Error: &e}
}

// NewFieldDetails returns nil for an empty map so callers can pass optional extras straight through.
func NewFieldDetails(fields map[string]any) *Details {
	if len(fields) == 0 {
		return nil
	}
	return &Details{Kind: DetailsGeneric, Fields: fields}
}

func (d *Details) Validate() error {
	if d == nil {
		return nil
	}
	switch d.Kind {
	case DetailsRequest:
		if d.Request == nil || d.Error != nil {
			return ErrDetailsMismatch
		}
	case DetailsError:
		if d.Error == nil || d.Request != nil {
			return ErrDetailsMismatch
		}
	case DetailsGeneric:
		if d.Request != nil || d.Error != nil {
			return ErrDetailsMismatch
		}
	default:
		return ErrDetailsMismatch
	}
	return nil
}

// AuditFilter narrows list and count queries. Zero values mean "no filter".
type AuditFilter struct {
	Module     Module
	ActionType ActionType
	Status     Status
	Username   string // case-insensitive partial match
	UserID     string
	From       *time.Time // inclusive
	To         *time.Time // inclusive
}

// SortField is a sortable entry attribute, named as in the JSON payload.
type SortField string

const (
	SortCreatedAt  SortField = "createdAt"
	SortUpdatedAt  SortField = "updatedAt"
	SortActionType SortField = "actionType"
	SortModule     SortField = "module"
	SortStatus     SortField = "status"
	SortUsername   SortField = "username"
)

var sortFields = map[SortField]bool{
	SortCreatedAt: true, SortUpdatedAt: true, SortActionType: true,
	SortModule: true, SortStatus: true, SortUsername: true,
}

type Sort struct {
	Field SortField
	Desc  bool
}

var DefaultSort = Sort{Field: SortCreatedAt, Desc: true}

var ErrInvalidSort = errors.New("invalid sort field")

// ParseSort accepts "field" or "+field" (ascending) and "-field" (descending).
// Empty input yields DefaultSort. A query-string "+" arrives as a space, so
// surrounding spaces are ignored.
func ParseSort(raw string) (Sort, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultSort, nil
	}
	s := Sort{}
	if raw[0] == '-' {
		s.Desc = true
		raw = raw[1:]
	} else if raw[0] == '+' {
		raw = raw[1:]
	}
	s.Field = SortField(raw)
	if !sortFields[s.Field] {
		return Sort{}, ErrInvalidSort
	}
	return s, nil
}

// AuditQuery is a paginated list request. Page is 1-based.
type AuditQuery struct {
	Filter AuditFilter
	Sort   Sort
	Page   int
	Limit  int
}

// Offset saturates at math.MaxInt instead of overflowing for huge pages.
func (q AuditQuery) Offset() int {
	if q.Page <= 1 || q.Limit <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// GroupField names an attribute the store can aggregate counts on.
type GroupField string

const (
	GroupActionType GroupField = "actionType"
	GroupModule     GroupField = "module"
)

type AuditPage struct {
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Logs  []*AuditEntry `json:"logs"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type LogOverview struct {
	TodayCount       int64            `json:"todayCount"`
	TotalCount       int64            `json:"totalCount"`
	ErrorCount       int64            `json:"errorCount"`
	ActionTypeCounts map[string]int64 `json:"actionTypeCounts"`
	DailyCounts      []DailyCount     `json:"dailyCounts"`
	ModuleCounts     map[string]int64 `json:"moduleCounts"`
}
