package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEntry() *AuditEntry {
	return &AuditEntry{
		ActionType:  ActionCreate,
		Module:      ModuleTodo,
		Description: "created todo",
		Status:      StatusSuccess,
	}
}

func TestAuditEntryValidateAcceptsEnumeratedValues(t *testing.T) {
	for _, a := range ActionTypes {
		for _, m := range Modules {
			e := validEntry()
			e.ActionType = a
			e.Module = m
			assert.NoError(t, e.Validate(), "%s/%s", a, m)
		}
	}
}

func TestAuditEntryValidateRejectsOutOfSet(t *testing.T) {
	e := validEntry()
	e.ActionType = "READ"
	e.Module = "BILLING"
	e.Status = "OK"

	err := e.Validate()
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "actionType")
	assert.Contains(t, verr.Fields, "module")
	assert.Contains(t, verr.Fields, "status")
}

func TestAuditEntryValidateRequiresDescription(t *testing.T) {
	e := validEntry()
	e.Description = ""
	err := e.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "is required", verr.Fields["description"])
}

func TestAuditEntryApplyDefaults(t *testing.T) {
	e := &AuditEntry{ActionType: ActionSystem, Module: ModuleSystem, Description: "boot"}
	e.ApplyDefaults()
	assert.Equal(t, DefaultUsername, e.Username)
	assert.Equal(t, StatusSuccess, e.Status)
	assert.NoError(t, e.Validate())
}

func TestDetailsValidate(t *testing.T) {
	assert.NoError(t, (*Details)(nil).Validate())
	assert.NoError(t, NewRequestDetails(RequestDetails{Method: "GET"}).Validate())
	assert.NoError(t, NewErrorDetails(ErrorDetails{Message: "boom"}).Validate())
	assert.NoError(t, NewFieldDetails(map[string]any{"todoId": "1"}).Validate())
	assert.Nil(t, NewFieldDetails(nil))

	bad := &Details{Kind: DetailsError, Request: &RequestDetails{}}
	assert.ErrorIs(t, bad.Validate(), ErrDetailsMismatch)
	assert.ErrorIs(t, (&Details{Kind: "blob"}).Validate(), ErrDetailsMismatch)

	e := validEntry()
	e.Details = bad
	var verr *ValidationError
	require.True(t, errors.As(e.Validate(), &verr))
	assert.Contains(t, verr.Fields, "details")
}

func TestDetailsJSONShape(t *testing.T) {
	ts := time.Date(2024, 3, 18, 10, 0, 0, 0, time.UTC)
	d := NewRequestDetails(RequestDetails{Method: "POST", Path: "/api/todos", StatusCode: 401, DurationMs: 3, Timestamp: ts})
	raw, err := json.Marshal(d)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "request", out["kind"])
	req := out["request"].(map[string]any)
	assert.Equal(t, float64(401), req["statusCode"])
	assert.NotContains(t, out, "error")
}

func TestParseSort(t *testing.T) {
	s, err := ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSort, s)

	s, err = ParseSort("username")
	require.NoError(t, err)
	assert.Equal(t, Sort{Field: SortUsername}, s)

	s, err = ParseSort("-status")
	require.NoError(t, err)
	assert.Equal(t, Sort{Field: SortStatus, Desc: true}, s)

	// "+createdAt" in a query string decodes to " createdAt"
	s, err = ParseSort(" createdAt")
	require.NoError(t, err)
	assert.Equal(t, Sort{Field: SortCreatedAt}, s)

	s, err = ParseSort("+module")
	require.NoError(t, err)
	assert.Equal(t, Sort{Field: SortModule}, s)

	_, err = ParseSort("-password")
	assert.ErrorIs(t, err, ErrInvalidSort)
}

func TestAuditQueryOffset(t *testing.T) {
	assert.Equal(t, 0, AuditQuery{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 40, AuditQuery{Page: 3, Limit: 20}.Offset())
	assert.Equal(t, 0, AuditQuery{Page: 0, Limit: 20}.Offset())
	assert.Equal(t, math.MaxInt, AuditQuery{Page: math.MaxInt, Limit: 20}.Offset())
	assert.Equal(t, math.MaxInt, AuditQuery{Page: 500000000000000001, Limit: 20}.Offset())
}
