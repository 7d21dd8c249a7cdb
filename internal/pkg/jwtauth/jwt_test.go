package jwtauth

import (
	"testing"
	"time"

	"github.com/adminsys/backoffice/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = &model.AuthUser{ID: "u1", Username: "alice", Role: model.RoleAdmin}

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	token, err := m.Generate(alice)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, alice, claims.AuthUser())
	assert.Equal(t, "u1", claims.Subject)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("one", time.Hour).Generate(alice)
	require.NoError(t, err)

	_, err = NewManager("two", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewManager("s", time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.Generate(alice)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsNoneAlg(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer}})
	raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewManager("s", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEmptySecretGetsRandom(t *testing.T) {
	a := NewManager("", 0)
	b := NewManager("", 0)
	token, err := a.Generate(alice)
	require.NoError(t, err)
	_, err = b.Parse(token)
	assert.Error(t, err)
	assert.Equal(t, 24*time.Hour, a.ttl)
}
