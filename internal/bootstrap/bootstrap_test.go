package bootstrap

import (
	"context"
	"io"
	"testing"

	"github.com/adminsys/backoffice/internal/config"
	"github.com/adminsys/backoffice/internal/model"
	"github.com/adminsys/backoffice/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{TokenTTLHours: 1, BcryptCost: 4, LoginRateQPS: 1, LoginBurst: 5},
		Audit: config.AuditConfig{
			Store:           config.AuditStorePostgres,
			MemoryMax:       100,
			RetentionDays:   90,
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Seed: config.SeedConfig{
			AdminUsername: "admin",
			AdminPassword: "admin-pass",
			AdminEmail:    "admin@example.com",
			Notices:       true,
		},
	}
}

func TestOpenStoresFallsBackToMemory(t *testing.T) {
	ctx := context.Background()
	log := logger.New(io.Discard, "error", "json")
	stores, err := OpenStores(ctx, memoryConfig(), log)
	require.NoError(t, err)

	assert.NotNil(t, stores.Users)
	assert.NotNil(t, stores.Audit)
	assert.Nil(t, stores.Cache)
	assert.NoError(t, stores.Close(ctx))
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	log := logger.New(io.Discard, "error", "json")
	cfg := memoryConfig()
	stores, err := OpenStores(ctx, cfg, log)
	require.NoError(t, err)

	svc := NewServices(cfg, stores, log)
	require.NoError(t, Seed(ctx, cfg, svc, stores.Users, log))
	require.NoError(t, Seed(ctx, cfg, svc, stores.Users, log))

	admin, err := stores.Users.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)

	notices, err := svc.Notices.List(ctx)
	require.NoError(t, err)
	require.Len(t, notices, 3)
	assert.Equal(t, "admin", notices[0].CreatedByName)

	svc.Audit.Close()
	n, err := stores.Audit.Count(ctx, model.AuditFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "only the admin creation is audited")
}
