package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, AuditStorePostgres, cfg.Audit.Store)
	assert.Equal(t, 90, cfg.Audit.RetentionDays)
	assert.Equal(t, 20, cfg.Audit.DefaultPageSize)
	assert.Equal(t, 100, cfg.Audit.MaxPageSize)
	assert.Empty(t, cfg.Audit.SkipPaths)
	assert.Equal(t, "systemlogs", cfg.Mongo.Collection)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: "8080"
audit:
  store: memory
  memory_max: 50
  skip_paths: ["/health"]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	t.Setenv("BACKOFFICE_AUDIT_RETENTION_DAYS", "30")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, AuditStoreMemory, cfg.Audit.Store)
	assert.Equal(t, 50, cfg.Audit.MemoryMax)
	assert.Equal(t, []string{"/health"}, cfg.Audit.SkipPaths)
	assert.Equal(t, 30, cfg.Audit.RetentionDays)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server: ServerConfig{Mode: "debug"},
			Audit:  AuditConfig{Store: AuditStoreMemory, DefaultPageSize: 20, MaxPageSize: 100},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Audit.Store = "sqlite"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Audit.MaxPageSize = 10
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Server.Mode = "release"
	assert.Error(t, cfg.Validate())
	cfg.Auth.JWTSecret = "s3cret"
	assert.NoError(t, cfg.Validate())
}
