package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"` // debug | release | test
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// IsRelease reports whether internal error details must be hidden from clients.
func (s ServerConfig) IsRelease() bool {
	return s.Mode == "release"
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AuthConfig struct {
	JWTSecret     string  `mapstructure:"jwt_secret"`
	TokenTTLHours int     `mapstructure:"token_ttl_hours"`
	BcryptCost    int     `mapstructure:"bcrypt_cost"`
	LoginRateQPS  float64 `mapstructure:"login_rate_qps"`
	LoginBurst    int     `mapstructure:"login_burst"`
}

func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

type DatabaseConfig struct {
	DSN                    string `mapstructure:"dsn"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
}

const (
	AuditStorePostgres = "postgres"
	AuditStoreMongo    = "mongo"
	AuditStoreMemory   = "memory"
)

type AuditConfig struct {
	Store           string   `mapstructure:"store"`
	MemoryMax       int      `mapstructure:"memory_max"`
	RetentionDays   int      `mapstructure:"retention_days"`
	CleanupCron     string   `mapstructure:"cleanup_cron"`
	DefaultPageSize int      `mapstructure:"default_page_size"`
	MaxPageSize     int      `mapstructure:"max_page_size"`
	SkipPaths       []string `mapstructure:"skip_paths"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type RedisConfig struct {
	Addr               string `mapstructure:"addr"`
	Password           string `mapstructure:"password"`
	DB                 int    `mapstructure:"db"`
	OverviewTTLSeconds int    `mapstructure:"overview_ttl_seconds"`
	KeyPrefix          string `mapstructure:"key_prefix"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type SeedConfig struct {
	AdminUsername string `mapstructure:"admin_username"`
	AdminPassword string `mapstructure:"admin_password"`
	AdminEmail    string `mapstructure:"admin_email"`
	Notices       bool   `mapstructure:"notices"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl_hours", 24)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.login_rate_qps", 1.0)
	v.SetDefault("auth.login_burst", 5)

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime_minutes", 60)

	v.SetDefault("audit.store", AuditStorePostgres)
	v.SetDefault("audit.memory_max", 10000)
	v.SetDefault("audit.retention_days", 90)
	v.SetDefault("audit.cleanup_cron", "")
	v.SetDefault("audit.default_page_size", 20)
	v.SetDefault("audit.max_page_size", 100)
	v.SetDefault("audit.skip_paths", []string{})

	v.SetDefault("mongo.uri", "mongodb://127.0.0.1:27017")
	v.SetDefault("mongo.database", "admin-system")
	v.SetDefault("mongo.collection", "systemlogs")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.overview_ttl_seconds", 30)
	v.SetDefault("redis.key_prefix", "backoffice")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("seed.admin_username", "admin")
	v.SetDefault("seed.admin_password", "")
	v.SetDefault("seed.admin_email", "admin@example.com")
	v.SetDefault("seed.notices", true)
}

// Load reads config.yaml from path (or ./ and ./configs when path is empty),
// then overlays BACKOFFICE_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	// e.g. BACKOFFICE_DATABASE_DSN
	v.SetEnvPrefix("backoffice")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Audit.Store {
	case AuditStorePostgres, AuditStoreMongo, AuditStoreMemory:
	default:
		return fmt.Errorf("audit.store must be one of postgres, mongo, memory (got %q)", c.Audit.Store)
	}
	if c.Audit.DefaultPageSize <= 0 || c.Audit.MaxPageSize < c.Audit.DefaultPageSize {
		return fmt.Errorf("audit page sizes invalid: default=%d max=%d", c.Audit.DefaultPageSize, c.Audit.MaxPageSize)
	}
	if c.Audit.RetentionDays < 0 {
		return fmt.Errorf("audit.retention_days must not be negative")
	}
	if c.Server.IsRelease() && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required in release mode")
	}
	return nil
}
