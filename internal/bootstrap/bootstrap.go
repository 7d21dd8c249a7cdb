// Package bootstrap wires stores and services from configuration. It is shared
// by the HTTP server and the admin CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/adminsys/backoffice/internal/config"
	"github.com/adminsys/backoffice/internal/handler"
	"github.com/adminsys/backoffice/internal/pkg/jwtauth"
	"github.com/adminsys/backoffice/internal/repository"
	"github.com/adminsys/backoffice/internal/service"
	"github.com/redis/go-redis/v9"
)

// Stores holds every persistence handle the process opened.
type Stores struct {
	Users   service.UserStore
	Todos   service.TodoStore
	Notices service.NoticeStore
	Audit   service.AuditRepo
	Cache   service.OverviewCache

	db    *repository.DB
	mongo *repository.MongoAuditRepo
	redis *redis.Client
}

// OpenStores connects the configured backends. Without a database DSN the
// account, todo and notice stores live in memory; the audit store falls back
// to memory when its backend is unavailable.
func OpenStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Stores, error) {
	s := &Stores{}

	// Accounts (Postgres > Memory)
	if cfg.Database.DSN != "" {
		db, err := repository.NewDB(cfg)
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("connected to PostgreSQL")
		s.db = db
		s.Users = repository.NewUserRepo(db.Gorm)
		s.Todos = repository.NewTodoRepo(db.Gorm)
		s.Notices = repository.NewNoticeRepo(db.Gorm)
	} else {
		log.Warn("database.dsn not set, accounts, todos and notices are kept in memory")
		s.Users = repository.NewMemoryUserRepo()
		s.Todos = repository.NewMemoryTodoRepo()
		s.Notices = repository.NewMemoryNoticeRepo()
	}

	// Audit (configured store > Memory)
	switch cfg.Audit.Store {
	case config.AuditStoreMongo:
		repo, err := repository.NewMongoAuditRepo(ctx, cfg.Mongo)
		if err != nil {
			s.Close(ctx)
			return nil, err
		}
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn("failed to create audit indexes", "error", err)
		}
		log.Info("audit store: MongoDB", "database", cfg.Mongo.Database, "collection", cfg.Mongo.Collection)
		s.mongo = repo
		s.Audit = repo
	case config.AuditStorePostgres:
		if s.db != nil {
			repo := repository.NewPostgresAuditRepo(s.db.SQLX)
			if err := repo.EnsureSchema(ctx); err != nil {
				s.Close(ctx)
				return nil, fmt.Errorf("audit schema: %w", err)
			}
			log.Info("audit store: PostgreSQL")
			s.Audit = repo
		}
	}
	if s.Audit == nil {
		log.Warn("audit store: in-memory, writes fail once full until cleanup", "max_entries", cfg.Audit.MemoryMax)
		s.Audit = repository.NewMemoryAuditRepo(cfg.Audit.MemoryMax)
	}

	// Overview cache (Redis, optional)
	if cfg.Redis.Addr != "" {
		client, err := repository.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Error("failed to connect to Redis, overview cache disabled", "error", err)
		} else {
			log.Info("connected to Redis")
			s.redis = client
			s.Cache = repository.NewOverviewCache(client, cfg.Redis.KeyPrefix,
				time.Duration(cfg.Redis.OverviewTTLSeconds)*time.Second)
		}
	}
	return s, nil
}

func (s *Stores) Close(ctx context.Context) error {
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if s.mongo != nil {
		errs = append(errs, s.mongo.Close(ctx))
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}

// NewServices builds the service layer on top of stores.
func NewServices(cfg *config.Config, stores *Stores, log *slog.Logger) handler.Services {
	audit := service.NewAuditService(stores.Audit, log)
	opts := []service.LogQueryOption{
		service.WithPageSizes(cfg.Audit.DefaultPageSize, cfg.Audit.MaxPageSize),
		service.WithLogger(log),
	}
	if stores.Cache != nil {
		opts = append(opts, service.WithOverviewCache(stores.Cache))
	}
	tokens := jwtauth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())

	return handler.Services{
		Audit:        audit,
		Logs:         service.NewLogQueryService(stores.Audit, opts...),
		Auth:         service.NewAuthService(stores.Users, tokens, audit, cfg.Auth.BcryptCost),
		Users:        service.NewUserService(stores.Users, audit),
		Todos:        service.NewTodoService(stores.Todos, audit),
		Notices:      service.NewNoticeService(stores.Notices, stores.Users, audit),
		Tokens:       tokens,
		LoginLimiter: service.NewKeyedLimiter(cfg.Auth.LoginRateQPS, cfg.Auth.LoginBurst),
	}
}

// Seed ensures the bootstrap admin exists and, when enabled, the default notices.
func Seed(ctx context.Context, cfg *config.Config, svc handler.Services, users service.UserStore, log *slog.Logger) error {
	createdAdmin, err := svc.Auth.EnsureAdmin(ctx, cfg.Seed.AdminUsername, cfg.Seed.AdminPassword, cfg.Seed.AdminEmail)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if createdAdmin {
		log.Info("bootstrap admin created", "username", cfg.Seed.AdminUsername)
	}
	if !cfg.Seed.Notices {
		return nil
	}

	var createdBy string
	if admin, err := users.GetByUsername(ctx, cfg.Seed.AdminUsername); err == nil {
		createdBy = admin.ID
	}
	n, err := svc.Notices.Seed(ctx, createdBy)
	if err != nil {
		return fmt.Errorf("seed notices: %w", err)
	}
	if n > 0 {
		log.Info("default notices created", "count", n)
	}
	return nil
}
