package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/adminsys/backoffice/internal/config"
	"github.com/adminsys/backoffice/internal/model"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by OverviewCache.Get when nothing is cached.
var ErrCacheMiss = errors.New("cache miss")

func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

// OverviewCache holds the computed log overview for a short TTL.
type OverviewCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewOverviewCache(client *redis.Client, prefix string, ttl time.Duration) *OverviewCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &OverviewCache{client: client, key: overviewKey(prefix), ttl: ttl}
}

func overviewKey(prefix string) string {
	if prefix == "" {
		return "logs:overview"
	}
	return prefix + ":logs:overview"
}

func (c *OverviewCache) Get(ctx context.Context) (*model.LogOverview, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var ov model.LogOverview
	if err := json.Unmarshal(raw, &ov); err != nil {
		return nil, err
	}
	return &ov, nil
}

func (c *OverviewCache) Set(ctx context.Context, ov *model.LogOverview) error {
	raw, err := json.Marshal(ov)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, raw, c.ttl).Err()
}

func (c *OverviewCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
