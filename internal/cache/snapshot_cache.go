// Package cache memoizes network snapshots in Redis in front of a slower
// snapshot source.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/cultivatehq/cultivate/backend/internal/config"
	"github.com/cultivatehq/cultivate/backend/internal/domain"
	"github.com/cultivatehq/cultivate/backend/internal/logging"
	"github.com/cultivatehq/cultivate/backend/internal/metrics"
)

const (
	defaultTTL    = 2 * time.Minute
	defaultPrefix = "cultivate:snapshot"
	scanBatch     = 200
)

// Source is the wrapped snapshot loader.
type Source interface {
	LoadSnapshot(ctx context.Context, q domain.SnapshotQuery) (domain.NetworkSnapshot, error)
}

// SnapshotCache is a read-through cache. Redis failures never fail a load:
// they are logged and the wrapped source is used instead.
type SnapshotCache struct {
	client  *redis.Client
	next    Source
	ttl     time.Duration
	prefix  string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a SnapshotCache.
type Option func(*SnapshotCache)

// WithTTL sets how long cached snapshots live.
func WithTTL(ttl time.Duration) Option {
	return func(c *SnapshotCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) Option {
	return func(c *SnapshotCache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *SnapshotCache) {
		c.logger = logging.Component(logger, "snapshot-cache")
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *SnapshotCache) {
		c.metrics = m
	}
}

// New wraps next with a Redis cache.
func New(client *redis.Client, next Source, options ...Option) *SnapshotCache {
	c := &SnapshotCache{
		client: client,
		next:   next,
		ttl:    defaultTTL,
		prefix: defaultPrefix,
		logger: logging.Component(nil, "snapshot-cache"),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Key is the cache key for q.
func (c *SnapshotCache) Key(q domain.SnapshotQuery) string {
	return fmt.Sprintf("%s:%s:%s:%d:%d", c.prefix, q.OwnerID, q.CenterID, q.MaxHops, q.MaxNodes)
}

// LoadSnapshot returns the cached snapshot for q or loads and stores it.
func (c *SnapshotCache) LoadSnapshot(ctx context.Context, q domain.SnapshotQuery) (domain.NetworkSnapshot, error) {
	key := c.Key(q)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var snapshot domain.NetworkSnapshot
		if err := json.Unmarshal(raw, &snapshot); err == nil {
			c.metrics.CacheResult("hit")
			return snapshot, nil
		}
		c.logger.Warn("discarding undecodable cached snapshot", slog.String("key", key))
		c.metrics.CacheResult("error")
	case errors.Is(err, redis.Nil):
		c.metrics.CacheResult("miss")
	default:
		c.logger.Warn("snapshot cache read failed", slog.String("key", key), slog.Any("error", err))
		c.metrics.CacheResult("error")
	}

	snapshot, err := c.next.LoadSnapshot(ctx, q)
	if err != nil {
		return domain.NetworkSnapshot{}, err
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		c.logger.Warn("snapshot not cacheable", slog.String("key", key), slog.Any("error", err))
		return snapshot, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("snapshot cache write failed", slog.String("key", key), slog.Any("error", err))
	}
	return snapshot, nil
}

// Invalidate drops every cached snapshot of ownerID.
func (c *SnapshotCache) Invalidate(ctx context.Context, ownerID string) error {
	pattern := fmt.Sprintf("%s:%s:*", c.prefix, ownerID)
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return fmt.Errorf("scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete cached snapshots: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Ping checks that Redis is reachable.
func (c *SnapshotCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
