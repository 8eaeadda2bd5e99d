package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"idcard/internal/citizen/models"
)

// DefaultStatsKey is the Redis key holding the cached dashboard stats.
const DefaultStatsKey = "idcard:citizen:stats"

// InMemoryStatsCache holds one stats snapshot for at most ttl.
type InMemoryStatsCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	stats    *models.Stats
	storedAt time.Time
	now      func() time.Time
}

// NewInMemoryStatsCache creates a process-local stats cache.
func NewInMemoryStatsCache(ttl time.Duration) *InMemoryStatsCache {
	return &InMemoryStatsCache{ttl: ttl, now: time.Now}
}

func (c *InMemoryStatsCache) Get(_ context.Context) (*models.Stats, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stats == nil || c.now().Sub(c.storedAt) >= c.ttl {
		return nil, false, nil
	}
	return c.stats.Clone(), true, nil
}

func (c *InMemoryStatsCache) Set(_ context.Context, stats *models.Stats) error {
	if stats == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = stats.Clone()
	c.storedAt = c.now()
	return nil
}

func (c *InMemoryStatsCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = nil
	return nil
}

// RedisStatsCache shares the stats snapshot across replicas. Expiry is
// delegated to Redis.
type RedisStatsCache struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// NewRedisStatsCache creates a Redis-backed stats cache. An empty key means DefaultStatsKey.
func NewRedisStatsCache(client redis.UniversalClient, key string, ttl time.Duration) *RedisStatsCache {
	if key == "" {
		key = DefaultStatsKey
	}
	return &RedisStatsCache{client: client, key: key, ttl: ttl}
}

func (c *RedisStatsCache) Get(ctx context.Context) (*models.Stats, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached stats: %w", err)
	}
	var stats models.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false, fmt.Errorf("decode cached stats: %w", err)
	}
	return &stats, true, nil
}

func (c *RedisStatsCache) Set(ctx context.Context, stats *models.Stats) error {
	if stats == nil {
		return nil
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache stats: %w", err)
	}
	return nil
}

func (c *RedisStatsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("invalidate cached stats: %w", err)
	}
	return nil
}
