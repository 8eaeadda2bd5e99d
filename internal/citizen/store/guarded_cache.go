package store

import (
	"context"
	"log/slog"
	"sync/atomic"

	"idcard/internal/citizen/models"
	"idcard/pkg/platform/circuit"
)

type statsCache interface {
	Get(ctx context.Context) (*models.Stats, bool, error)
	Set(ctx context.Context, stats *models.Stats) error
	Invalidate(ctx context.Context) error
}

// GuardedStatsCache puts a circuit breaker in front of a remote stats cache.
// While the breaker is open every read is a miss and writes are skipped, so
// dashboard requests go straight to the store instead of waiting on timeouts.
// An invalidation skipped while open is replayed before the next read.
type GuardedStatsCache struct {
	inner   statsCache
	breaker *circuit.Breaker
	logger  *slog.Logger
	stale   atomic.Bool
}

func NewGuardedStatsCache(inner statsCache, breaker *circuit.Breaker, logger *slog.Logger) *GuardedStatsCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &GuardedStatsCache{inner: inner, breaker: breaker, logger: logger}
}

func (c *GuardedStatsCache) Get(ctx context.Context) (*models.Stats, bool, error) {
	if !c.breaker.Allow() {
		return nil, false, nil
	}
	if c.stale.Load() {
		if err := c.record(ctx, c.inner.Invalidate(ctx)); err != nil {
			return nil, false, err
		}
		c.stale.Store(false)
		return nil, false, nil
	}
	stats, ok, err := c.inner.Get(ctx)
	if err := c.record(ctx, err); err != nil {
		return nil, false, err
	}
	return stats, ok, nil
}

func (c *GuardedStatsCache) Set(ctx context.Context, stats *models.Stats) error {
	if !c.breaker.Allow() || c.stale.Load() {
		return nil
	}
	return c.record(ctx, c.inner.Set(ctx, stats))
}

func (c *GuardedStatsCache) Invalidate(ctx context.Context) error {
	if !c.breaker.Allow() {
		c.stale.Store(true)
		return nil
	}
	if err := c.record(ctx, c.inner.Invalidate(ctx)); err != nil {
		c.stale.Store(true)
		return err
	}
	c.stale.Store(false)
	return nil
}

func (c *GuardedStatsCache) record(ctx context.Context, err error) error {
	if err != nil {
		if change := c.breaker.RecordFailure(); change.Opened {
			c.logger.WarnContext(ctx, "stats cache circuit opened", "breaker", c.breaker.Name(), "error", err)
		}
		return err
	}
	if change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "stats cache circuit closed", "breaker", c.breaker.Name())
	}
	return nil
}
