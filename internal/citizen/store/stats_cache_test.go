package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idcard/internal/citizen/models"
)

func sampleStats() *models.Stats {
	counts := models.NewCounts()
	counts.Add(models.StatusApproved, models.PrintStatusPrinted)
	counts.Add(models.StatusWaiting, models.PrintStatusUnprinted)
	return models.NewStats(counts, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
}

func setupRedisCache(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *RedisStatsCache) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisStatsCache(client, "", ttl)
}

func TestRedisStatsCacheRoundTrip(t *testing.T) {
	mr, cache := setupRedisCache(t, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "empty cache is a miss, not an error")

	want := sampleStats()
	require.NoError(t, cache.Set(ctx, want))
	assert.True(t, mr.Exists(DefaultStatsKey))
	assert.Equal(t, time.Minute, mr.TTL(DefaultStatsKey))

	got, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.TotalPopulation, got.TotalPopulation)
	assert.Equal(t, 1, got.Status[models.StatusApproved])
	assert.Equal(t, 0, got.Status[models.StatusRejected])
	assert.True(t, want.ComputedAt.Equal(got.ComputedAt))
}

func TestRedisStatsCacheExpiresAndInvalidates(t *testing.T) {
	mr, cache := setupRedisCache(t, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, sampleStats()))
	mr.FastForward(31 * time.Second)
	_, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, sampleStats()))
	require.NoError(t, cache.Invalidate(ctx))
	_, ok, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStatsCacheSurfacesCorruptEntries(t *testing.T) {
	mr, cache := setupRedisCache(t, time.Minute)
	require.NoError(t, mr.Set(DefaultStatsKey, "{not json"))

	_, ok, err := cache.Get(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedisStatsCacheReportsOutage(t *testing.T) {
	mr, cache := setupRedisCache(t, time.Minute)
	mr.Close()

	_, _, err := cache.Get(context.Background())
	assert.Error(t, err)
}

func TestInMemoryStatsCacheTTL(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache := NewInMemoryStatsCache(time.Minute)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, sampleStats()))
	got, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, got.TotalPopulation)

	now = now.Add(time.Minute)
	_, ok, _ = cache.Get(ctx)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, sampleStats()))
	require.NoError(t, cache.Invalidate(ctx))
	_, ok, _ = cache.Get(ctx)
	assert.False(t, ok)
}

func TestInMemoryStatsCacheSharesNoMaps(t *testing.T) {
	cache := NewInMemoryStatsCache(time.Minute)
	ctx := context.Background()

	stats := sampleStats()
	require.NoError(t, cache.Set(ctx, stats))
	stats.Status[models.StatusApproved] = 99
	stats.PrintStatus[models.PrintStatusPrinted] = 99

	got, ok, err := cache.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, got.Status[models.StatusApproved])

	got.Status[models.StatusWaiting] = 42
	got.PrintStatus[models.PrintStatusPrinted] = 42

	again, _, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Status[models.StatusWaiting])
	assert.Equal(t, 1, again.PrintStatus[models.PrintStatusPrinted])
}
