package redis

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"idcard/internal/platform/config"
)

// Client wraps go-redis with health and pool metrics.
type Client struct {
	*redis.Client
}

// New connects and pings. An empty URL returns a nil client so the caller can
// use the in-process stats cache instead.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{Client: client}, nil
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// RegisterMetrics exports pool statistics, read at scrape time.
func (c *Client) RegisterMetrics(reg prometheus.Registerer) error {
	if c == nil {
		return nil
	}
	return reg.Register(&poolCollector{client: c.Client})
}

var (
	poolHitsDesc     = prometheus.NewDesc("idcard_redis_pool_hits_total", "Connections found in the pool.", nil, nil)
	poolMissesDesc   = prometheus.NewDesc("idcard_redis_pool_misses_total", "Connections not found in the pool.", nil, nil)
	poolTimeoutsDesc = prometheus.NewDesc("idcard_redis_pool_timeouts_total", "Waits for a connection that timed out.", nil, nil)
	poolTotalDesc    = prometheus.NewDesc("idcard_redis_pool_total_conns", "Connections in the pool.", nil, nil)
	poolIdleDesc     = prometheus.NewDesc("idcard_redis_pool_idle_conns", "Idle connections in the pool.", nil, nil)
	poolStaleDesc    = prometheus.NewDesc("idcard_redis_pool_stale_conns_total", "Stale connections removed from the pool.", nil, nil)
)

type poolCollector struct {
	client *redis.Client
}

func (p *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- poolHitsDesc
	ch <- poolMissesDesc
	ch <- poolTimeoutsDesc
	ch <- poolTotalDesc
	ch <- poolIdleDesc
	ch <- poolStaleDesc
}

func (p *poolCollector) Collect(ch chan<- prometheus.Metric) {
	s := p.client.PoolStats()
	ch <- prometheus.MustNewConstMetric(poolHitsDesc, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(poolMissesDesc, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(poolTimeoutsDesc, prometheus.CounterValue, float64(s.Timeouts))
	ch <- prometheus.MustNewConstMetric(poolTotalDesc, prometheus.GaugeValue, float64(s.TotalConns))
	ch <- prometheus.MustNewConstMetric(poolIdleDesc, prometheus.GaugeValue, float64(s.IdleConns))
	ch <- prometheus.MustNewConstMetric(poolStaleDesc, prometheus.CounterValue, float64(s.StaleConns))
}
