package service

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	citizenmetrics "idcard/internal/citizen/metrics"
)

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *citizenmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer replaces the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithTx sets the transaction runner. Without one, mutations run on the bare store.
func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

// WithStatsCache enables cache-aside dashboard stats.
func WithStatsCache(cache StatsCache) Option {
	return func(s *Service) {
		s.statsCache = cache
	}
}

// WithEvents appends lifecycle events to the outbox in each mutation's transaction.
func WithEvents(events EventStore) Option {
	return func(s *Service) {
		s.events = events
	}
}

// WithBusinessIDPrefix sets the prefix stripped by fuzzy lookups. Defaults to "ET-".
func WithBusinessIDPrefix(prefix string) Option {
	return func(s *Service) {
		s.prefix = prefix
	}
}

// WithBulkConcurrency bounds the per-id fan-out of bulk operations.
func WithBulkConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.bulkConcurrency = n
		}
	}
}

// WithMaxBatch caps the number of ids one bulk request may carry.
func WithMaxBatch(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBatch = n
		}
	}
}
