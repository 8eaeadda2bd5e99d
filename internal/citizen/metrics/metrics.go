package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for citizen record operations.
type Metrics struct {
	RecordsCreated     prometheus.Counter
	RecordsDeleted     prometheus.Counter
	Transitions        *prometheus.CounterVec
	PrintUpdates       *prometheus.CounterVec
	BulkBatchSize      *prometheus.HistogramVec
	StatsCacheHits     prometheus.Counter
	StatsCacheMisses   prometheus.Counter
	StatsCacheFailures prometheus.Counter
	OperationLatency   *prometheus.HistogramVec
}

// New registers the citizen metrics with the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the citizen metrics with reg.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RecordsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "idcard_citizens_created_total",
			Help: "Total number of citizen records registered",
		}),
		RecordsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "idcard_citizens_deleted_total",
			Help: "Total number of citizen records deleted",
		}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idcard_citizen_transitions_total",
			Help: "Status transitions attempted, labeled by target status and result",
		}, []string{"target", "result"}),
		PrintUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idcard_citizen_print_updates_total",
			Help: "Print status changes attempted, labeled by target and result",
		}, []string{"target", "result"}),
		BulkBatchSize: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "idcard_citizen_bulk_batch_size",
			Help:    "Number of ids per bulk request, labeled by operation",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"operation"}),
		StatsCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "idcard_citizen_stats_cache_hits_total",
			Help: "Dashboard stats served from cache",
		}),
		StatsCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "idcard_citizen_stats_cache_misses_total",
			Help: "Dashboard stats recomputed from the store",
		}),
		StatsCacheFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "idcard_citizen_stats_cache_failures_total",
			Help: "Stats cache reads or writes that failed and were bypassed",
		}),
		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "idcard_citizen_operation_latency_seconds",
			Help:    "Latency of citizen service operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
	}
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func (m *Metrics) IncrementCreated() { m.RecordsCreated.Inc() }

func (m *Metrics) IncrementDeleted() { m.RecordsDeleted.Inc() }

func (m *Metrics) RecordTransition(target string, ok bool) {
	m.Transitions.WithLabelValues(target, result(ok)).Inc()
}

func (m *Metrics) RecordPrintUpdate(target string, ok bool) {
	m.PrintUpdates.WithLabelValues(target, result(ok)).Inc()
}

func (m *Metrics) ObserveBulkBatch(operation string, size int) {
	m.BulkBatchSize.WithLabelValues(operation).Observe(float64(size))
}

func (m *Metrics) IncrementCacheHit() { m.StatsCacheHits.Inc() }

func (m *Metrics) IncrementCacheMiss() { m.StatsCacheMisses.Inc() }

func (m *Metrics) IncrementCacheFailure() { m.StatsCacheFailures.Inc() }

// ObserveLatency records time since start under operation.
func (m *Metrics) ObserveLatency(operation string, start time.Time) {
	m.OperationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
