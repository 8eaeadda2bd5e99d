package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the outbox worker.
type Metrics struct {
	PendingDepth    prometheus.Gauge
	PublishedTotal  *prometheus.CounterVec
	PublishFailures prometheus.Counter
	PublishDuration prometheus.Histogram
	BatchSize       prometheus.Histogram
	PollDuration    prometheus.Histogram
	PurgedTotal     prometheus.Counter
}

// New registers the outbox metrics with the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the outbox metrics with reg. Tests pass a fresh registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PendingDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "idcard_outbox_pending_total",
			Help: "Current number of unpublished citizen events",
		}),
		PublishedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "idcard_outbox_published_total",
			Help: "Citizen events published to Kafka, by event type",
		}, []string{"event_type"}),
		PublishFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "idcard_outbox_publish_failures_total",
			Help: "Total number of outbox fetch or publish failures",
		}),
		PublishDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "idcard_outbox_publish_duration_seconds",
			Help:    "Time taken to publish one event to Kafka",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "idcard_outbox_batch_size",
			Help:    "Number of entries processed per poll",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		PollDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "idcard_outbox_poll_duration_seconds",
			Help:    "Time taken for each poll cycle",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		PurgedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "idcard_outbox_purged_total",
			Help: "Published entries removed by retention cleanup",
		}),
	}
}

func (m *Metrics) SetPendingDepth(count int64) {
	m.PendingDepth.Set(float64(count))
}

func (m *Metrics) IncPublished(eventType string) {
	m.PublishedTotal.WithLabelValues(eventType).Inc()
}

func (m *Metrics) IncPublishFailures() {
	m.PublishFailures.Inc()
}

func (m *Metrics) ObservePublishDuration(seconds float64) {
	m.PublishDuration.Observe(seconds)
}

func (m *Metrics) ObserveBatchSize(size int) {
	m.BatchSize.Observe(float64(size))
}

func (m *Metrics) ObservePollDuration(seconds float64) {
	m.PollDuration.Observe(seconds)
}

func (m *Metrics) AddPurged(n int64) {
	m.PurgedTotal.Add(float64(n))
}
