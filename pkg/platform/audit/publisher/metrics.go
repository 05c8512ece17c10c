package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for audit publishing.
type Metrics struct {
	EventsEmitted   prometheus.Counter
	PersistFailures prometheus.Counter
	OutboxDropped   prometheus.Counter
	PersistDuration prometheus.Histogram
}

// NewMetrics registers the audit publisher metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		EventsEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stacia_audit_events_emitted_total",
			Help: "Total number of audit events persisted",
		}),
		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stacia_audit_persist_failures_total",
			Help: "Total number of audit event persistence failures",
		}),
		OutboxDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stacia_audit_outbox_dropped_total",
			Help: "Total number of persisted audit events not forwarded because the outbox was full",
		}),
		PersistDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "stacia_audit_persist_duration_seconds",
			Help:    "Time taken to persist an audit event",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
	}
}

func (m *Metrics) IncEventsEmitted() {
	m.EventsEmitted.Inc()
}

func (m *Metrics) IncPersistFailures() {
	m.PersistFailures.Inc()
}

func (m *Metrics) IncOutboxDropped() {
	m.OutboxDropped.Inc()
}

func (m *Metrics) ObservePersistDuration(seconds float64) {
	m.PersistDuration.Observe(seconds)
}
