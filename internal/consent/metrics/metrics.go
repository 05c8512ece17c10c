package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the consent module.
type Metrics struct {
	SessionsStarted prometheus.Counter
	Toggles         *prometheus.CounterVec
	EssentialLocked prometheus.Counter
	InvalidKeys     prometheus.Counter
	DataRequests    *prometheus.CounterVec
	ToggleDuration  prometheus.Histogram
}

// New creates a new Metrics instance with all consent module metrics registered.
func New() *Metrics {
	return &Metrics{
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stacia_consent_sessions_started_total",
			Help: "Total number of consent sessions started",
		}),
		Toggles: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stacia_consent_toggles_total",
			Help: "Consent changes by category and resulting status",
		}, []string{"category", "status"}),
		EssentialLocked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stacia_consent_essential_toggles_ignored_total",
			Help: "Toggle requests on the essential category, which never changes",
		}),
		InvalidKeys: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stacia_consent_invalid_key_toggles_total",
			Help: "Toggle requests naming an unknown consent category",
		}),
		DataRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stacia_consent_data_requests_total",
			Help: "Data principal rights requests by kind",
		}, []string{"kind"}),
		ToggleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "stacia_consent_toggle_duration_seconds",
			Help:    "Duration of toggle operations including persistence and audit",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementSessionsStarted() {
	m.SessionsStarted.Inc()
}

func (m *Metrics) IncrementToggle(category, status string) {
	m.Toggles.WithLabelValues(category, status).Inc()
}

func (m *Metrics) IncrementEssentialLocked() {
	m.EssentialLocked.Inc()
}

func (m *Metrics) IncrementInvalidKey() {
	m.InvalidKeys.Inc()
}

func (m *Metrics) IncrementDataRequest(kind string) {
	m.DataRequests.WithLabelValues(kind).Inc()
}

// ObserveToggle records the duration of a toggle.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveToggle(start time.Time) {
	m.ToggleDuration.Observe(time.Since(start).Seconds())
}
