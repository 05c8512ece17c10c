package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers the simulated analysis runs.
type Metrics struct {
	RunsStarted   prometheus.Counter
	RunsCompleted prometheus.Counter
	RunsActive    prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		RunsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stacia_analysis_runs_started_total",
			Help: "Total number of analysis runs started",
		}),
		RunsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stacia_analysis_runs_completed_total",
			Help: "Total number of analysis runs that reached 100%",
		}),
		RunsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "stacia_analysis_runs_active",
			Help: "Analysis runs in progress at the last tick",
		}),
	}
}

func (m *Metrics) IncrementRunsStarted() {
	m.RunsStarted.Inc()
}

func (m *Metrics) IncrementRunsCompleted() {
	m.RunsCompleted.Inc()
}

func (m *Metrics) SetRunsActive(n int) {
	m.RunsActive.Set(float64(n))
}
