package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RequestsRejected *prometheus.CounterVec
	CheckFailures    prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		RequestsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "stacia_ratelimit_rejected_total",
			Help: "Requests rejected with 429 by endpoint class",
		}, []string{"class"}),
		CheckFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stacia_ratelimit_check_failures_total",
			Help: "Rate limit checks that failed and let the request through",
		}),
	}
}

func (m *Metrics) IncrementRejected(class string) {
	m.RequestsRejected.WithLabelValues(class).Inc()
}

func (m *Metrics) IncrementCheckFailures() {
	m.CheckFailures.Inc()
}
