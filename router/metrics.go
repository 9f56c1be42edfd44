package router

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tawada/discord-AI-bot/provider"
)

// Metrics holds the Prometheus instruments for provider attempts. All
// instruments live under the aibot namespace.
type Metrics struct {
	attempts  *prometheus.CounterVec
	fallbacks prometheus.Counter
	latency   *prometheus.HistogramVec
}

// NewMetrics registers the router instruments with reg. Pass
// prometheus.DefaultRegisterer outside of tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aibot",
			Subsystem: "router",
			Name:      "provider_attempts_total",
			Help:      "Provider attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "aibot",
			Subsystem: "router",
			Name:      "fallbacks_total",
			Help:      "Times the router fell back to the default provider.",
		}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aibot",
			Subsystem: "router",
			Name:      "attempt_duration_seconds",
			Help:      "Provider attempt latency in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"provider"}),
	}
}

// RecordAttempt counts one provider attempt and observes its latency.
func (m *Metrics) RecordAttempt(tag provider.Tag, outcome string, elapsed time.Duration) {
	m.attempts.WithLabelValues(string(tag), outcome).Inc()
	m.latency.WithLabelValues(string(tag)).Observe(elapsed.Seconds())
}

// RecordFallback counts one fallback transition.
func (m *Metrics) RecordFallback() {
	m.fallbacks.Inc()
}
