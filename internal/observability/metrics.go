// Package observability groups the service's Prometheus instruments.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the Prometheus instruments the HTTP service reports.
// Every instrument here is observable from the server side: session
// starts and signaling latency at the SDP relay, turns at the message
// and expert endpoints, credentials at the token endpoint.
type Metrics struct {
	SessionsStarted  *prometheus.CounterVec
	Turns            *prometheus.CounterVec
	TokensMinted     prometheus.Counter
	SignalingLatency prometheus.Histogram
}

// NewMetrics registers the instruments on the default registry.
func NewMetrics(namespace string) *Metrics {
	return newMetrics(promauto.With(prometheus.DefaultRegisterer), namespace)
}

// NewMetricsWith registers the instruments on reg. Tests use this to
// avoid duplicate registration on the default registry.
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	return newMetrics(promauto.With(reg), namespace)
}

func newMetrics(factory promauto.Factory, namespace string) *Metrics {
	return &Metrics{
		SessionsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Sessions started via the signaling relay, by turn-taking mode.",
		}, []string{"mode"}),
		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "User turns recorded, by kind.",
		}, []string{"kind"}),
		TokensMinted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_minted_total",
			Help:      "Ephemeral session credentials minted for clients.",
		}),
		SignalingLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "signaling_latency_ms",
			Help:      "SDP exchange round-trip latency in milliseconds.",
			Buckets:   []float64{50, 100, 200, 400, 700, 1000, 2000, 5000},
		}),
	}
}

func (m *Metrics) ObserveSignalingLatency(d time.Duration) {
	m.SignalingLatency.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
