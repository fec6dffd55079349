package app

import (
	"github.com/dkeye/voicegate/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "voicegate"

type Metrics struct {
	Emitted     *prometheus.CounterVec
	Confirmed   *prometheus.CounterVec
	Exhausted   *prometheus.CounterVec
	Stale       prometheus.Counter
	Pending     prometheus.Gauge
	Connections prometheus.Gauge
}

// NewMetrics builds the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Emitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_emitted_total",
			Help:      "Voice state frames handed to the transport.",
		}, []string{"stage", "kind"}),
		Confirmed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_confirmed_total",
			Help:      "Pending requests retired by a server confirmation.",
		}, []string{"stage"}),
		Exhausted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_exhausted_total",
			Help:      "Pending requests dropped after the retry policy gave up.",
		}, []string{"stage"}),
		Stale: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_confirmations_total",
			Help:      "Confirmations ignored because they did not match the pending request.",
		}),
		Pending: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_requests",
			Help:      "Requests waiting for confirmation.",
		}),
		Connections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cached_connections",
			Help:      "Connections held in the cache.",
		}),
	}
}

func (m *Metrics) ObserveEmit(stage domain.Stage, kind string) {
	m.Emitted.WithLabelValues(stage.String(), kind).Inc()
}

func (m *Metrics) ObserveConfirm(stage domain.Stage) {
	m.Confirmed.WithLabelValues(stage.String()).Inc()
}

func (m *Metrics) ObserveExhausted(stage domain.Stage) {
	m.Exhausted.WithLabelValues(stage.String()).Inc()
}
