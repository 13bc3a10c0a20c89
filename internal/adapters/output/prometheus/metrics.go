package prometheus

import (
	"net/http"

	"whatsapp-checker/internal/domain"
	"whatsapp-checker/internal/ports/output"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ output.Metrics = (*Metrics)(nil)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	registry *prometheus.Registry

	Ready         prometheus.Gauge
	SessionState  prometheus.Gauge
	Reconnects    prometheus.Counter
	QueueWaiting  prometheus.Gauge
	QueueInFlight prometheus.Gauge
	Queries       *prometheus.CounterVec
}

// NewMetrics registers the instruments on a dedicated registry
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		Ready: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_ready",
			Help:      "1 when the WhatsApp session is ready for queries.",
		}),
		SessionState: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_state",
			Help:      "Current session lifecycle state (0 uninitialized ... 7 auth_failed).",
		}),
		Reconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_reconnects_total",
			Help:      "Reconnection attempts after a dropped session.",
		}),
		QueueWaiting: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "query_queue_waiting",
			Help:      "Queries waiting in the serialization queue.",
		}),
		QueueInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "query_queue_in_flight",
			Help:      "Queries running against the session (0 or 1).",
		}),
		Queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Registration checks by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) SetSessionState(state domain.SessionState, ready bool) {
	m.SessionState.Set(float64(state))
	if ready {
		m.Ready.Set(1)
	} else {
		m.Ready.Set(0)
	}
}

func (m *Metrics) IncReconnects() {
	m.Reconnects.Inc()
}

func (m *Metrics) SetQueue(waiting, inFlight int) {
	m.QueueWaiting.Set(float64(waiting))
	m.QueueInFlight.Set(float64(inFlight))
}

func (m *Metrics) ObserveQuery(outcome string) {
	m.Queries.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
