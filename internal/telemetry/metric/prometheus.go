package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "keva"

// Counter is a cumulative metric that only increases.
type Counter interface {
	Inc()
	Add(float64)
}

// CounterVec is a Counter with labels.
type CounterVec interface {
	WithLabelValues(lvs ...string) Counter
}

// Gauge is a metric that can go up and down.
type Gauge interface {
	Set(float64)
	Inc()
	Dec()
	Add(float64)
	Sub(float64)
}

// Registry holds all application metrics.
type Registry struct {
	// Connection metrics
	ConnectionsAccepted Counter
	ConnectionsRejected Counter
	ConnectionsActive   Gauge

	// Command metrics, partitioned by command name.
	CommandsTotal CounterVec
	CommandErrors CounterVec

	// Store metrics
	KeysSwept Counter

	prom *prometheus.Registry
}

// counterVec adapts prometheus.CounterVec to the CounterVec interface.
type counterVec struct {
	v *prometheus.CounterVec
}

func (c counterVec) WithLabelValues(lvs ...string) Counter {
	return c.v.WithLabelValues(lvs...)
}

// NewRegistry creates a metrics registry with all hot-path metrics
// registered against a private Prometheus registry.
func NewRegistry() *Registry {
	prom := prometheus.NewRegistry()

	accepted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connections_accepted_total",
		Help:      "Total connections admitted past the concurrency gate.",
	})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connections_rejected_total",
		Help:      "Total connections refused by the rate limiter.",
	})
	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connections_active",
		Help:      "Currently connected clients.",
	})
	commands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Total commands processed, partitioned by command name.",
	}, []string{"cmd"})
	cmdErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "command_errors_total",
		Help:      "Total command-level error replies, partitioned by error class.",
	}, []string{"class"})
	swept := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "keys_swept_total",
		Help:      "Total expired keys reclaimed by the background sweeper.",
	})

	prom.MustRegister(accepted, rejected, active, commands, cmdErrors, swept)

	return &Registry{
		ConnectionsAccepted: accepted,
		ConnectionsRejected: rejected,
		ConnectionsActive:   active,
		CommandsTotal:       counterVec{commands},
		CommandErrors:       counterVec{cmdErrors},
		KeysSwept:           swept,
		prom:                prom,
	}
}

// Register adds a custom collector to the registry.
func (r *Registry) Register(c prometheus.Collector) {
	r.prom.MustRegister(c)
}

// Handler returns an HTTP handler serving this registry in Prometheus
// exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.prom, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.prom
}
