// Package observability exposes dispatch activity as Prometheus metrics.
// Attach Metrics to a dispatcher with dispatch.WithHook and serve the
// registry with promhttp.
package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/lattice/pkg/dispatch"
	"github.com/aretw0/lattice/pkg/invalid"
	"github.com/aretw0/lattice/pkg/marker"
)

// Metrics implements dispatch.Hook over a set of Prometheus collectors.
type Metrics struct {
	dispatches *prometheus.CounterVec
	misses     *prometheus.CounterVec
	failures   *prometheus.CounterVec
	depth      prometheus.Histogram
}

// NewMetrics builds the collectors and registers them with reg. A nil
// registerer falls back to the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lattice_dispatches_total",
				Help: "Total handler dispatches",
			},
			[]string{"dispatcher", "key"},
		),
		misses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lattice_dispatch_misses_total",
				Help: "Dispatches that found no handler",
			},
			[]string{"dispatcher", "key"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lattice_value_failures_total",
				Help: "Dispatches that reported the value invalid",
			},
			[]string{"dispatcher"},
		),
		depth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lattice_dispatch_depth",
			Help:    "Recursion depth at dispatch time",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	reg.MustRegister(m.dispatches, m.misses, m.failures, m.depth)
	return m
}

// ObserveDispatch records one handler invocation.
func (m *Metrics) ObserveDispatch(dispatcher string, key marker.Key, depth int, err error) {
	m.dispatches.WithLabelValues(dispatcher, string(key)).Inc()
	m.depth.Observe(float64(depth))
	if err == nil {
		return
	}
	if errors.Is(err, dispatch.ErrNoHandler) {
		m.misses.WithLabelValues(dispatcher, string(key)).Inc()
		return
	}
	if _, ok := invalid.As(err); ok {
		m.failures.WithLabelValues(dispatcher).Inc()
	}
}
