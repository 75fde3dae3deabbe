// Package metrics exposes the engine's prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the engine's collectors on a private registry so tests can
// instantiate it without collector name collisions.
type Metrics struct {
	registry *prometheus.Registry

	preparesTotal        prometheus.Counter
	prepareWarningsTotal prometheus.Counter
	commitsTotal         *prometheus.CounterVec
	availabilityAttempts prometheus.Histogram
}

// New builds a metrics set backed by its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		preparesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "careagenda_prepares_total",
			Help: "Draft preparation requests handled.",
		}),
		prepareWarningsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "careagenda_prepare_warnings_total",
			Help: "Warnings attached to prepared drafts.",
		}),
		commitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "careagenda_commits_total",
			Help: "Commit attempts by operation and outcome.",
		}, []string{"operation", "outcome"}),
		availabilityAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "careagenda_availability_attempts",
			Help:    "Busy checks consumed per conflict search.",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
	}

	registry.MustRegister(
		m.preparesTotal,
		m.prepareWarningsTotal,
		m.commitsTotal,
		m.availabilityAttempts,
	)
	return m
}

// ObservePrepare records one preparation and its warning count.
func (m *Metrics) ObservePrepare(warnings int) {
	m.preparesTotal.Inc()
	m.prepareWarningsTotal.Add(float64(warnings))
}

// ObserveCommit records a commit attempt outcome for an operation.
func (m *Metrics) ObserveCommit(operation string, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.commitsTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveAvailability records the attempts one conflict search consumed.
func (m *Metrics) ObserveAvailability(attempts int) {
	m.availabilityAttempts.Observe(float64(attempts))
}

// Handler serves the registry in prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
