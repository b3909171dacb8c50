// Package metrics provides Prometheus metrics for the scoreboard service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the service's Prometheus registry and instruments. A nil
// Manager is valid and records nothing, so callers never need nil checks.
type Manager struct {
	registry *prometheus.Registry

	scoreboardBuilds        prometheus.Counter
	scoreboardBuildDuration prometheus.Histogram
	cohortSize              *prometheus.GaugeVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates a Manager with its own registry, avoiding the default Go
// collectors.
func New(namespace string) *Manager {
	if namespace == "" {
		namespace = "textclub"
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Manager{
		registry: reg,
		scoreboardBuilds: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoreboard",
			Name:      "builds_total",
			Help:      "Number of scoreboard computations.",
		}),
		scoreboardBuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scoreboard",
			Name:      "build_duration_seconds",
			Help:      "Scoreboard computation latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		cohortSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scoreboard",
			Name:      "cohort_size",
			Help:      "Agents per cohort in the most recent computation.",
		}, []string{"window", "cohort"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// ObserveScoreboardBuild records one scoreboard computation.
func (m *Manager) ObserveScoreboardBuild(d time.Duration) {
	if m == nil {
		return
	}
	m.scoreboardBuilds.Inc()
	m.scoreboardBuildDuration.Observe(d.Seconds())
}

// SetCohortSize records the agent count of one cohort for one window.
func (m *Manager) SetCohortSize(window, cohort string, n int) {
	if m == nil {
		return
	}
	m.cohortSize.WithLabelValues(window, cohort).Set(float64(n))
}

// ObserveHTTPRequest records one served HTTP request.
func (m *Manager) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
