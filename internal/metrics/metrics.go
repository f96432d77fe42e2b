// Package metrics provides Prometheus metrics for report runs and exports.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ExecutionsTotal   *prometheus.CounterVec
	ExecutionDuration *prometheus.HistogramVec
	DroppedPredicates *prometheus.CounterVec
	ExportsTotal      *prometheus.CounterVec
	StaleResultsTotal prometheus.Counter
	ScheduledRuns     *prometheus.CounterVec
}

// NewMetrics registers all collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{}

	m.ExecutionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_executions_total",
			Help: "Total number of report executions",
		},
		[]string{"source", "status"},
	)

	m.ExecutionDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "report_execution_duration_seconds",
			Help:    "Duration of the backend round trip of a report execution",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)

	m.DroppedPredicates = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_dropped_predicates_total",
			Help: "Filter predicates skipped because they failed validation",
		},
		[]string{"source"},
	)

	m.ExportsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_exports_total",
			Help: "Total number of report exports",
		},
		[]string{"format", "status"},
	)

	m.StaleResultsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "report_stale_results_total",
			Help: "Live run completions discarded because a newer request was issued",
		},
	)

	m.ScheduledRuns = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_scheduled_runs_total",
			Help: "Scheduled export runs",
		},
		[]string{"status"},
	)

	return m
}

// NewDefaultMetrics registers on the global registry served at /metrics.
func NewDefaultMetrics() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}

func (m *Metrics) ObserveExecution(source string, ok bool, elapsed time.Duration, dropped int) {
	m.ExecutionsTotal.WithLabelValues(source, status(ok)).Inc()
	m.ExecutionDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	if dropped > 0 {
		m.DroppedPredicates.WithLabelValues(source).Add(float64(dropped))
	}
}

func (m *Metrics) ObserveExport(format string, ok bool) {
	m.ExportsTotal.WithLabelValues(format, status(ok)).Inc()
}

func (m *Metrics) ObserveStale() {
	m.StaleResultsTotal.Inc()
}

func (m *Metrics) ObserveScheduledRun(ok bool) {
	m.ScheduledRuns.WithLabelValues(status(ok)).Inc()
}
