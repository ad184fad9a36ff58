// Package metrics provides Prometheus metrics for reconciliation runs.
//
// Metrics are registered on a caller-supplied registerer rather than the
// global default, so that several runs (or tests) can keep separate sets. A
// nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "greensync"

// Fetch outcomes used as the "status" label.
const (
	StatusSuccess   = "success"
	StatusRetried   = "retried"
	StatusIntegrity = "integrity"
	StatusFailed    = "failed"
)

// Run outcomes used as the "result" label.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Local entry decisions used as the "action" label.
const (
	ActionKeep   = "keep"
	ActionDelete = "delete"
	ActionFetch  = "fetch"
)

// Metrics holds the collectors for one registry.
type Metrics struct {
	fetchAttempts   *prometheus.CounterVec
	fetchBytes      prometheus.Counter
	fetchDuration   prometheus.Histogram
	entries         *prometheus.CounterVec
	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Histogram
	tasksInFlight   prometheus.Gauge
	lastRunFinished prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		fetchAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_attempts_total",
				Help:      "Total number of file fetch attempts by outcome",
			},
			[]string{"status"},
		),
		fetchBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_bytes_total",
				Help:      "Total verified bytes written by fetch tasks",
			},
		),
		fetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Duration of a fetch task including retries",
				Buckets:   prometheus.DefBuckets,
			},
		),
		entries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entries_total",
				Help:      "Local entries by reconciliation decision",
			},
			[]string{"action"},
		),
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total reconciliation runs by result",
			},
			[]string{"result"},
		),
		runDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall time of a reconciliation run",
				Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300},
			},
		),
		tasksInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "fetch_tasks_in_flight",
				Help:      "Number of fetch tasks currently running",
			},
		),
		lastRunFinished: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last reconciliation run finished",
			},
		),
	}
}

// RecordFetchAttempt counts one fetch attempt with the given status.
func (m *Metrics) RecordFetchAttempt(status string) {
	if m == nil {
		return
	}
	m.fetchAttempts.WithLabelValues(status).Inc()
}

// RecordFetch records a completed fetch task.
func (m *Metrics) RecordFetch(bytes int, duration time.Duration) {
	if m == nil {
		return
	}
	m.fetchBytes.Add(float64(bytes))
	m.fetchDuration.Observe(duration.Seconds())
}

// RecordEntry counts one reconciliation decision.
func (m *Metrics) RecordEntry(action string) {
	if m == nil {
		return
	}
	m.entries.WithLabelValues(action).Inc()
}

// TaskStarted increments the in-flight gauge.
func (m *Metrics) TaskStarted() {
	if m == nil {
		return
	}
	m.tasksInFlight.Inc()
}

// TaskFinished decrements the in-flight gauge.
func (m *Metrics) TaskFinished() {
	if m == nil {
		return
	}
	m.tasksInFlight.Dec()
}

// RecordRun records a finished run.
func (m *Metrics) RecordRun(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(result).Inc()
	m.runDuration.Observe(duration.Seconds())
	m.lastRunFinished.SetToCurrentTime()
}
