// Package metrics exposes Prometheus collectors for the request counter
// and background jobs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors and the registry they are registered with.
type Metrics struct {
	registry *prometheus.Registry

	// RequestsCounted counts recorded requests by user agent category.
	RequestsCounted *prometheus.CounterVec
	// RequestsSkipped counts requests excluded by path or user agent.
	RequestsSkipped *prometheus.CounterVec
	// RecordFailures counts request counts that failed to persist.
	RecordFailures prometheus.Counter
	// JobRuns counts background job runs by job and result.
	JobRuns *prometheus.CounterVec
	// JobDuration observes how long background jobs take.
	JobDuration *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry, along with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RequestsCounted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stratadash",
			Name:      "requests_counted_total",
			Help:      "Requests recorded by the request counter, by user agent category.",
		}, []string{"category"}),
		RequestsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stratadash",
			Name:      "requests_skipped_total",
			Help:      "Requests excluded from counting, by reason.",
		}, []string{"reason"}),
		RecordFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stratadash",
			Name:      "request_count_failures_total",
			Help:      "Request counts that could not be persisted.",
		}),
		JobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stratadash",
			Name:      "job_runs_total",
			Help:      "Background job runs, by job and result.",
		}, []string{"job", "result"}),
		JobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stratadash",
			Name:      "job_duration_seconds",
			Help:      "Background job run time.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"job"}),
	}
	reg.MustRegister(
		m.RequestsCounted,
		m.RequestsSkipped,
		m.RecordFailures,
		m.JobRuns,
		m.JobDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveJob records one background job run.
func (m *Metrics) ObserveJob(name string, took time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.JobRuns.WithLabelValues(name, result).Inc()
	m.JobDuration.WithLabelValues(name).Observe(took.Seconds())
}
