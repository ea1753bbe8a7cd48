// Package metrics collects and exposes Prometheus metrics for the dashboard.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records dashboard metrics into a Prometheus registry.
type Collector struct {
	refreshSuccess    *prometheus.CounterVec
	refreshFailure    *prometheus.CounterVec
	refreshLatency    *prometheus.HistogramVec
	assistantFallback prometheus.Counter
	assistantLatency  prometheus.Histogram
	jobExecutions     *prometheus.CounterVec
	jobSkips          *prometheus.CounterVec
	jobDuration       *prometheus.HistogramVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	activeSessions    prometheus.Gauge
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		refreshSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_refresh_success_total",
			Help: "Successful feed refreshes, by feed.",
		}, []string{"feed"}),
		refreshFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_refresh_failure_total",
			Help: "Failed feed refreshes, by feed. The per-feed fallback policy applied after each one.",
		}, []string{"feed"}),
		refreshLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_refresh_latency_seconds",
			Help:    "Feed refresh latency in seconds, by feed.",
			Buckets: prometheus.DefBuckets,
		}, []string{"feed"}),
		assistantFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_assistant_fallback_total",
			Help: "Assistant sends answered by the offline reply.",
		}),
		assistantLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_assistant_latency_seconds",
			Help:    "Assistant round-trip latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		jobExecutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_job_executions_total",
			Help: "Scheduled job executions, by job and outcome.",
		}, []string{"job", "outcome"}),
		jobSkips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_job_skips_total",
			Help: "Scheduled job ticks skipped because the previous run was still in progress.",
		}, []string{"job"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_job_duration_seconds",
			Help:    "Scheduled job duration in seconds, by job.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_http_requests_total",
			Help: "HTTP requests served, by method, route, and status code.",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dashboard_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_active_sessions",
			Help: "Currently active dashboard sessions.",
		}),
	}

	reg.MustRegister(
		c.refreshSuccess,
		c.refreshFailure,
		c.refreshLatency,
		c.assistantFallback,
		c.assistantLatency,
		c.jobExecutions,
		c.jobSkips,
		c.jobDuration,
		c.httpRequests,
		c.httpDuration,
		c.activeSessions,
	)

	return c
}

// RecordRefresh records one feed refresh outcome.
func (c *Collector) RecordRefresh(feed string, duration time.Duration, success bool) {
	if success {
		c.refreshSuccess.WithLabelValues(feed).Inc()
	} else {
		c.refreshFailure.WithLabelValues(feed).Inc()
	}
	c.refreshLatency.WithLabelValues(feed).Observe(duration.Seconds())
}

// RecordAssistantFallback records an assistant send that degraded to the
// offline reply.
func (c *Collector) RecordAssistantFallback() {
	c.assistantFallback.Inc()
}

// RecordAssistantLatency records an assistant round trip.
func (c *Collector) RecordAssistantLatency(duration time.Duration) {
	c.assistantLatency.Observe(duration.Seconds())
}

// RecordJobExecution implements scheduler.MetricsRecorder.
func (c *Collector) RecordJobExecution(jobName string, duration time.Duration, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	c.jobExecutions.WithLabelValues(jobName, outcome).Inc()
	c.jobDuration.WithLabelValues(jobName).Observe(duration.Seconds())
}

// RecordJobSkip implements scheduler.MetricsRecorder.
func (c *Collector) RecordJobSkip(jobName string) {
	c.jobSkips.WithLabelValues(jobName).Inc()
}

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// SessionStarted bumps the active session gauge.
func (c *Collector) SessionStarted() {
	c.activeSessions.Inc()
}

// SessionEnded drops the active session gauge.
func (c *Collector) SessionEnded() {
	c.activeSessions.Dec()
}

// Handler returns the HTTP handler that serves the registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
