package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var httpDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Metrics holds all Prometheus metric instruments for the control plane.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Lifecycle metrics
	InstanceStartsTotal       *prometheus.CounterVec
	InstanceTerminationsTotal *prometheus.CounterVec
	InstanceCompletionsTotal  prometheus.Counter
	StatusResolutionsTotal    *prometheus.CounterVec

	// Task metrics
	TaskClaimsTotal      *prometheus.CounterVec
	TaskCompletionsTotal *prometheus.CounterVec

	// Shadow store drift
	TrackingDegradedTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metric instruments.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "procflow_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "procflow_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "route"}),

		InstanceStartsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "procflow_instance_starts_total",
			Help: "Process instance start attempts by outcome.",
		}, []string{"outcome"}),
		InstanceTerminationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "procflow_instance_terminations_total",
			Help: "Process instance terminations by outcome.",
		}, []string{"outcome"}),
		InstanceCompletionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "procflow_instance_completions_total",
			Help: "Shadow rows moved to COMPLETED by engine end events.",
		}),
		StatusResolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "procflow_status_resolutions_total",
			Help: "Status lookups by source (live, historic, cache, absent, error).",
		}, []string{"source"}),

		TaskClaimsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "procflow_task_claims_total",
			Help: "Task claims by outcome.",
		}, []string{"outcome"}),
		TaskCompletionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "procflow_task_completions_total",
			Help: "Task completions by outcome.",
		}, []string{"outcome"}),

		TrackingDegradedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "procflow_tracking_degraded_total",
			Help: "Engine actions that succeeded while the shadow write failed.",
		}, []string{"operation"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.InstanceStartsTotal,
		m.InstanceTerminationsTotal,
		m.InstanceCompletionsTotal,
		m.StatusResolutionsTotal,
		m.TaskClaimsTotal,
		m.TaskCompletionsTotal,
		m.TrackingDegradedTotal,
	)

	return m
}

func (m *Metrics) RecordStart(outcome string) {
	if m != nil {
		m.InstanceStartsTotal.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) RecordTermination(outcome string) {
	if m != nil {
		m.InstanceTerminationsTotal.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) RecordCompletion() {
	if m != nil {
		m.InstanceCompletionsTotal.Inc()
	}
}

func (m *Metrics) RecordResolution(source string) {
	if m != nil {
		m.StatusResolutionsTotal.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) RecordClaim(outcome string) {
	if m != nil {
		m.TaskClaimsTotal.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) RecordTaskCompletion(outcome string) {
	if m != nil {
		m.TaskCompletionsTotal.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) RecordTrackingDegraded(operation string) {
	if m != nil {
		m.TrackingDegradedTotal.WithLabelValues(operation).Inc()
	}
}

// GinMiddleware records request count and latency per matched route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
