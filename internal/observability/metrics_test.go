package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewMetrics(reg), reg
}

func TestNewMetrics_registersLifecycleMetrics(t *testing.T) {
	m, reg := newTestMetrics(t)

	m.RecordStart("ok")
	m.RecordTermination("ok")
	m.RecordCompletion()
	m.RecordResolution("live")
	m.RecordClaim("ok")
	m.RecordTaskCompletion("ok")
	m.RecordTrackingDegraded("start")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, name := range []string{
		"procflow_instance_starts_total",
		"procflow_instance_terminations_total",
		"procflow_instance_completions_total",
		"procflow_status_resolutions_total",
		"procflow_task_claims_total",
		"procflow_task_completions_total",
		"procflow_tracking_degraded_total",
	} {
		assert.True(t, names[name], "metric %s not registered", name)
	}
}

func TestMetrics_nilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordStart("ok")
		m.RecordTrackingDegraded("claim")
		m.RecordResolution("absent")
	})
}

func TestMetrics_trackingDegradedByOperation(t *testing.T) {
	m, _ := newTestMetrics(t)
	m.RecordTrackingDegraded("start")
	m.RecordTrackingDegraded("start")
	m.RecordTrackingDegraded("terminate")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.TrackingDegradedTotal.WithLabelValues("start")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TrackingDegradedTotal.WithLabelValues("terminate")))
}

func TestGinMiddleware_countsMatchedRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m, _ := newTestMetrics(t)

	router := gin.New()
	router.Use(m.GinMiddleware())
	router.GET("/api/processes/:id/status", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/processes/p-1/status", nil))

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/processes/:id/status", "404"))
	assert.Equal(t, float64(1), got)
}
