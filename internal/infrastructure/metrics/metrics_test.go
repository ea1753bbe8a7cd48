package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordRefresh(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRefresh("learning_paths", 50*time.Millisecond, true)
	c.RecordRefresh("learning_paths", 30*time.Millisecond, false)
	c.RecordRefresh("dashboard_stats", 10*time.Millisecond, true)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.refreshSuccess.WithLabelValues("learning_paths")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.refreshFailure.WithLabelValues("learning_paths")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.refreshSuccess.WithLabelValues("dashboard_stats")))
	assert.Equal(t, float64(0), testutil.ToFloat64(c.refreshFailure.WithLabelValues("dashboard_stats")))
}

func TestCollector_AssistantFallback(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAssistantFallback()
	c.RecordAssistantFallback()

	assert.Equal(t, float64(2), testutil.ToFloat64(c.assistantFallback))
}

func TestCollector_JobOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordJobExecution("dashboard-refresh:s1", time.Second, true)
	c.RecordJobExecution("dashboard-refresh:s1", time.Second, false)
	c.RecordJobSkip("dashboard-refresh:s1")

	assert.Equal(t, float64(1), testutil.ToFloat64(c.jobExecutions.WithLabelValues("dashboard-refresh:s1", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.jobExecutions.WithLabelValues("dashboard-refresh:s1", "failure")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.jobSkips.WithLabelValues("dashboard-refresh:s1")))
}

func TestCollector_SessionGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.SessionStarted()
	c.SessionStarted()
	c.SessionEnded()

	assert.Equal(t, float64(1), testutil.ToFloat64(c.activeSessions))
}

func TestCollector_RegistersWithoutCollision(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { NewCollector(reg) })
	// A second collector on the same registry must panic on duplicate names.
	require.Panics(t, func() { NewCollector(reg) })
}
