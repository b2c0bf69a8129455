package telemetry

import (
	"context"
	"testing"

	"github.com/brainsait/dosd/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.SystemStatus.Set(2)
	m.PillarHealth.WithLabelValues("knowledge").Set(1)
	m.AgentTasks.WithLabelValues("MasterLinc", "success").Inc()
	m.WorkflowExecutions.WithLabelValues("Claim Processing", "completed").Inc()
	m.KnowledgeDocuments.Set(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SystemStatus))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PillarHealth.WithLabelValues("knowledge")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AgentTasks.WithLabelValues("MasterLinc", "success")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.KnowledgeDocuments))
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
}

func TestTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), config.TelemetryConfig{Enabled: false}, "test")
	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.NoError(t, tp.Shutdown(context.Background()))
}
