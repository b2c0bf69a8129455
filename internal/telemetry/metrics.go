// Package telemetry provides Prometheus metrics and OTEL tracing for dosd.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all dosd Prometheus collectors.
type Metrics struct {
	// SystemStatus is the orchestrator status as an enum gauge
	// (0=initializing, 1=starting, 2=running, 3=degraded, 4=stopping,
	// 5=stopped, 6=error).
	SystemStatus prometheus.Gauge

	// PillarHealth is the latest health sample per pillar
	// (0=unknown, 1=healthy, 2=degraded, 3=critical).
	PillarHealth *prometheus.GaugeVec

	// AgentTasks counts processed agent tasks by agent and outcome.
	AgentTasks *prometheus.CounterVec

	// AgentTaskDuration tracks task processing latency per agent.
	AgentTaskDuration *prometheus.HistogramVec

	// WorkflowExecutions counts workflow executions by workflow and status.
	WorkflowExecutions *prometheus.CounterVec

	// KnowledgeQueryDuration tracks retrieval latency.
	KnowledgeQueryDuration prometheus.Histogram

	// KnowledgeDocuments is the current in-memory document count.
	KnowledgeDocuments prometheus.Gauge
}

// NewMetrics registers and returns all collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SystemStatus: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "dos",
			Subsystem: "system",
			Name:      "status",
			Help:      "Orchestrator status (0=initializing, 1=starting, 2=running, 3=degraded, 4=stopping, 5=stopped, 6=error)",
		}),
		PillarHealth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "dos",
			Subsystem: "system",
			Name:      "pillar_health",
			Help:      "Latest pillar health sample (0=unknown, 1=healthy, 2=degraded, 3=critical)",
		}, []string{"pillar"}),
		AgentTasks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dos",
			Subsystem: "agents",
			Name:      "tasks_total",
			Help:      "Total agent tasks by agent and outcome (success, error, rejected)",
		}, []string{"agent", "outcome"}),
		AgentTaskDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dos",
			Subsystem: "agents",
			Name:      "task_duration_seconds",
			Help:      "Agent task processing duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"agent"}),
		WorkflowExecutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dos",
			Subsystem: "automation",
			Name:      "workflow_executions_total",
			Help:      "Total workflow executions by workflow and final status",
		}, []string{"workflow", "status"}),
		KnowledgeQueryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dos",
			Subsystem: "knowledge",
			Name:      "query_duration_seconds",
			Help:      "Knowledge query duration in seconds (embed + search + resolve)",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		KnowledgeDocuments: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "dos",
			Subsystem: "knowledge",
			Name:      "documents",
			Help:      "Documents currently held in the knowledge store",
		}),
	}
}
