package automation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/brainsait/dosd/internal/config"
)

// Engine is the external workflow execution contract. Execute submits
// and returns an opaque execution id; Await blocks until that execution
// completes and returns its output. Schedule registers a recurring run
// on a cron spec and returns the schedule id.
type Engine interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsHealthy(ctx context.Context) bool
	Execute(ctx context.Context, workflow Workflow, params Params) (string, error)
	Await(ctx context.Context, executionID string) (map[string]string, error)
	Schedule(ctx context.Context, workflow Workflow, spec string, params Params) (string, error)
}

// temporalEngine runs workflows on a Temporal cluster. Each catalog
// workflow maps to a workflow type of the same name on the configured
// task queue.
type temporalEngine struct {
	config config.AutomationConfig
	logger *zap.Logger

	mu     sync.RWMutex
	client client.Client
	runs   map[string]client.WorkflowRun
}

// NewTemporalEngine creates an unconnected Temporal-backed engine.
func NewTemporalEngine(cfg config.AutomationConfig, logger *zap.Logger) Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &temporalEngine{
		config: cfg,
		logger: logger,
		runs:   make(map[string]client.WorkflowRun),
	}
}

// Connect dials the Temporal frontend.
func (e *temporalEngine) Connect(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client != nil {
		return nil
	}

	c, err := client.Dial(client.Options{
		HostPort:  e.config.EngineHostPort,
		Namespace: e.config.Namespace,
	})
	if err != nil {
		return fmt.Errorf("dialing workflow engine: %w", err)
	}

	e.client = c
	e.logger.Info("workflow engine connected",
		zap.String("host", e.config.EngineHostPort),
		zap.String("namespace", e.config.Namespace),
	)
	return nil
}

// Disconnect closes the client connection.
func (e *temporalEngine) Disconnect(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client == nil {
		return nil
	}
	e.client.Close()
	e.client = nil
	e.runs = make(map[string]client.WorkflowRun)
	return nil
}

// IsHealthy probes the frontend health endpoint.
func (e *temporalEngine) IsHealthy(ctx context.Context) bool {
	e.mu.RLock()
	c := e.client
	e.mu.RUnlock()
	if c == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := c.CheckHealth(ctx, &client.CheckHealthRequest{})
	return err == nil
}

// Execute starts the workflow and returns its execution id.
func (e *temporalEngine) Execute(ctx context.Context, workflow Workflow, params Params) (string, error) {
	e.mu.RLock()
	c := e.client
	e.mu.RUnlock()
	if c == nil {
		return "", fmt.Errorf("workflow engine not connected")
	}

	options := client.StartWorkflowOptions{
		ID:                       fmt.Sprintf("%s-%s", workflow.ID, uuid.NewString()),
		TaskQueue:                e.config.TaskQueue,
		WorkflowExecutionTimeout: e.config.ExecutionTimeout.Duration(),
	}

	run, err := c.ExecuteWorkflow(ctx, options, workflow.Name, params)
	if err != nil {
		return "", fmt.Errorf("starting workflow %s: %w", workflow.Name, err)
	}

	e.mu.Lock()
	e.runs[run.GetID()] = run
	e.mu.Unlock()

	e.logger.Info("workflow started",
		zap.String("workflow", workflow.Name),
		zap.String("workflow_id", run.GetID()),
		zap.String("run_id", run.GetRunID()),
	)
	return run.GetID(), nil
}

// Schedule creates a cron-driven schedule for the workflow.
func (e *temporalEngine) Schedule(ctx context.Context, workflow Workflow, spec string, params Params) (string, error) {
	e.mu.RLock()
	c := e.client
	e.mu.RUnlock()
	if c == nil {
		return "", fmt.Errorf("workflow engine not connected")
	}

	scheduleID := fmt.Sprintf("%s-schedule-%s", workflow.ID, uuid.NewString())
	handle, err := c.ScheduleClient().Create(ctx, client.ScheduleOptions{
		ID: scheduleID,
		Spec: client.ScheduleSpec{
			CronExpressions: []string{spec},
		},
		Action: &client.ScheduleWorkflowAction{
			ID:        fmt.Sprintf("%s-%s", workflow.ID, uuid.NewString()),
			Workflow:  workflow.Name,
			Args:      []interface{}{params},
			TaskQueue: e.config.TaskQueue,
		},
	})
	if err != nil {
		return "", fmt.Errorf("scheduling workflow %s: %w", workflow.Name, err)
	}

	e.logger.Info("workflow schedule created",
		zap.String("workflow", workflow.Name),
		zap.String("schedule_id", handle.GetID()),
		zap.String("spec", spec),
	)
	return handle.GetID(), nil
}

// Await blocks until the execution completes and returns its output.
func (e *temporalEngine) Await(ctx context.Context, executionID string) (map[string]string, error) {
	e.mu.Lock()
	run, ok := e.runs[executionID]
	delete(e.runs, executionID)
	e.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown execution %s", executionID)
	}

	var output map[string]string
	if err := run.Get(ctx, &output); err != nil {
		return nil, fmt.Errorf("awaiting execution %s: %w", executionID, err)
	}
	return output, nil
}
