package automation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/brainsait/dosd/internal/config"
	"github.com/brainsait/dosd/internal/health"
	"github.com/brainsait/dosd/internal/telemetry"
)

// Schedule is a recurring workflow registration. ID is assigned by the
// engine's scheduler.
type Schedule struct {
	ID       string `json:"id"`
	Workflow string `json:"workflow"`
	Spec     string `json:"spec"`
	Params   Params `json:"params"`
}

// Spine is the automation pillar. It owns the workflow catalog and the
// schedule list; only the Spine mutates them.
type Spine struct {
	config  config.AutomationConfig
	engine  Engine
	gateway Gateway
	metrics *telemetry.Metrics
	logger  *zap.Logger

	// sem bounds concurrent workflow executions.
	sem chan struct{}

	mu          sync.RWMutex
	workflows   map[string]Workflow
	schedules   []Schedule
	initialized bool
}

// NewSpine creates an uninitialized Spine. gateway may be nil when the
// API gateway is disabled; metrics may be nil.
func NewSpine(cfg config.AutomationConfig, engine Engine, gateway Gateway, metrics *telemetry.Metrics, logger *zap.Logger) *Spine {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxConcurrent := cfg.MaxConcurrentWorkflows
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	return &Spine{
		config:    cfg,
		engine:    engine,
		gateway:   gateway,
		metrics:   metrics,
		logger:    logger,
		sem:       make(chan struct{}, maxConcurrent),
		workflows: make(map[string]Workflow),
	}
}

// Initialize connects the engine, initializes the gateway when enabled,
// and loads the static workflow catalog.
func (s *Spine) Initialize(ctx context.Context) error {
	if err := s.engine.Connect(ctx); err != nil {
		return fmt.Errorf("connecting workflow engine: %w", err)
	}

	if s.config.APIGatewayEnabled && s.gateway != nil {
		if err := s.gateway.Initialize(ctx); err != nil {
			return fmt.Errorf("initializing api gateway: %w", err)
		}
	}

	s.mu.Lock()
	s.workflows = make(map[string]Workflow)
	for _, wf := range coreWorkflows() {
		s.workflows[wf.Name] = wf
	}
	count := len(s.workflows)
	s.initialized = true
	s.mu.Unlock()

	s.logger.Info("automation spine initialized", zap.Int("workflows", count))
	return nil
}

// Shutdown disconnects the engine and gateway and clears the catalog.
func (s *Spine) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.workflows = make(map[string]Workflow)
	s.schedules = nil
	s.initialized = false
	s.mu.Unlock()

	if s.gateway != nil {
		if err := s.gateway.Shutdown(ctx); err != nil {
			s.logger.Warn("gateway shutdown failed", zap.Error(err))
		}
	}
	if err := s.engine.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnecting workflow engine: %w", err)
	}
	return nil
}

// HealthStatus reports engine connectivity: unreachable engine degrades
// the pillar rather than failing it outright, since queued work resumes
// when the engine returns.
func (s *Spine) HealthStatus() health.Status {
	s.mu.RLock()
	initialized := s.initialized
	s.mu.RUnlock()

	if !initialized {
		return health.Unknown
	}
	if !s.engine.IsHealthy(context.Background()) {
		return health.Degraded
	}
	return health.Healthy
}

// ExecuteWorkflow looks up the workflow by name, submits it to the
// engine, and awaits completion. Execution failures are recorded in the
// result status; only lookup and submission failures are errors.
func (s *Spine) ExecuteWorkflow(ctx context.Context, name string, params Params) (Result, error) {
	if err := s.ready(); err != nil {
		return Result{}, err
	}

	s.mu.RLock()
	workflow, ok := s.workflows[name]
	s.mu.RUnlock()
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrWorkflowNotFound, name)
	}

	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	defer func() { <-s.sem }()

	startedAt := time.Now().UTC()
	executionID, err := s.engine.Execute(ctx, workflow, params)
	if err != nil {
		s.countExecution(name, StatusFailed)
		return Result{}, fmt.Errorf("submitting workflow %s: %w", name, err)
	}

	result := Result{
		WorkflowID:  workflow.ID,
		ExecutionID: executionID,
		StartedAt:   startedAt,
	}

	output, err := s.engine.Await(ctx, executionID)
	result.CompletedAt = time.Now().UTC()
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
	} else {
		result.Status = StatusCompleted
		result.Output = output
	}

	s.countExecution(name, result.Status)
	s.logger.Info("workflow finished",
		zap.String("workflow", name),
		zap.String("execution_id", executionID),
		zap.String("status", string(result.Status)),
		zap.Duration("took", result.CompletedAt.Sub(result.StartedAt)),
	)
	return result, nil
}

// ScheduleWorkflow registers a recurring execution with the engine's
// scheduler. The schedule spec is a cron expression evaluated by the
// engine; the schedule is recorded locally only after the engine
// accepts it.
func (s *Spine) ScheduleWorkflow(ctx context.Context, name, spec string, params Params) error {
	if err := s.ready(); err != nil {
		return err
	}

	s.mu.RLock()
	workflow, ok := s.workflows[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrWorkflowNotFound, name)
	}

	scheduleID, err := s.engine.Schedule(ctx, workflow, spec, params)
	if err != nil {
		return fmt.Errorf("scheduling workflow %s: %w", name, err)
	}

	s.mu.Lock()
	s.schedules = append(s.schedules, Schedule{ID: scheduleID, Workflow: name, Spec: spec, Params: params})
	s.mu.Unlock()

	s.logger.Info("workflow scheduled",
		zap.String("workflow", name),
		zap.String("schedule_id", scheduleID),
		zap.String("spec", spec),
	)
	return nil
}

// CallExternalAPI passes through to the gateway. Fails with
// ErrGatewayUnavailable when the gateway was never initialized.
func (s *Spine) CallExternalAPI(ctx context.Context, service ExternalService, endpoint string, params map[string]string) (map[string]any, error) {
	if s.gateway == nil || !s.config.APIGatewayEnabled {
		return nil, ErrGatewayUnavailable
	}
	return s.gateway.Call(ctx, service, endpoint, params)
}

// Workflows returns a snapshot of the catalog.
func (s *Spine) Workflows() []Workflow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Workflow, 0, len(s.workflows))
	for _, wf := range s.workflows {
		out = append(out, wf)
	}
	return out
}

// Schedules returns a snapshot of registered schedules.
func (s *Spine) Schedules() []Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Schedule(nil), s.schedules...)
}

func (s *Spine) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return ErrNotInitialized
	}
	return nil
}

func (s *Spine) countExecution(workflow string, status Status) {
	if s.metrics != nil {
		s.metrics.WorkflowExecutions.WithLabelValues(workflow, string(status)).Inc()
	}
}
