package agents

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/brainsait/dosd/internal/events"
	"github.com/brainsait/dosd/internal/health"
	"github.com/brainsait/dosd/internal/telemetry"
)

// Outcome is the per-agent entry in an orchestration result: either a
// task result or the error that agent produced. One agent's failure
// never blocks dispatch to the others.
type Outcome struct {
	Result TaskResult `json:"result,omitempty"`
	Err    error      `json:"-"`
	Error  string     `json:"error,omitempty"`
}

// Registry is the agent pillar. It owns the agent map; agents are
// created at Initialize and destroyed only at Shutdown.
type Registry struct {
	metrics *telemetry.Metrics
	bus     events.Publisher
	logger  *zap.Logger

	mu          sync.RWMutex
	agents      map[Type]Agent
	initialized bool
}

// NewRegistry creates an uninitialized Registry. metrics and bus may be
// nil.
func NewRegistry(metrics *telemetry.Metrics, bus events.Publisher, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		metrics: metrics,
		bus:     bus,
		logger:  logger,
		agents:  make(map[Type]Agent),
	}
}

// Initialize creates and initializes the five core agents in catalog
// order. Any agent failing to initialize aborts startup.
func (r *Registry) Initialize(ctx context.Context) error {
	agents := newCoreAgents(r.logger)
	for _, typ := range CoreTypes {
		if err := agents[typ].Initialize(ctx); err != nil {
			return fmt.Errorf("initializing agent %s: %w", typ, err)
		}
	}

	r.mu.Lock()
	r.agents = agents
	r.initialized = true
	r.mu.Unlock()

	r.logger.Info("agent registry initialized", zap.Int("agents", len(agents)))
	return nil
}

// Shutdown stops every agent and clears the map. In-flight tasks are
// not forcibly cancelled; their agents go offline when they release.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	agents := r.agents
	r.agents = make(map[Type]Agent)
	r.initialized = false
	r.mu.Unlock()

	for _, agent := range agents {
		agent.Shutdown(ctx)
	}
	return nil
}

// HealthStatus aggregates agent health: all healthy is Healthy, more
// than half is Degraded, anything less is Critical.
func (r *Registry) HealthStatus() health.Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.initialized || len(r.agents) == 0 {
		return health.Unknown
	}

	healthy := 0
	for _, agent := range r.agents {
		if agent.Healthy() {
			healthy++
		}
	}

	switch {
	case healthy == len(r.agents):
		return health.Healthy
	case healthy > len(r.agents)/2:
		return health.Degraded
	default:
		return health.Critical
	}
}

// ActiveAgents returns the types currently registered, in no guaranteed
// order.
func (r *Registry) ActiveAgents() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Type, 0, len(r.agents))
	for typ := range r.agents {
		out = append(out, typ)
	}
	return out
}

// Agent returns the handle for the given type.
func (r *Registry) Agent(typ Type) (Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	agent, ok := r.agents[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, typ)
	}
	return agent, nil
}

// Statuses returns a snapshot of every agent's current status.
func (r *Registry) Statuses() map[Type]Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[Type]Status, len(r.agents))
	for typ, agent := range r.agents {
		out[typ] = agent.Status()
	}
	return out
}

// OrchestrateTask dispatches the task to each requested agent
// concurrently. Every requested agent appears in the result map with
// either its output or its error; per-agent failures never abort the
// batch.
func (r *Registry) OrchestrateTask(ctx context.Context, task string, requested []Type) (map[Type]Outcome, error) {
	if len(requested) == 0 {
		return nil, fmt.Errorf("no agents requested")
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	outcomes := make(map[Type]Outcome, len(requested))

	record := func(typ Type, outcome Outcome) {
		mu.Lock()
		outcomes[typ] = outcome
		mu.Unlock()
	}

	for _, typ := range requested {
		agent, err := r.Agent(typ)
		if err != nil {
			record(typ, Outcome{Err: err, Error: err.Error()})
			continue
		}

		wg.Add(1)
		go func(typ Type, agent Agent) {
			defer wg.Done()
			result, err := agent.ProcessTask(ctx, task)
			if err != nil {
				label := "error"
				var unavailable *UnavailableError
				if errors.As(err, &unavailable) {
					label = "rejected"
				}
				r.observeTask(typ, label, 0)
				record(typ, Outcome{Err: err, Error: err.Error()})
				return
			}
			r.observeTask(typ, "success", result.Duration.Seconds())
			record(typ, Outcome{Result: result})
		}(typ, agent)
	}
	wg.Wait()

	r.publishTaskEvent(task, outcomes)
	return outcomes, nil
}

func (r *Registry) observeTask(typ Type, outcome string, seconds float64) {
	if r.metrics == nil {
		return
	}
	r.metrics.AgentTasks.WithLabelValues(string(typ), outcome).Inc()
	if outcome == "success" {
		r.metrics.AgentTaskDuration.WithLabelValues(string(typ)).Observe(seconds)
	}
}

func (r *Registry) publishTaskEvent(task string, outcomes map[Type]Outcome) {
	if r.bus == nil {
		return
	}
	summary := make(map[string]string, len(outcomes))
	for typ, outcome := range outcomes {
		if outcome.Err != nil {
			summary[string(typ)] = "error"
		} else {
			summary[string(typ)] = "success"
		}
	}
	r.bus.Publish(events.SubjectAgentTask, map[string]any{
		"task":     task,
		"outcomes": summary,
	})
}
