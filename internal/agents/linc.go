package agents

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// taskHandler is the work body of one agent type.
type taskHandler func(ctx context.Context, task string) (map[string]string, error)

// lincAgent is the common state machine shared by the five core agents.
// The mutex guards status; the Ready->Busy transition is a compare-and-
// set under the lock, so a second concurrent task observes Busy and is
// rejected rather than queued.
type lincAgent struct {
	typ     Type
	handler taskHandler
	logger  *zap.Logger

	mu     sync.Mutex
	status Status
}

func newLincAgent(typ Type, handler taskHandler, logger *zap.Logger) *lincAgent {
	return &lincAgent{
		typ:     typ,
		handler: handler,
		logger:  logger,
		status:  StatusOffline,
	}
}

func (a *lincAgent) Type() Type { return a.typ }

func (a *lincAgent) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *lincAgent) Initialize(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status != StatusOffline {
		return fmt.Errorf("agent %s already initialized", a.typ)
	}
	a.status = StatusInitializing
	a.status = StatusReady
	a.logger.Info("agent ready", zap.String("agent", string(a.typ)))
	return nil
}

func (a *lincAgent) Shutdown(_ context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = StatusOffline
}

func (a *lincAgent) Healthy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status == StatusReady || a.status == StatusBusy
}

// ProcessTask acquires the agent, runs the handler, and always returns
// the agent to Ready, task failure included.
func (a *lincAgent) ProcessTask(ctx context.Context, task string) (TaskResult, error) {
	if err := a.acquire(); err != nil {
		return TaskResult{}, err
	}
	defer a.release()

	start := time.Now()
	output, err := a.handler(ctx, task)
	if err != nil {
		return TaskResult{}, fmt.Errorf("agent %s task failed: %w", a.typ, err)
	}

	return TaskResult{
		Agent:    a.typ,
		Task:     task,
		Output:   output,
		Duration: time.Since(start),
	}, nil
}

func (a *lincAgent) acquire() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status != StatusReady {
		return &UnavailableError{Agent: a.typ, Status: a.status}
	}
	a.status = StatusBusy
	return nil
}

func (a *lincAgent) release() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status == StatusBusy {
		a.status = StatusReady
	}
}

// newCoreAgents builds the five catalog agents. Handlers are the Go
// seam for real integrations; each returns the summary map surfaced in
// orchestration results.
func newCoreAgents(logger *zap.Logger) map[Type]Agent {
	handlers := map[Type]taskHandler{
		MasterLinc: func(_ context.Context, task string) (map[string]string, error) {
			return map[string]string{"orchestration": "completed", "task": task}, nil
		},
		DocsLinc: func(_ context.Context, task string) (map[string]string, error) {
			return map[string]string{"documents": "processed", "task": task}, nil
		},
		ClaimLinc: func(_ context.Context, task string) (map[string]string, error) {
			return map[string]string{"claims": "processed", "task": task}, nil
		},
		VoiceLinc: func(_ context.Context, task string) (map[string]string, error) {
			return map[string]string{"voice": "processed", "task": task}, nil
		},
		MapLinc: func(_ context.Context, task string) (map[string]string, error) {
			return map[string]string{"mapping": "completed", "task": task}, nil
		},
	}

	out := make(map[Type]Agent, len(handlers))
	for typ, handler := range handlers {
		out[typ] = newLincAgent(typ, handler, logger)
	}
	return out
}
