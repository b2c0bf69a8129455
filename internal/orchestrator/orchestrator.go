package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/brainsait/dosd/internal/agents"
	"github.com/brainsait/dosd/internal/automation"
	"github.com/brainsait/dosd/internal/config"
	"github.com/brainsait/dosd/internal/events"
	"github.com/brainsait/dosd/internal/health"
	"github.com/brainsait/dosd/internal/identity"
	"github.com/brainsait/dosd/internal/knowledge"
	"github.com/brainsait/dosd/internal/monetization"
	"github.com/brainsait/dosd/internal/telemetry"
)

// Pillar is the uniform lifecycle contract every pillar satisfies.
// Initialize is called exactly once per Start; calling it twice is
// undefined, so the orchestrator sequences it single-pass.
type Pillar interface {
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
	HealthStatus() health.Status
}

// namedPillar pairs a pillar with its stable name for logs, metrics,
// and the health snapshot.
type namedPillar struct {
	name   string
	pillar Pillar
}

// Deps carries the five pillar instances. They are created once, before
// the Orchestrator, and live for the process lifetime; only their
// connection state is opened and closed by Start/Stop.
type Deps struct {
	Identity     *identity.Gate
	Knowledge    *knowledge.Store
	Automation   *automation.Spine
	Agents       *agents.Registry
	Monetization *monetization.Engine

	Metrics *telemetry.Metrics
	Bus     events.Publisher
	Logger  *zap.Logger
}

// Orchestrator drives pillar lifecycle and owns SystemStatus.
type Orchestrator struct {
	deps     Deps
	pillars  []namedPillar
	logger   *zap.Logger
	interval time.Duration

	mu         sync.RWMutex
	status     SystemStatus
	healthSnap SystemHealth

	cancelMonitor context.CancelFunc
	monitorDone   chan struct{}
}

// New creates an Orchestrator in the Initializing state.
func New(deps Deps) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	o := &Orchestrator{
		deps:     deps,
		logger:   deps.Logger,
		interval: config.HealthCheckInterval,
		status:   StatusInitializing,
	}
	// Dependency order: later pillars assume earlier ones are ready.
	o.pillars = []namedPillar{
		{"identity", deps.Identity},
		{"knowledge", deps.Knowledge},
		{"automation", deps.Automation},
		{"agents", deps.Agents},
		{"monetization", deps.Monetization},
	}
	return o
}

// Start initializes the pillars strictly in dependency order. The first
// failure aborts the sequence immediately with no rollback of already
// started pillars, and flips status to Error. On success the health
// monitor starts and status becomes Running.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	switch o.status {
	case StatusInitializing, StatusStopped, StatusError:
	default:
		status := o.status
		o.mu.Unlock()
		return fmt.Errorf("cannot start from status %s", status)
	}
	o.setStatusLocked(StatusStarting)
	o.mu.Unlock()

	o.logger.Info("starting platform")

	for _, p := range o.pillars {
		o.logger.Info("initializing pillar", zap.String("pillar", p.name))
		if err := p.pillar.Initialize(ctx); err != nil {
			o.setStatus(StatusError)
			return fmt.Errorf("initializing %s pillar: %w", p.name, err)
		}
	}

	monitorCtx, cancel := context.WithCancel(context.Background())
	o.mu.Lock()
	o.cancelMonitor = cancel
	o.monitorDone = make(chan struct{})
	o.setStatusLocked(StatusRunning)
	done := o.monitorDone
	o.mu.Unlock()

	go o.monitor(monitorCtx, done)

	o.logger.Info("platform running", zap.Int("pillars", len(o.pillars)))
	return nil
}

// Stop shuts the pillars down in reverse order. Teardown is best
// effort: a pillar's shutdown error is logged and never aborts the
// sequence. The health monitor is cancelled first.
func (o *Orchestrator) Stop(ctx context.Context) {
	o.mu.Lock()
	switch o.status {
	case StatusRunning, StatusDegraded, StatusError:
	default:
		o.mu.Unlock()
		return
	}
	o.setStatusLocked(StatusStopping)
	cancel := o.cancelMonitor
	done := o.monitorDone
	o.cancelMonitor = nil
	o.monitorDone = nil
	o.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	for i := len(o.pillars) - 1; i >= 0; i-- {
		p := o.pillars[i]
		if err := p.pillar.Shutdown(ctx); err != nil {
			o.logger.Warn("pillar shutdown failed",
				zap.String("pillar", p.name),
				zap.Error(err),
			)
		}
	}

	o.setStatus(StatusStopped)
	o.logger.Info("platform stopped")
}

// Status returns the current system status.
func (o *Orchestrator) Status() SystemStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.status
}

// Health returns the latest health snapshot.
func (o *Orchestrator) Health() SystemHealth {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.healthSnap
}

// monitor samples pillar health on a fixed interval while the platform
// is Running or Degraded. A Critical aggregate flips status to Error
// and ends the loop; recovery from Degraded back to all-Healthy
// restores Running.
func (o *Orchestrator) monitor(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !o.checkHealth() {
				return
			}
		}
	}
}

// checkHealth takes one sample and applies the aggregation policy.
// Returns false when the loop should exit.
func (o *Orchestrator) checkHealth() bool {
	samples := make(map[string]health.Status, len(o.pillars))
	for _, p := range o.pillars {
		samples[p.name] = p.pillar.HealthStatus()
	}
	snap := SystemHealth{
		Identity:     samples["identity"],
		Knowledge:    samples["knowledge"],
		Automation:   samples["automation"],
		Agents:       samples["agents"],
		Monetization: samples["monetization"],
		LastCheck:    time.Now().UTC(),
	}
	overall := snap.Overall()

	o.mu.Lock()
	o.healthSnap = snap
	switch overall {
	case health.Critical:
		o.setStatusLocked(StatusError)
	case health.Degraded:
		if o.status == StatusRunning {
			o.setStatusLocked(StatusDegraded)
		}
	case health.Healthy:
		if o.status == StatusDegraded {
			o.setStatusLocked(StatusRunning)
		}
	}
	status := o.status
	o.mu.Unlock()

	o.observeHealth(snap)
	o.publishHealth(snap, overall)

	if overall == health.Critical {
		o.logger.Error("pillar health critical, platform entering error state")
		return false
	}
	return status == StatusRunning || status == StatusDegraded
}

func (o *Orchestrator) setStatus(s SystemStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.setStatusLocked(s)
}

func (o *Orchestrator) setStatusLocked(s SystemStatus) {
	if o.status == s {
		return
	}
	o.status = s
	if o.deps.Metrics != nil {
		o.deps.Metrics.SystemStatus.Set(float64(s))
	}
	if o.deps.Bus != nil {
		o.deps.Bus.Publish(events.SubjectStatus, map[string]string{"status": s.String()})
	}
	o.logger.Info("system status changed", zap.String("status", s.String()))
}

func (o *Orchestrator) observeHealth(snap SystemHealth) {
	if o.deps.Metrics == nil {
		return
	}
	set := func(name string, s health.Status) {
		o.deps.Metrics.PillarHealth.WithLabelValues(name).Set(float64(s))
	}
	set("identity", snap.Identity)
	set("knowledge", snap.Knowledge)
	set("automation", snap.Automation)
	set("agents", snap.Agents)
	set("monetization", snap.Monetization)
}

func (o *Orchestrator) publishHealth(snap SystemHealth, overall health.Status) {
	if o.deps.Bus == nil {
		return
	}
	o.deps.Bus.Publish(events.SubjectHealth, map[string]any{
		"overall":      overall.String(),
		"identity":     snap.Identity.String(),
		"knowledge":    snap.Knowledge.String(),
		"automation":   snap.Automation.String(),
		"agents":       snap.Agents.String(),
		"monetization": snap.Monetization.String(),
		"last_check":   snap.LastCheck,
	})
}
