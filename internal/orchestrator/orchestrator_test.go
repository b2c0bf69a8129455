package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brainsait/dosd/internal/health"
)

// fakePillar records lifecycle calls against a shared journal so tests
// can assert ordering across pillars.
type fakePillar struct {
	name        string
	journal     *callJournal
	initErr     error
	shutdownErr error

	mu     sync.Mutex
	status health.Status
}

type callJournal struct {
	mu    sync.Mutex
	calls []string
}

func (j *callJournal) record(call string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.calls = append(j.calls, call)
}

func (j *callJournal) snapshot() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.calls...)
}

func (p *fakePillar) Initialize(context.Context) error {
	p.journal.record("init:" + p.name)
	if p.initErr != nil {
		return p.initErr
	}
	p.setStatus(health.Healthy)
	return nil
}

func (p *fakePillar) Shutdown(context.Context) error {
	p.journal.record("shutdown:" + p.name)
	p.setStatus(health.Unknown)
	return p.shutdownErr
}

func (p *fakePillar) HealthStatus() health.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *fakePillar) setStatus(s health.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = s
}

// newTestOrchestrator wires five fake pillars in dependency order.
func newTestOrchestrator(t *testing.T) (*Orchestrator, map[string]*fakePillar, *callJournal) {
	t.Helper()

	journal := &callJournal{}
	names := []string{"identity", "knowledge", "automation", "agents", "monetization"}
	fakes := make(map[string]*fakePillar, len(names))
	pillars := make([]namedPillar, 0, len(names))
	for _, name := range names {
		fake := &fakePillar{name: name, journal: journal}
		fakes[name] = fake
		pillars = append(pillars, namedPillar{name: name, pillar: fake})
	}

	o := &Orchestrator{
		pillars:  pillars,
		logger:   zap.NewNop(),
		interval: 10 * time.Millisecond,
		status:   StatusInitializing,
	}
	return o, fakes, journal
}

func TestOverallPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		samples [5]health.Status
		want    health.Status
	}{
		{"all healthy", [5]health.Status{health.Healthy, health.Healthy, health.Healthy, health.Healthy, health.Healthy}, health.Healthy},
		{"critical wins over degraded", [5]health.Status{health.Critical, health.Degraded, health.Healthy, health.Healthy, health.Healthy}, health.Critical},
		{"degraded wins over healthy", [5]health.Status{health.Healthy, health.Degraded, health.Healthy, health.Healthy, health.Healthy}, health.Degraded},
		{"one unknown is not healthy", [5]health.Status{health.Healthy, health.Healthy, health.Unknown, health.Healthy, health.Healthy}, health.Unknown},
		{"all unknown", [5]health.Status{health.Unknown, health.Unknown, health.Unknown, health.Unknown, health.Unknown}, health.Unknown},
		{"critical wins over unknown", [5]health.Status{health.Unknown, health.Unknown, health.Critical, health.Unknown, health.Unknown}, health.Critical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Order independence: every rotation of the same multiset
			// yields the same aggregate.
			for shift := 0; shift < 5; shift++ {
				var rotated [5]health.Status
				for i, s := range tt.samples {
					rotated[(i+shift)%5] = s
				}
				h := SystemHealth{
					Identity:     rotated[0],
					Knowledge:    rotated[1],
					Automation:   rotated[2],
					Agents:       rotated[3],
					Monetization: rotated[4],
				}
				assert.Equal(t, tt.want, h.Overall(), "shift %d", shift)
			}
		})
	}
}

func TestOrchestrator_StartInitializesInDependencyOrder(t *testing.T) {
	o, _, journal := newTestOrchestrator(t)
	defer o.Stop(context.Background())

	require.NoError(t, o.Start(context.Background()))
	assert.Equal(t, StatusRunning, o.Status())

	assert.Equal(t, []string{
		"init:identity",
		"init:knowledge",
		"init:automation",
		"init:agents",
		"init:monetization",
	}, journal.snapshot())
}

func TestOrchestrator_StartAbortsOnPillarFailure(t *testing.T) {
	o, fakes, journal := newTestOrchestrator(t)
	fakes["automation"].initErr = errors.New("engine unreachable")

	err := o.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "automation pillar")
	assert.Equal(t, StatusError, o.Status())

	// Later pillars are never initialized; no rollback is attempted.
	assert.Equal(t, []string{
		"init:identity",
		"init:knowledge",
		"init:automation",
	}, journal.snapshot())
}

func TestOrchestrator_StopShutsDownInReverseOrder(t *testing.T) {
	o, fakes, journal := newTestOrchestrator(t)
	require.NoError(t, o.Start(context.Background()))

	// A failing shutdown never aborts the sequence.
	fakes["agents"].shutdownErr = errors.New("agent busy")

	o.Stop(context.Background())
	assert.Equal(t, StatusStopped, o.Status())

	calls := journal.snapshot()[5:]
	assert.Equal(t, []string{
		"shutdown:monetization",
		"shutdown:agents",
		"shutdown:automation",
		"shutdown:knowledge",
		"shutdown:identity",
	}, calls)
}

func TestOrchestrator_StopIsIdempotent(t *testing.T) {
	o, _, journal := newTestOrchestrator(t)
	require.NoError(t, o.Start(context.Background()))

	o.Stop(context.Background())
	before := len(journal.snapshot())
	o.Stop(context.Background())
	assert.Len(t, journal.snapshot(), before)
}

func TestOrchestrator_StartFromRunningFails(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)
	defer o.Stop(context.Background())

	require.NoError(t, o.Start(context.Background()))
	assert.Error(t, o.Start(context.Background()))
}

func TestOrchestrator_RestartAfterStop(t *testing.T) {
	o, _, _ := newTestOrchestrator(t)

	require.NoError(t, o.Start(context.Background()))
	o.Stop(context.Background())

	require.NoError(t, o.Start(context.Background()))
	defer o.Stop(context.Background())
	assert.Equal(t, StatusRunning, o.Status())
}

func TestOrchestrator_MonitorDegradesAndRecovers(t *testing.T) {
	o, fakes, _ := newTestOrchestrator(t)
	defer o.Stop(context.Background())

	require.NoError(t, o.Start(context.Background()))

	fakes["automation"].setStatus(health.Degraded)
	require.Eventually(t, func() bool {
		return o.Status() == StatusDegraded
	}, time.Second, 5*time.Millisecond)

	snap := o.Health()
	assert.Equal(t, health.Degraded, snap.Automation)
	assert.Equal(t, health.Degraded, snap.Overall())
	assert.False(t, snap.LastCheck.IsZero())

	fakes["automation"].setStatus(health.Healthy)
	require.Eventually(t, func() bool {
		return o.Status() == StatusRunning
	}, time.Second, 5*time.Millisecond)
}

func TestOrchestrator_MonitorCriticalFlipsToError(t *testing.T) {
	o, fakes, _ := newTestOrchestrator(t)

	require.NoError(t, o.Start(context.Background()))
	fakes["knowledge"].setStatus(health.Critical)

	require.Eventually(t, func() bool {
		return o.Status() == StatusError
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, health.Critical, o.Health().Overall())

	// Stop still tears down cleanly from Error.
	o.Stop(context.Background())
	assert.Equal(t, StatusStopped, o.Status())
}

func TestSystemStatusString(t *testing.T) {
	assert.Equal(t, "running", StatusRunning.String())
	assert.Equal(t, "error", StatusError.String())
	assert.Equal(t, "unknown", SystemStatus(99).String())
}
