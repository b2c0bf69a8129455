package automation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brainsait/dosd/internal/config"
	"github.com/brainsait/dosd/internal/health"
)

// fakeEngine completes executions immediately with canned output.
type fakeEngine struct {
	mu          sync.Mutex
	connected   bool
	healthy     bool
	executeErr  error
	awaitErr    error
	scheduleErr error
	executed    []string
	scheduled   []string
	output      map[string]string
	seq         int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{healthy: true, output: map[string]string{"result": "success"}}
}

func (f *fakeEngine) Connect(context.Context) error    { f.connected = true; return nil }
func (f *fakeEngine) Disconnect(context.Context) error { f.connected = false; return nil }
func (f *fakeEngine) IsHealthy(context.Context) bool   { return f.connected && f.healthy }

func (f *fakeEngine) Execute(_ context.Context, wf Workflow, _ Params) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.executeErr != nil {
		return "", f.executeErr
	}
	f.seq++
	id := wf.Name + "-exec"
	f.executed = append(f.executed, wf.Name)
	return id, nil
}

func (f *fakeEngine) Schedule(_ context.Context, wf Workflow, spec string, _ Params) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scheduleErr != nil {
		return "", f.scheduleErr
	}
	f.scheduled = append(f.scheduled, wf.Name+"@"+spec)
	return wf.Name + "-schedule", nil
}

func (f *fakeEngine) Await(_ context.Context, _ string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.awaitErr != nil {
		return nil, f.awaitErr
	}
	return f.output, nil
}

// fakeGateway records calls.
type fakeGateway struct {
	initialized bool
	calls       []string
}

func (f *fakeGateway) Initialize(context.Context) error { f.initialized = true; return nil }
func (f *fakeGateway) Shutdown(context.Context) error   { f.initialized = false; return nil }
func (f *fakeGateway) Call(_ context.Context, service ExternalService, endpoint string, _ map[string]string) (map[string]any, error) {
	f.calls = append(f.calls, string(service)+":"+endpoint)
	return map[string]any{"status": "success"}, nil
}

func newTestSpine(t *testing.T, engine Engine, gateway Gateway, gatewayEnabled bool) *Spine {
	t.Helper()
	cfg := config.AutomationConfig{
		TaskQueue:              "dos-automation",
		APIGatewayEnabled:      gatewayEnabled,
		MaxConcurrentWorkflows: 2,
	}
	spine := NewSpine(cfg, engine, gateway, nil, nil)
	require.NoError(t, spine.Initialize(context.Background()))
	return spine
}

func TestSpine_InitializeLoadsCatalog(t *testing.T) {
	spine := newTestSpine(t, newFakeEngine(), nil, false)

	workflows := spine.Workflows()
	require.Len(t, workflows, 4)

	names := make(map[string]bool)
	for _, wf := range workflows {
		assert.True(t, wf.Active)
		assert.NotEmpty(t, wf.ID)
		assert.NotEmpty(t, wf.Steps)
		names[wf.Name] = true
	}
	for _, want := range []string{"Client Onboarding", "Claim Processing", "Lead Generation", "Document Processing"} {
		assert.True(t, names[want], "missing workflow %s", want)
	}
}

func TestSpine_HealthStatus(t *testing.T) {
	engine := newFakeEngine()
	spine := NewSpine(config.AutomationConfig{}, engine, nil, nil, nil)

	assert.Equal(t, health.Unknown, spine.HealthStatus())

	require.NoError(t, spine.Initialize(context.Background()))
	assert.Equal(t, health.Healthy, spine.HealthStatus())

	engine.healthy = false
	assert.Equal(t, health.Degraded, spine.HealthStatus())
}

func TestSpine_ExecuteWorkflow(t *testing.T) {
	engine := newFakeEngine()
	spine := newTestSpine(t, engine, nil, false)

	result, err := spine.ExecuteWorkflow(context.Background(), "Claim Processing", Params{Subject: "claim-42"})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, "Claim Processing-exec", result.ExecutionID)
	assert.Equal(t, map[string]string{"result": "success"}, result.Output)
	assert.NotEmpty(t, result.WorkflowID)
	assert.False(t, result.CompletedAt.Before(result.StartedAt))
}

func TestSpine_ExecuteWorkflow_NotFound(t *testing.T) {
	spine := newTestSpine(t, newFakeEngine(), nil, false)

	_, err := spine.ExecuteWorkflow(context.Background(), "Nonexistent", Params{})
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestSpine_ExecuteWorkflow_EngineFailureIsRecorded(t *testing.T) {
	engine := newFakeEngine()
	engine.awaitErr = errors.New("activity timed out")
	spine := newTestSpine(t, engine, nil, false)

	result, err := spine.ExecuteWorkflow(context.Background(), "Lead Generation", Params{})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, result.Status)
	assert.Contains(t, result.Error, "activity timed out")
}

func TestSpine_ExecuteWorkflow_SubmissionFailureIsError(t *testing.T) {
	engine := newFakeEngine()
	engine.executeErr = errors.New("namespace not found")
	spine := newTestSpine(t, engine, nil, false)

	_, err := spine.ExecuteWorkflow(context.Background(), "Lead Generation", Params{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "submitting workflow")
}

func TestSpine_ScheduleWorkflow(t *testing.T) {
	engine := newFakeEngine()
	spine := newTestSpine(t, engine, nil, false)

	require.NoError(t, spine.ScheduleWorkflow(context.Background(), "Lead Generation", "0 9 * * 1", Params{}))

	schedules := spine.Schedules()
	require.Len(t, schedules, 1)
	assert.Equal(t, "Lead Generation", schedules[0].Workflow)
	assert.Equal(t, "Lead Generation-schedule", schedules[0].ID)
	assert.Equal(t, []string{"Lead Generation@0 9 * * 1"}, engine.scheduled)

	err := spine.ScheduleWorkflow(context.Background(), "Nonexistent", "* * * * *", Params{})
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
	assert.Len(t, engine.scheduled, 1)
}

func TestSpine_ScheduleWorkflow_EngineFailure(t *testing.T) {
	engine := newFakeEngine()
	engine.scheduleErr = errors.New("scheduler unavailable")
	spine := newTestSpine(t, engine, nil, false)

	err := spine.ScheduleWorkflow(context.Background(), "Lead Generation", "0 9 * * 1", Params{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheduler unavailable")
	assert.Empty(t, spine.Schedules())
}

func TestSpine_CallExternalAPI(t *testing.T) {
	gateway := &fakeGateway{}
	spine := newTestSpine(t, newFakeEngine(), gateway, true)

	out, err := spine.CallExternalAPI(context.Background(), ServiceNPHIES, "eligibility", map[string]string{"member": "123"})
	require.NoError(t, err)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, []string{"nphies:eligibility"}, gateway.calls)
}

func TestSpine_CallExternalAPI_GatewayDisabled(t *testing.T) {
	spine := newTestSpine(t, newFakeEngine(), nil, false)

	_, err := spine.CallExternalAPI(context.Background(), ServiceStripe, "charges", nil)
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestSpine_ShutdownClearsCatalog(t *testing.T) {
	engine := newFakeEngine()
	gateway := &fakeGateway{}
	spine := newTestSpine(t, engine, gateway, true)

	require.NoError(t, spine.Shutdown(context.Background()))
	assert.False(t, engine.connected)
	assert.False(t, gateway.initialized)
	assert.Empty(t, spine.Workflows())

	_, err := spine.ExecuteWorkflow(context.Background(), "Claim Processing", Params{})
	assert.ErrorIs(t, err, ErrNotInitialized)
}
