// Package agents implements the agent pillar: the fixed catalog of five
// core agents, each with its own one-task-at-a-time state machine, and
// the registry that dispatches work across them.
package agents

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Type identifies one of the five core agents. The catalog is closed;
// agents are not runtime-created.
type Type string

const (
	MasterLinc Type = "MasterLinc"
	DocsLinc   Type = "DocsLinc"
	ClaimLinc  Type = "ClaimLinc"
	VoiceLinc  Type = "VoiceLinc"
	MapLinc    Type = "MapLinc"
)

// CoreTypes lists the catalog in initialization order.
var CoreTypes = []Type{MasterLinc, DocsLinc, ClaimLinc, VoiceLinc, MapLinc}

// Description returns the agent's role.
func (t Type) Description() string {
	switch t {
	case MasterLinc:
		return "Main orchestrator and coordinator"
	case DocsLinc:
		return "Document processing and knowledge management"
	case ClaimLinc:
		return "Healthcare claims automation"
	case VoiceLinc:
		return "Voice interaction and communication"
	case MapLinc:
		return "Business intelligence and mapping"
	default:
		return "unknown"
	}
}

// Status is the per-agent state. Transitions are driven only by the
// agent's own operations.
type Status string

const (
	StatusOffline      Status = "offline"
	StatusInitializing Status = "initializing"
	StatusReady        Status = "ready"
	StatusBusy         Status = "busy"
	StatusError        Status = "error"
)

// ErrAgentNotFound is returned when a requested agent type is not in
// the registry.
var ErrAgentNotFound = errors.New("agent not found")

// UnavailableError reports a task rejected because the agent was not
// Ready. Callers must not assume queuing; rejection is immediate.
type UnavailableError struct {
	Agent  Type
	Status Status
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("agent %s unavailable: status %s", e.Agent, e.Status)
}

// TaskResult is the output of one processed task.
type TaskResult struct {
	Agent    Type              `json:"agent"`
	Task     string            `json:"task"`
	Output   map[string]string `json:"output"`
	Duration time.Duration     `json:"duration"`
}

// Agent is the shared contract across the five core agents.
type Agent interface {
	Type() Type
	Status() Status
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context)
	// Healthy maps {Ready, Busy} to true, everything else to false.
	Healthy() bool
	// ProcessTask runs one task. It fails fast with *UnavailableError
	// when the agent is not Ready.
	ProcessTask(ctx context.Context, task string) (TaskResult, error)
}
