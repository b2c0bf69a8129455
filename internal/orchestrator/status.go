// Package orchestrator coordinates the five platform pillars: ordered
// startup, reverse shutdown, periodic health aggregation, and the task
// dispatch facade consumed by the HTTP surface.
package orchestrator

import (
	"time"

	"github.com/brainsait/dosd/internal/health"
)

// SystemStatus is the orchestrator's lifecycle state. Owned exclusively
// by the Orchestrator; transitions happen only through Start, Stop, and
// health evaluation.
type SystemStatus int

const (
	StatusInitializing SystemStatus = iota
	StatusStarting
	StatusRunning
	StatusDegraded
	StatusStopping
	StatusStopped
	StatusError
)

// String implements fmt.Stringer.
func (s SystemStatus) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusStarting:
		return "starting"
	case StatusRunning:
		return "running"
	case StatusDegraded:
		return "degraded"
	case StatusStopping:
		return "stopping"
	case StatusStopped:
		return "stopped"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler for JSON payloads.
func (s SystemStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SystemHealth is one health snapshot: the latest sample per pillar and
// when it was taken. Mutated only by the monitor loop.
type SystemHealth struct {
	Identity     health.Status `json:"identity"`
	Knowledge    health.Status `json:"knowledge"`
	Automation   health.Status `json:"automation"`
	Agents       health.Status `json:"agents"`
	Monetization health.Status `json:"monetization"`
	LastCheck    time.Time     `json:"last_check"`
}

// Overall aggregates the five samples. Pure function of the fields and
// independent of which pillar reports which status: any Critical wins,
// then any Degraded, then all-Healthy, otherwise Unknown.
func (h SystemHealth) Overall() health.Status {
	samples := [5]health.Status{h.Identity, h.Knowledge, h.Automation, h.Agents, h.Monetization}

	healthy := 0
	degraded := false
	for _, s := range samples {
		switch s {
		case health.Critical:
			return health.Critical
		case health.Degraded:
			degraded = true
		case health.Healthy:
			healthy++
		}
	}
	if degraded {
		return health.Degraded
	}
	if healthy == len(samples) {
		return health.Healthy
	}
	return health.Unknown
}
