// Package health defines the health status vocabulary shared by the
// five pillars and the orchestrator's aggregation loop.
package health

// Status is a point-in-time health sample. Produced by each pillar on
// demand and never persisted beyond the latest snapshot.
type Status int

const (
	// Unknown means no sample has been taken or the state is ambiguous.
	Unknown Status = iota
	// Healthy means the pillar and its external dependencies respond.
	Healthy
	// Degraded means the pillar works with reduced capability.
	Degraded
	// Critical means the pillar cannot serve requests.
	Critical
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Degraded:
		return "degraded"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler for JSON status payloads.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
