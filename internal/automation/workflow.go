// Package automation implements the automation pillar: a static
// workflow catalog executed through an external workflow engine, plus a
// rate-limited gateway for outbound API calls.
package automation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrWorkflowNotFound is returned when a workflow name is absent
	// from the catalog.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrGatewayUnavailable is returned by CallExternalAPI when the
	// gateway was never initialized.
	ErrGatewayUnavailable = errors.New("api gateway unavailable")

	// ErrNotInitialized is returned when an operation runs before
	// Initialize or after Shutdown.
	ErrNotInitialized = errors.New("automation spine not initialized")
)

// Trigger is a workflow trigger kind.
type Trigger string

const (
	TriggerManual     Trigger = "manual"
	TriggerScheduled  Trigger = "scheduled"
	TriggerWebhook    Trigger = "webhook"
	TriggerFileUpload Trigger = "file_upload"
	TriggerAPI        Trigger = "api"
)

// Workflow is a catalog entry. Created once at Initialize and immutable
// thereafter; re-registration replaces the whole entry.
type Workflow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Triggers    []Trigger `json:"triggers"`
	Steps       []string  `json:"steps"`
	Active      bool      `json:"active"`
}

// Params is the typed parameter contract for workflow execution.
type Params struct {
	// Requester identifies who or what started the execution.
	Requester string `json:"requester,omitempty"`

	// Subject is the primary entity the workflow operates on, e.g. a
	// claim id or client email.
	Subject string `json:"subject,omitempty"`

	// Inputs carries workflow-specific key-value inputs.
	Inputs map[string]string `json:"inputs,omitempty"`
}

// Status is the terminal state of a workflow execution.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Result describes one finished workflow execution. An execution
// failure is recorded in Status, not surfaced as an error.
type Result struct {
	WorkflowID  string            `json:"workflow_id"`
	ExecutionID string            `json:"execution_id"`
	Status      Status            `json:"status"`
	Output      map[string]string `json:"output,omitempty"`
	Error       string            `json:"error,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
}

// coreWorkflows returns the static catalog loaded at Initialize.
func coreWorkflows() []Workflow {
	return []Workflow{
		{
			ID:          uuid.NewString(),
			Name:        "Client Onboarding",
			Description: "Automated client onboarding process",
			Triggers:    []Trigger{TriggerManual, TriggerWebhook},
			Steps:       []string{"Collect Info", "Create Account", "Send Welcome", "Schedule Follow-up"},
			Active:      true,
		},
		{
			ID:          uuid.NewString(),
			Name:        "Claim Processing",
			Description: "Healthcare claim automation via ClaimLinc",
			Triggers:    []Trigger{TriggerManual, TriggerAPI},
			Steps:       []string{"Validate Claim", "Check Eligibility", "Submit to NPHIES", "Track Status"},
			Active:      true,
		},
		{
			ID:          uuid.NewString(),
			Name:        "Lead Generation",
			Description: "Automated lead generation and qualification",
			Triggers:    []Trigger{TriggerScheduled, TriggerManual},
			Steps:       []string{"Identify Leads", "Enrich Data", "Qualify", "Assign to Sales"},
			Active:      true,
		},
		{
			ID:          uuid.NewString(),
			Name:        "Document Processing",
			Description: "Process and index documents via DocsLinc",
			Triggers:    []Trigger{TriggerFileUpload, TriggerAPI},
			Steps:       []string{"Extract Text", "Create Embeddings", "Index", "Notify"},
			Active:      true,
		},
	}
}
