package orchestrator

import (
	"context"

	"github.com/brainsait/dosd/internal/agents"
	"github.com/brainsait/dosd/internal/automation"
	"github.com/brainsait/dosd/internal/identity"
	"github.com/brainsait/dosd/internal/knowledge"
	"github.com/brainsait/dosd/internal/monetization"
)

// The facade methods expose the pillar operations the presentation
// layer consumes, so callers hold one handle instead of five.

// ActiveAgents returns the registered agent types.
func (o *Orchestrator) ActiveAgents() []agents.Type {
	return o.deps.Agents.ActiveAgents()
}

// AgentStatuses returns each agent's current status.
func (o *Orchestrator) AgentStatuses() map[agents.Type]agents.Status {
	return o.deps.Agents.Statuses()
}

// OrchestrateTask dispatches a task across the requested agents.
func (o *Orchestrator) OrchestrateTask(ctx context.Context, task string, requested []agents.Type) (map[agents.Type]agents.Outcome, error) {
	return o.deps.Agents.OrchestrateTask(ctx, task, requested)
}

// RegisterUser creates a new user account.
func (o *Orchestrator) RegisterUser(email, name, password string, role identity.Role) (identity.User, error) {
	return o.deps.Identity.RegisterUser(email, name, password, role)
}

// Logout closes the session behind the token.
func (o *Orchestrator) Logout(token string) {
	o.deps.Identity.Logout(token)
}

// Authenticate verifies credentials and opens a session.
func (o *Orchestrator) Authenticate(ctx context.Context, email, password string) (identity.User, identity.Session, error) {
	return o.deps.Identity.Authenticate(ctx, email, password)
}

// AuthenticateSSO opens a session for an SSO-asserted identity.
func (o *Orchestrator) AuthenticateSSO(ctx context.Context, email, name string) (identity.User, identity.Session, error) {
	return o.deps.Identity.AuthenticateSSO(ctx, email, name)
}

// CheckPermission reports whether the session holds the permission.
func (o *Orchestrator) CheckPermission(token string, permission identity.Permission) bool {
	return o.deps.Identity.CheckPermission(token, permission)
}

// ValidateSession resolves a session token to its user.
func (o *Orchestrator) ValidateSession(token string) (identity.User, error) {
	return o.deps.Identity.ValidateSession(token)
}

// AddDocument stores a document in the knowledge pillar.
func (o *Orchestrator) AddDocument(ctx context.Context, doc knowledge.Document) (knowledge.Document, error) {
	return o.deps.Knowledge.AddDocument(ctx, doc)
}

// QueryKnowledge runs a semantic retrieval query.
func (o *Orchestrator) QueryKnowledge(ctx context.Context, text, domain string, limit int) ([]knowledge.Result, error) {
	return o.deps.Knowledge.Query(ctx, text, domain, limit)
}

// UpdateDocument replaces a document's content and re-indexes it.
func (o *Orchestrator) UpdateDocument(ctx context.Context, id, content string) (knowledge.Document, error) {
	return o.deps.Knowledge.UpdateDocument(ctx, id, content)
}

// DeleteDocument removes a document.
func (o *Orchestrator) DeleteDocument(ctx context.Context, id string) error {
	return o.deps.Knowledge.DeleteDocument(ctx, id)
}

// Documents lists stored documents.
func (o *Orchestrator) Documents() []knowledge.Document {
	return o.deps.Knowledge.Documents()
}

// Workflows lists the workflow catalog.
func (o *Orchestrator) Workflows() []automation.Workflow {
	return o.deps.Automation.Workflows()
}

// ExecuteWorkflow runs a catalog workflow and awaits its result.
func (o *Orchestrator) ExecuteWorkflow(ctx context.Context, name string, params automation.Params) (automation.Result, error) {
	return o.deps.Automation.ExecuteWorkflow(ctx, name, params)
}

// ScheduleWorkflow registers a recurring run of a catalog workflow.
func (o *Orchestrator) ScheduleWorkflow(ctx context.Context, name, spec string, params automation.Params) error {
	return o.deps.Automation.ScheduleWorkflow(ctx, name, spec, params)
}

// Schedules lists the registered recurring workflows.
func (o *Orchestrator) Schedules() []automation.Schedule {
	return o.deps.Automation.Schedules()
}

// CallExternalAPI passes through to the automation gateway.
func (o *Orchestrator) CallExternalAPI(ctx context.Context, service automation.ExternalService, endpoint string, params map[string]string) (map[string]any, error) {
	return o.deps.Automation.CallExternalAPI(ctx, service, endpoint, params)
}

// CaptureLead records a new sales lead.
func (o *Orchestrator) CaptureLead(form map[string]string, source monetization.LeadSource) (monetization.Lead, error) {
	return o.deps.Monetization.CaptureLead(form, source)
}

// QualifyLead scores a lead and recommends a plan.
func (o *Orchestrator) QualifyLead(leadID string) (monetization.Qualification, error) {
	return o.deps.Monetization.QualifyLead(leadID)
}

// ConvertLead converts a lead into a customer on the named plan.
func (o *Orchestrator) ConvertLead(leadID, plan string) (monetization.Customer, error) {
	return o.deps.Monetization.ConvertLead(leadID, plan)
}

// MonthlyRecurringRevenue sums active customer MRR.
func (o *Orchestrator) MonthlyRecurringRevenue() float64 {
	return o.deps.Monetization.MonthlyRecurringRevenue()
}

// AnnualRecurringRevenue is MRR annualized.
func (o *Orchestrator) AnnualRecurringRevenue() float64 {
	return o.deps.Monetization.AnnualRecurringRevenue()
}
