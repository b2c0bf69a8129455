package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brainsait/dosd/internal/agents"
	"github.com/brainsait/dosd/internal/automation"
	"github.com/brainsait/dosd/internal/config"
	"github.com/brainsait/dosd/internal/health"
	"github.com/brainsait/dosd/internal/identity"
	"github.com/brainsait/dosd/internal/knowledge"
	"github.com/brainsait/dosd/internal/monetization"
	"github.com/brainsait/dosd/internal/orchestrator"
)

const testToken = "tok-admin"

// fakePlatform backs the handlers with canned data. The admin token
// holds every permission; any other token is rejected.
type fakePlatform struct {
	status    orchestrator.SystemStatus
	snap      orchestrator.SystemHealth
	documents map[string]knowledge.Document
	leads     map[string]monetization.Lead
	schedules []automation.Schedule

	lastTask string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		status: orchestrator.StatusRunning,
		snap: orchestrator.SystemHealth{
			Identity:     health.Healthy,
			Knowledge:    health.Healthy,
			Automation:   health.Healthy,
			Agents:       health.Healthy,
			Monetization: health.Healthy,
			LastCheck:    time.Now().UTC(),
		},
		documents: make(map[string]knowledge.Document),
		leads:     make(map[string]monetization.Lead),
	}
}

func (f *fakePlatform) Status() orchestrator.SystemStatus { return f.status }
func (f *fakePlatform) Health() orchestrator.SystemHealth { return f.snap }

func (f *fakePlatform) RegisterUser(email, name, _ string, role identity.Role) (identity.User, error) {
	if email == "taken@brainsait.com" {
		return identity.User{}, identity.ErrUserExists
	}
	return identity.User{ID: "u-1", Email: email, Name: name, Role: role}, nil
}

func (f *fakePlatform) Authenticate(_ context.Context, email, password string) (identity.User, identity.Session, error) {
	if email != "admin@brainsait.com" || password != "s3cret" {
		return identity.User{}, identity.Session{}, identity.ErrInvalidCredentials
	}
	return identity.User{ID: "u-1", Email: email, Role: identity.RoleAdmin},
		identity.Session{Token: testToken, UserID: "u-1", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakePlatform) AuthenticateSSO(_ context.Context, email, name string) (identity.User, identity.Session, error) {
	return identity.User{ID: "u-2", Email: email, Name: name, Role: identity.RoleUser},
		identity.Session{Token: "tok-sso", UserID: "u-2", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakePlatform) ValidateSession(token string) (identity.User, error) {
	if token != testToken {
		return identity.User{}, identity.ErrSessionInvalid
	}
	return identity.User{ID: "u-1", Role: identity.RoleAdmin}, nil
}

func (f *fakePlatform) CheckPermission(token string, _ identity.Permission) bool {
	return token == testToken
}

func (f *fakePlatform) Logout(string) {}

func (f *fakePlatform) ActiveAgents() []agents.Type { return agents.CoreTypes }

func (f *fakePlatform) AgentStatuses() map[agents.Type]agents.Status {
	statuses := make(map[agents.Type]agents.Status, len(agents.CoreTypes))
	for _, typ := range agents.CoreTypes {
		statuses[typ] = agents.StatusReady
	}
	return statuses
}

func (f *fakePlatform) OrchestrateTask(_ context.Context, task string, requested []agents.Type) (map[agents.Type]agents.Outcome, error) {
	f.lastTask = task
	outcomes := make(map[agents.Type]agents.Outcome, len(requested))
	for _, typ := range requested {
		outcomes[typ] = agents.Outcome{Result: agents.TaskResult{Agent: typ, Task: task}}
	}
	return outcomes, nil
}

func (f *fakePlatform) Documents() []knowledge.Document {
	docs := make([]knowledge.Document, 0, len(f.documents))
	for _, doc := range f.documents {
		docs = append(docs, doc)
	}
	return docs
}

func (f *fakePlatform) AddDocument(_ context.Context, doc knowledge.Document) (knowledge.Document, error) {
	if doc.Title == "" || doc.Content == "" {
		return knowledge.Document{}, knowledge.ErrInvalidDocument
	}
	doc.ID = "doc-1"
	f.documents[doc.ID] = doc
	return doc, nil
}

func (f *fakePlatform) QueryKnowledge(_ context.Context, text, _ string, _ int) ([]knowledge.Result, error) {
	results := make([]knowledge.Result, 0, len(f.documents))
	for _, doc := range f.documents {
		results = append(results, knowledge.Result{Document: doc, Score: 0.9, Snippet: text})
	}
	return results, nil
}

func (f *fakePlatform) UpdateDocument(_ context.Context, id, content string) (knowledge.Document, error) {
	doc, ok := f.documents[id]
	if !ok {
		return knowledge.Document{}, knowledge.ErrNotFound
	}
	doc.Content = content
	f.documents[id] = doc
	return doc, nil
}

func (f *fakePlatform) DeleteDocument(_ context.Context, id string) error {
	if _, ok := f.documents[id]; !ok {
		return knowledge.ErrNotFound
	}
	delete(f.documents, id)
	return nil
}

func (f *fakePlatform) Workflows() []automation.Workflow {
	return []automation.Workflow{{ID: "wf-1", Name: "Claim Processing", Active: true}}
}

func (f *fakePlatform) ExecuteWorkflow(_ context.Context, name string, _ automation.Params) (automation.Result, error) {
	if name != "Claim Processing" {
		return automation.Result{}, automation.ErrWorkflowNotFound
	}
	return automation.Result{WorkflowID: "wf-1", ExecutionID: "exec-1", Status: automation.StatusCompleted}, nil
}

func (f *fakePlatform) ScheduleWorkflow(_ context.Context, name, spec string, params automation.Params) error {
	if name != "Claim Processing" {
		return automation.ErrWorkflowNotFound
	}
	f.schedules = append(f.schedules, automation.Schedule{Workflow: name, Spec: spec, Params: params})
	return nil
}

func (f *fakePlatform) Schedules() []automation.Schedule { return f.schedules }

func (f *fakePlatform) CallExternalAPI(_ context.Context, service automation.ExternalService, _ string, _ map[string]string) (map[string]any, error) {
	if service == "unknown" {
		return nil, automation.ErrGatewayUnavailable
	}
	return map[string]any{"ok": true}, nil
}

func (f *fakePlatform) CaptureLead(form map[string]string, source monetization.LeadSource) (monetization.Lead, error) {
	if form["email"] == "" {
		return monetization.Lead{}, errors.New("lead email required")
	}
	lead := monetization.Lead{ID: "lead-1", Email: form["email"], Source: source, Status: monetization.LeadNew}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakePlatform) QualifyLead(id string) (monetization.Qualification, error) {
	if _, ok := f.leads[id]; !ok {
		return monetization.Qualification{}, monetization.ErrLeadNotFound
	}
	return monetization.Qualification{LeadID: id, Score: 65}, nil
}

func (f *fakePlatform) ConvertLead(id, plan string) (monetization.Customer, error) {
	if _, ok := f.leads[id]; !ok {
		return monetization.Customer{}, monetization.ErrLeadNotFound
	}
	if plan != "ClaimLinc Starter" {
		return monetization.Customer{}, monetization.ErrInvalidPlan
	}
	return monetization.Customer{ID: "cust-1", Status: monetization.CustomerActive, ConvertedFrom: id}, nil
}

func (f *fakePlatform) MonthlyRecurringRevenue() float64 { return 299 }
func (f *fakePlatform) AnnualRecurringRevenue() float64  { return 299 * 12 }

// setupTestServer creates a test server against a fresh fake platform.
func setupTestServer(t *testing.T) (*Server, *fakePlatform) {
	t.Helper()

	platform := newFakePlatform()
	server, err := NewServer(platform, nil, zap.NewNop(), config.ServerConfig{Host: "localhost", Port: 9090})
	require.NoError(t, err)
	return server, platform
}

func doJSON(t *testing.T, server *Server, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)
	return rec
}

func TestNewServer(t *testing.T) {
	t.Run("creates server with valid config", func(t *testing.T) {
		server, _ := setupTestServer(t)
		assert.NotNil(t, server.echo)
	})

	t.Run("fills host and port defaults", func(t *testing.T) {
		server, err := NewServer(newFakePlatform(), nil, zap.NewNop(), config.ServerConfig{})
		require.NoError(t, err)
		assert.Equal(t, "localhost", server.config.Host)
		assert.Equal(t, 9090, server.config.Port)
	})

	t.Run("returns error when logger is nil", func(t *testing.T) {
		_, err := NewServer(newFakePlatform(), nil, nil, config.ServerConfig{})
		assert.Error(t, err)
	})

	t.Run("returns error when platform is nil", func(t *testing.T) {
		_, err := NewServer(nil, nil, zap.NewNop(), config.ServerConfig{})
		assert.Error(t, err)
	})
}

func TestHandleLiveness(t *testing.T) {
	server, _ := setupTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleReadiness(t *testing.T) {
	server, platform := setupTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/readyz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	platform.status = orchestrator.StatusStopped
	rec = doJSON(t, server, http.MethodGet, "/readyz", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleStatus(t *testing.T) {
	server, _ := setupTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/v1/status", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "running", resp.Status)
	assert.Equal(t, "healthy", resp.Overall)
	assert.Equal(t, 5, resp.Counts.Agents)
	assert.Equal(t, 1, resp.Counts.Workflows)
}

func TestHandleAuth(t *testing.T) {
	server, _ := setupTestServer(t)

	t.Run("login succeeds with valid credentials", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/auth/login",
			LoginRequest{Email: "admin@brainsait.com", Password: "s3cret"}, "")
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, testToken, resp.Session.Token)
		assert.Equal(t, identity.RoleAdmin, resp.User.Role)
	})

	t.Run("login rejects bad credentials", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/auth/login",
			LoginRequest{Email: "admin@brainsait.com", Password: "wrong"}, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("register creates user", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/auth/register",
			RegisterRequest{Email: "new@brainsait.com", Name: "New", Password: "pw"}, "")
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("register conflicts on duplicate email", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/auth/register",
			RegisterRequest{Email: "taken@brainsait.com", Password: "pw"}, "")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("register rejects unknown role", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/auth/register",
			RegisterRequest{Email: "x@y.z", Password: "pw", Role: "superuser"}, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("sso opens a session", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/auth/sso",
			SSOLoginRequest{Email: "sso@brainsait.com", Name: "SSO User"}, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("logout requires session", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/auth/logout", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = doJSON(t, server, http.MethodPost, "/api/v1/auth/logout", nil, testToken)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestAuthMiddleware(t *testing.T) {
	server, _ := setupTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodGet, "/api/v1/agents", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodGet, "/api/v1/agents", nil, "bogus")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHandleAgents(t *testing.T) {
	server, platform := setupTestServer(t)

	t.Run("lists the five core agents", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodGet, "/api/v1/agents", nil, testToken)
		assert.Equal(t, http.StatusOK, rec.Code)

		var infos []AgentInfo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &infos))
		require.Len(t, infos, 5)
		assert.Equal(t, agents.MasterLinc, infos[0].Type)
		assert.Equal(t, agents.StatusReady, infos[0].Status)
	})

	t.Run("orchestrates a task", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/agents/tasks",
			OrchestrateRequest{Task: "process claims batch", Agents: []agents.Type{agents.ClaimLinc}}, testToken)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "process claims batch", platform.lastTask)

		var outcomes map[agents.Type]agents.Outcome
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcomes))
		assert.Contains(t, outcomes, agents.ClaimLinc)
	})

	t.Run("rejects empty task", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/agents/tasks",
			OrchestrateRequest{}, testToken)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleKnowledge(t *testing.T) {
	server, _ := setupTestServer(t)

	t.Run("add, query, update, delete", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/knowledge/documents",
			AddDocumentRequest{Title: "PDPL Guide", Content: "data protection", Domain: "Healthcare"}, testToken)
		require.Equal(t, http.StatusCreated, rec.Code)

		var doc knowledge.Document
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
		assert.NotEmpty(t, doc.ID)

		rec = doJSON(t, server, http.MethodPost, "/api/v1/knowledge/query",
			QueryRequest{Query: "pdpl"}, testToken)
		require.Equal(t, http.StatusOK, rec.Code)

		var results []knowledge.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
		assert.Len(t, results, 1)

		rec = doJSON(t, server, http.MethodPut, "/api/v1/knowledge/documents/"+doc.ID,
			UpdateDocumentRequest{Content: "revised"}, testToken)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, server, http.MethodDelete, "/api/v1/knowledge/documents/"+doc.ID, nil, testToken)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("invalid document", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/knowledge/documents",
			AddDocumentRequest{}, testToken)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty query", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/knowledge/query",
			QueryRequest{}, testToken)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown document id", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPut, "/api/v1/knowledge/documents/missing",
			UpdateDocumentRequest{Content: "x"}, testToken)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = doJSON(t, server, http.MethodDelete, "/api/v1/knowledge/documents/missing", nil, testToken)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleWorkflows(t *testing.T) {
	server, _ := setupTestServer(t)

	t.Run("lists catalog", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodGet, "/api/v1/workflows", nil, testToken)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("executes a workflow", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/workflows/execute",
			ExecuteWorkflowRequest{Name: "Claim Processing", Params: automation.Params{Subject: "claim-42"}}, testToken)
		require.Equal(t, http.StatusOK, rec.Code)

		var result automation.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, automation.StatusCompleted, result.Status)
	})

	t.Run("unknown workflow", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/workflows/execute",
			ExecuteWorkflowRequest{Name: "Nope"}, testToken)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("schedules a workflow", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/workflows/schedule",
			ScheduleWorkflowRequest{Name: "Claim Processing", Spec: "0 9 * * *"}, testToken)
		assert.Equal(t, http.StatusCreated, rec.Code)

		rec = doJSON(t, server, http.MethodGet, "/api/v1/workflows/schedules", nil, testToken)
		assert.Equal(t, http.StatusOK, rec.Code)

		var schedules []automation.Schedule
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schedules))
		assert.Len(t, schedules, 1)
	})
}

func TestHandleGatewayCall(t *testing.T) {
	server, _ := setupTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/v1/gateway/call",
		GatewayCallRequest{Service: automation.ServiceStripe, Endpoint: "customers"}, testToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodPost, "/api/v1/gateway/call",
		GatewayCallRequest{Service: "unknown", Endpoint: "x"}, testToken)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doJSON(t, server, http.MethodPost, "/api/v1/gateway/call",
		GatewayCallRequest{}, testToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleLeads(t *testing.T) {
	server, _ := setupTestServer(t)

	t.Run("capture is open to the public funnel", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/leads",
			CaptureLeadRequest{Form: map[string]string{"email": "sara@clinic.sa"}}, "")
		require.Equal(t, http.StatusCreated, rec.Code)

		var lead monetization.Lead
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))
		assert.Equal(t, monetization.SourceWebForm, lead.Source)
	})

	t.Run("qualify and convert require a session", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/leads/lead-1/qualify", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = doJSON(t, server, http.MethodPost, "/api/v1/leads/lead-1/qualify", nil, testToken)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, server, http.MethodPost, "/api/v1/leads/lead-1/convert",
			ConvertLeadRequest{Plan: "ClaimLinc Starter"}, testToken)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown lead", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/leads/missing/qualify", nil, testToken)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid plan", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/api/v1/leads/lead-1/convert",
			ConvertLeadRequest{Plan: "Gold Plated"}, testToken)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlePricingAndRevenue(t *testing.T) {
	server, _ := setupTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/api/v1/pricing", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var pricing PricingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pricing))
	assert.Len(t, pricing.ClaimLinc, 3)
	assert.Len(t, pricing.SME, 3)

	rec = doJSON(t, server, http.MethodGet, "/api/v1/analytics/revenue", nil, testToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	var revenue RevenueResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &revenue))
	assert.Equal(t, 299.0, revenue.MRR)
	assert.Equal(t, 299.0*12, revenue.ARR)
}

func TestServerLifecycle(t *testing.T) {
	server, err := NewServer(newFakePlatform(), nil, zap.NewNop(), config.ServerConfig{Host: "localhost", Port: 0})
	require.NoError(t, err)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))

	select {
	case err := <-errChan:
		assert.True(t, err == nil || err == http.ErrServerClosed)
	case <-time.After(6 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}

func TestMiddleware(t *testing.T) {
	t.Run("adds request id to response", func(t *testing.T) {
		server, _ := setupTestServer(t)

		rec := doJSON(t, server, http.MethodGet, "/health", nil, "")
		assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	})

	t.Run("recovers from panic", func(t *testing.T) {
		server, _ := setupTestServer(t)
		server.echo.GET("/panic", func(echo.Context) error {
			panic("boom")
		})

		rec := doJSON(t, server, http.MethodGet, "/panic", nil, "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
