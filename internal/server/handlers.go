package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/brainsait/dosd/internal/agents"
	"github.com/brainsait/dosd/internal/automation"
	"github.com/brainsait/dosd/internal/identity"
	"github.com/brainsait/dosd/internal/knowledge"
	"github.com/brainsait/dosd/internal/monetization"
	"github.com/brainsait/dosd/internal/orchestrator"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// StatusResponse is the response body for GET /api/v1/status.
type StatusResponse struct {
	Status  string                     `json:"status"`
	Overall string                     `json:"overall_health"`
	Pillars orchestratorHealthSnapshot `json:"pillars"`
	Counts  StatusCounts               `json:"counts"`
}

type orchestratorHealthSnapshot struct {
	Identity     string `json:"identity"`
	Knowledge    string `json:"knowledge"`
	Automation   string `json:"automation"`
	Agents       string `json:"agents"`
	Monetization string `json:"monetization"`
}

// StatusCounts contains count information for various resources.
type StatusCounts struct {
	Agents    int `json:"agents"`
	Documents int `json:"documents"`
	Workflows int `json:"workflows"`
}

func (s *Server) handleLiveness(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleReadiness(c echo.Context) error {
	status := s.platform.Status()
	switch status {
	case orchestrator.StatusRunning, orchestrator.StatusDegraded:
		return c.JSON(http.StatusOK, HealthResponse{Status: status.String()})
	default:
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: status.String()})
	}
}

func (s *Server) handleStatus(c echo.Context) error {
	snap := s.platform.Health()
	return c.JSON(http.StatusOK, StatusResponse{
		Status:  s.platform.Status().String(),
		Overall: snap.Overall().String(),
		Pillars: orchestratorHealthSnapshot{
			Identity:     snap.Identity.String(),
			Knowledge:    snap.Knowledge.String(),
			Automation:   snap.Automation.String(),
			Agents:       snap.Agents.String(),
			Monetization: snap.Monetization.String(),
		},
		Counts: StatusCounts{
			Agents:    len(s.platform.ActiveAgents()),
			Documents: len(s.platform.Documents()),
			Workflows: len(s.platform.Workflows()),
		},
	})
}

// RegisterRequest is the request body for POST /api/v1/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Server) handleRegister(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	role := identity.Role(req.Role)
	if req.Role == "" {
		role = identity.RoleUser
	}
	if !role.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid role")
	}

	user, err := s.platform.RegisterUser(req.Email, req.Name, req.Password, role)
	if err != nil {
		if errors.Is(err, identity.ErrUserExists) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, user)
}

// LoginRequest is the request body for POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the response body for a successful login.
type LoginResponse struct {
	User    identity.User    `json:"user"`
	Session identity.Session `json:"session"`
}

func (s *Server) handleLogin(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, session, err := s.platform.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		s.logger.Warn("login failed", zap.String("email", req.Email))
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	return c.JSON(http.StatusOK, LoginResponse{User: user, Session: session})
}

// SSOLoginRequest is the request body for POST /api/v1/auth/sso.
type SSOLoginRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (s *Server) handleSSOLogin(c echo.Context) error {
	var req SSOLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, session, err := s.platform.AuthenticateSSO(c.Request().Context(), req.Email, req.Name)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return c.JSON(http.StatusOK, LoginResponse{User: user, Session: session})
}

func (s *Server) handleLogout(c echo.Context) error {
	token, _ := c.Get(sessionTokenKey).(string)
	s.platform.Logout(token)
	return c.NoContent(http.StatusNoContent)
}

// AgentInfo describes one registered agent.
type AgentInfo struct {
	Type        agents.Type   `json:"type"`
	Description string        `json:"description"`
	Status      agents.Status `json:"status"`
}

func (s *Server) handleListAgents(c echo.Context) error {
	statuses := s.platform.AgentStatuses()
	infos := make([]AgentInfo, 0, len(statuses))
	for _, typ := range s.platform.ActiveAgents() {
		infos = append(infos, AgentInfo{
			Type:        typ,
			Description: typ.Description(),
			Status:      statuses[typ],
		})
	}
	return c.JSON(http.StatusOK, infos)
}

// OrchestrateRequest is the request body for POST /api/v1/agents/tasks.
type OrchestrateRequest struct {
	Task   string        `json:"task"`
	Agents []agents.Type `json:"agents"`
}

func (s *Server) handleOrchestrateTask(c echo.Context) error {
	var req OrchestrateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Task == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task field is required")
	}

	outcomes, err := s.platform.OrchestrateTask(c.Request().Context(), req.Task, req.Agents)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, outcomes)
}

func (s *Server) handleListDocuments(c echo.Context) error {
	return c.JSON(http.StatusOK, s.platform.Documents())
}

// AddDocumentRequest is the request body for POST /api/v1/knowledge/documents.
type AddDocumentRequest struct {
	Title   string            `json:"title"`
	Content string            `json:"content"`
	Domain  string            `json:"domain"`
	Tags    []string          `json:"tags,omitempty"`
	Author  string            `json:"author,omitempty"`
	Meta    map[string]string `json:"metadata,omitempty"`
}

func (s *Server) handleAddDocument(c echo.Context) error {
	var req AddDocumentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	doc, err := s.platform.AddDocument(c.Request().Context(), knowledge.Document{
		Title:    req.Title,
		Content:  req.Content,
		Domain:   req.Domain,
		Tags:     req.Tags,
		Author:   req.Author,
		Metadata: req.Meta,
	})
	if err != nil {
		if errors.Is(err, knowledge.ErrInvalidDocument) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, doc)
}

// UpdateDocumentRequest is the request body for PUT /api/v1/knowledge/documents/:id.
type UpdateDocumentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleUpdateDocument(c echo.Context) error {
	var req UpdateDocumentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	doc, err := s.platform.UpdateDocument(c.Request().Context(), c.Param("id"), req.Content)
	if err != nil {
		if errors.Is(err, knowledge.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(c echo.Context) error {
	if err := s.platform.DeleteDocument(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, knowledge.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// QueryRequest is the request body for POST /api/v1/knowledge/query.
type QueryRequest struct {
	Query  string `json:"query"`
	Domain string `json:"domain,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

func (s *Server) handleQueryKnowledge(c echo.Context) error {
	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query field is required")
	}

	results, err := s.platform.QueryKnowledge(c.Request().Context(), req.Query, req.Domain, req.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, results)
}

func (s *Server) handleListWorkflows(c echo.Context) error {
	return c.JSON(http.StatusOK, s.platform.Workflows())
}

// ExecuteWorkflowRequest is the request body for POST /api/v1/workflows/execute.
type ExecuteWorkflowRequest struct {
	Name   string            `json:"name"`
	Params automation.Params `json:"params"`
}

func (s *Server) handleExecuteWorkflow(c echo.Context) error {
	var req ExecuteWorkflowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name field is required")
	}

	result, err := s.platform.ExecuteWorkflow(c.Request().Context(), req.Name, req.Params)
	if err != nil {
		if errors.Is(err, automation.ErrWorkflowNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

// ScheduleWorkflowRequest is the request body for POST /api/v1/workflows/schedule.
type ScheduleWorkflowRequest struct {
	Name   string            `json:"name"`
	Spec   string            `json:"spec"`
	Params automation.Params `json:"params"`
}

func (s *Server) handleScheduleWorkflow(c echo.Context) error {
	var req ScheduleWorkflowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Spec == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and spec fields are required")
	}

	if err := s.platform.ScheduleWorkflow(c.Request().Context(), req.Name, req.Spec, req.Params); err != nil {
		if errors.Is(err, automation.ErrWorkflowNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusCreated)
}

func (s *Server) handleListSchedules(c echo.Context) error {
	return c.JSON(http.StatusOK, s.platform.Schedules())
}

// GatewayCallRequest is the request body for POST /api/v1/gateway/call.
type GatewayCallRequest struct {
	Service  automation.ExternalService `json:"service"`
	Endpoint string                     `json:"endpoint"`
	Params   map[string]string          `json:"params,omitempty"`
}

func (s *Server) handleGatewayCall(c echo.Context) error {
	var req GatewayCallRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Service == "" || req.Endpoint == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "service and endpoint fields are required")
	}

	body, err := s.platform.CallExternalAPI(c.Request().Context(), req.Service, req.Endpoint, req.Params)
	if err != nil {
		if errors.Is(err, automation.ErrGatewayUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, body)
}

// CaptureLeadRequest is the request body for POST /api/v1/leads.
type CaptureLeadRequest struct {
	Form   map[string]string `json:"form"`
	Source string            `json:"source,omitempty"`
}

func (s *Server) handleCaptureLead(c echo.Context) error {
	var req CaptureLeadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	source := monetization.LeadSource(req.Source)
	if req.Source == "" {
		source = monetization.SourceWebForm
	}

	lead, err := s.platform.CaptureLead(req.Form, source)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, lead)
}

func (s *Server) handleQualifyLead(c echo.Context) error {
	q, err := s.platform.QualifyLead(c.Param("id"))
	if err != nil {
		if errors.Is(err, monetization.ErrLeadNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, q)
}

// ConvertLeadRequest is the request body for POST /api/v1/leads/:id/convert.
type ConvertLeadRequest struct {
	Plan string `json:"plan"`
}

func (s *Server) handleConvertLead(c echo.Context) error {
	var req ConvertLeadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	customer, err := s.platform.ConvertLead(c.Param("id"), req.Plan)
	if err != nil {
		switch {
		case errors.Is(err, monetization.ErrLeadNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, monetization.ErrInvalidPlan):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, customer)
}

// PricingResponse is the response body for GET /api/v1/pricing.
type PricingResponse struct {
	ClaimLinc []monetization.PricingPlan `json:"claimlinc"`
	SME       []monetization.PricingPlan `json:"sme"`
}

func (s *Server) handlePricing(c echo.Context) error {
	return c.JSON(http.StatusOK, PricingResponse{
		ClaimLinc: monetization.ClaimLincPlans(),
		SME:       monetization.SMEPlans(),
	})
}

// RevenueResponse is the response body for GET /api/v1/analytics/revenue.
type RevenueResponse struct {
	MRR float64 `json:"mrr"`
	ARR float64 `json:"arr"`
}

func (s *Server) handleRevenue(c echo.Context) error {
	return c.JSON(http.StatusOK, RevenueResponse{
		MRR: s.platform.MonthlyRecurringRevenue(),
		ARR: s.platform.AnnualRecurringRevenue(),
	})
}
