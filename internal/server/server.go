// Package server provides the HTTP API for dosd.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/brainsait/dosd/internal/agents"
	"github.com/brainsait/dosd/internal/automation"
	"github.com/brainsait/dosd/internal/config"
	"github.com/brainsait/dosd/internal/identity"
	"github.com/brainsait/dosd/internal/knowledge"
	"github.com/brainsait/dosd/internal/monetization"
	"github.com/brainsait/dosd/internal/orchestrator"
)

// Platform is the orchestrator surface the HTTP layer consumes.
type Platform interface {
	Status() orchestrator.SystemStatus
	Health() orchestrator.SystemHealth

	RegisterUser(email, name, password string, role identity.Role) (identity.User, error)
	Authenticate(ctx context.Context, email, password string) (identity.User, identity.Session, error)
	AuthenticateSSO(ctx context.Context, email, name string) (identity.User, identity.Session, error)
	ValidateSession(token string) (identity.User, error)
	CheckPermission(token string, permission identity.Permission) bool
	Logout(token string)

	ActiveAgents() []agents.Type
	AgentStatuses() map[agents.Type]agents.Status
	OrchestrateTask(ctx context.Context, task string, requested []agents.Type) (map[agents.Type]agents.Outcome, error)

	Documents() []knowledge.Document
	AddDocument(ctx context.Context, doc knowledge.Document) (knowledge.Document, error)
	QueryKnowledge(ctx context.Context, text, domain string, limit int) ([]knowledge.Result, error)
	UpdateDocument(ctx context.Context, id, content string) (knowledge.Document, error)
	DeleteDocument(ctx context.Context, id string) error

	Workflows() []automation.Workflow
	ExecuteWorkflow(ctx context.Context, name string, params automation.Params) (automation.Result, error)
	ScheduleWorkflow(ctx context.Context, name, spec string, params automation.Params) error
	Schedules() []automation.Schedule
	CallExternalAPI(ctx context.Context, service automation.ExternalService, endpoint string, params map[string]string) (map[string]any, error)

	CaptureLead(form map[string]string, source monetization.LeadSource) (monetization.Lead, error)
	QualifyLead(leadID string) (monetization.Qualification, error)
	ConvertLead(leadID, plan string) (monetization.Customer, error)
	MonthlyRecurringRevenue() float64
	AnnualRecurringRevenue() float64
}

// Server exposes the platform over HTTP.
type Server struct {
	echo     *echo.Echo
	platform Platform
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	config   config.ServerConfig
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(platform Platform, gatherer prometheus.Gatherer, logger *zap.Logger, cfg config.ServerConfig) (*Server, error) {
	if platform == nil {
		return nil, fmt.Errorf("platform cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 9090
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:     e,
		platform: platform,
		gatherer: gatherer,
		logger:   logger,
		config:   cfg,
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleLiveness)
	s.echo.GET("/readyz", s.handleReadiness)
	if s.gatherer != nil {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	v1 := s.echo.Group("/api/v1")

	v1.GET("/status", s.handleStatus)

	v1.POST("/auth/register", s.handleRegister)
	v1.POST("/auth/login", s.handleLogin)
	v1.POST("/auth/sso", s.handleSSOLogin)
	v1.POST("/auth/logout", s.handleLogout, s.requireSession)

	// Lead capture stays open: it serves the public web funnel.
	v1.POST("/leads", s.handleCaptureLead)
	v1.GET("/pricing", s.handlePricing)

	auth := v1.Group("", s.requireSession)

	auth.GET("/agents", s.handleListAgents)
	auth.POST("/agents/tasks", s.handleOrchestrateTask, s.requirePermission(identity.PermExecuteWorkflow))

	auth.GET("/knowledge/documents", s.handleListDocuments, s.requirePermission(identity.PermReadKnowledge))
	auth.POST("/knowledge/documents", s.handleAddDocument, s.requirePermission(identity.PermWriteKnowledge))
	auth.PUT("/knowledge/documents/:id", s.handleUpdateDocument, s.requirePermission(identity.PermWriteKnowledge))
	auth.DELETE("/knowledge/documents/:id", s.handleDeleteDocument, s.requirePermission(identity.PermWriteKnowledge))
	auth.POST("/knowledge/query", s.handleQueryKnowledge, s.requirePermission(identity.PermReadKnowledge))

	auth.GET("/workflows", s.handleListWorkflows)
	auth.POST("/workflows/execute", s.handleExecuteWorkflow, s.requirePermission(identity.PermExecuteWorkflow))
	auth.POST("/workflows/schedule", s.handleScheduleWorkflow, s.requirePermission(identity.PermExecuteWorkflow))
	auth.GET("/workflows/schedules", s.handleListSchedules)
	auth.POST("/gateway/call", s.handleGatewayCall, s.requirePermission(identity.PermExecuteWorkflow))

	auth.POST("/leads/:id/qualify", s.handleQualifyLead, s.requirePermission(identity.PermAccessPayments))
	auth.POST("/leads/:id/convert", s.handleConvertLead, s.requirePermission(identity.PermAccessPayments))
	auth.GET("/analytics/revenue", s.handleRevenue, s.requirePermission(identity.PermViewAnalytics))
}

const sessionTokenKey = "session_token"

// requireSession rejects requests without a valid Bearer session token.
func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}
		if _, err := s.platform.ValidateSession(token); err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
		}
		c.Set(sessionTokenKey, token)
		return next(c)
	}
}

// requirePermission enforces a single permission on top of requireSession.
func (s *Server) requirePermission(permission identity.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, _ := c.Get(sessionTokenKey).(string)
			if !s.platform.CheckPermission(token, permission) {
				return echo.NewHTTPError(http.StatusForbidden, fmt.Sprintf("permission %s required", permission))
			}
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
