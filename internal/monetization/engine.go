package monetization

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brainsait/dosd/internal/config"
	"github.com/brainsait/dosd/internal/health"
)

// Engine is the monetization pillar. It owns the lead and customer
// maps; only the Engine mutates them.
type Engine struct {
	config config.MonetizationConfig
	client *http.Client
	logger *zap.Logger

	mu          sync.RWMutex
	leads       map[string]Lead
	customers   map[string]Customer
	funnelUp    bool
	initialized bool
}

// NewEngine creates an uninitialized Engine.
func NewEngine(cfg config.MonetizationConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		config:    cfg,
		client:    &http.Client{Timeout: 5 * time.Second},
		logger:    logger,
		leads:     make(map[string]Lead),
		customers: make(map[string]Customer),
	}
}

// Initialize probes the sales funnel endpoint. An unreachable funnel
// degrades the pillar but does not abort startup; lead capture still
// works from the other intake channels.
func (e *Engine) Initialize(ctx context.Context) error {
	funnelUp := e.probeFunnel(ctx)

	e.mu.Lock()
	e.leads = make(map[string]Lead)
	e.customers = make(map[string]Customer)
	e.funnelUp = funnelUp
	e.initialized = true
	e.mu.Unlock()

	e.logger.Info("monetization engine initialized",
		zap.String("primary_product", e.config.PrimaryProduct),
		zap.Bool("funnel_reachable", funnelUp),
	)
	return nil
}

// Shutdown clears the lead and customer maps.
func (e *Engine) Shutdown(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.leads = make(map[string]Lead)
	e.customers = make(map[string]Customer)
	e.initialized = false
	return nil
}

// HealthStatus reports funnel reachability from the last probe.
func (e *Engine) HealthStatus() health.Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.initialized {
		return health.Unknown
	}
	if !e.funnelUp {
		return health.Degraded
	}
	return health.Healthy
}

// CaptureLead creates a lead from intake form data.
func (e *Engine) CaptureLead(form map[string]string, source LeadSource) (Lead, error) {
	if err := e.ready(); err != nil {
		return Lead{}, err
	}
	if form["email"] == "" {
		return Lead{}, fmt.Errorf("lead email required")
	}

	interest := form["interest"]
	if interest == "" {
		interest = e.config.PrimaryProduct
	}

	lead := Lead{
		ID:        uuid.NewString(),
		Name:      form["name"],
		Email:     form["email"],
		Company:   form["company"],
		Phone:     form["phone"],
		Interest:  interest,
		Source:    source,
		Status:    LeadNew,
		CreatedAt: time.Now().UTC(),
	}

	e.mu.Lock()
	e.leads[lead.ID] = lead
	e.mu.Unlock()

	e.logger.Info("lead captured",
		zap.String("lead_id", lead.ID),
		zap.String("interest", lead.Interest),
		zap.String("source", string(lead.Source)),
	)
	return lead, nil
}

// QualifyLead scores the lead and recommends a plan. Qualification does
// not mutate the lead's funnel stage.
func (e *Engine) QualifyLead(leadID string) (Qualification, error) {
	if err := e.ready(); err != nil {
		return Qualification{}, err
	}

	e.mu.RLock()
	lead, ok := e.leads[leadID]
	e.mu.RUnlock()
	if !ok {
		return Qualification{}, fmt.Errorf("%w: %s", ErrLeadNotFound, leadID)
	}

	return Qualification{
		LeadID:          lead.ID,
		Score:           scoreLead(lead),
		QualifiedFor:    productFit(lead),
		RecommendedPlan: suggestPlan(lead),
	}, nil
}

// ConvertLead turns a lead into an active customer on the named plan.
func (e *Engine) ConvertLead(leadID, planName string) (Customer, error) {
	if err := e.ready(); err != nil {
		return Customer{}, err
	}

	plan, ok := planByName(planName)
	if !ok {
		return Customer{}, fmt.Errorf("%w: %s", ErrInvalidPlan, planName)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	lead, exists := e.leads[leadID]
	if !exists {
		return Customer{}, fmt.Errorf("%w: %s", ErrLeadNotFound, leadID)
	}

	customer := Customer{
		ID:            uuid.NewString(),
		Name:          lead.Name,
		Email:         lead.Email,
		Company:       lead.Company,
		Plan:          plan,
		Status:        CustomerActive,
		ConvertedFrom: lead.ID,
		CreatedAt:     time.Now().UTC(),
	}
	e.customers[customer.ID] = customer

	lead.Status = LeadConverted
	e.leads[lead.ID] = lead

	e.logger.Info("lead converted",
		zap.String("lead_id", lead.ID),
		zap.String("customer_id", customer.ID),
		zap.String("plan", plan.Name),
	)
	return customer, nil
}

// Lead returns the lead for id.
func (e *Engine) Lead(id string) (Lead, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	lead, ok := e.leads[id]
	if !ok {
		return Lead{}, fmt.Errorf("%w: %s", ErrLeadNotFound, id)
	}
	return lead, nil
}

// Leads returns a snapshot of all leads.
func (e *Engine) Leads() []Lead {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Lead, 0, len(e.leads))
	for _, lead := range e.leads {
		out = append(out, lead)
	}
	return out
}

// CustomQuote builds an offer from a volume estimate and feature list.
func (e *Engine) CustomQuote(volumeEstimate float64, features []string) Quote {
	return Quote{
		BasePrice:    volumeEstimate,
		Features:     features,
		EstimatedMRR: volumeEstimate * 1.2,
		ValidUntil:   time.Now().AddDate(0, 0, 30),
	}
}

// MonthlyRecurringRevenue sums active customers' plan prices.
func (e *Engine) MonthlyRecurringRevenue() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var mrr float64
	for _, c := range e.customers {
		if c.Status == CustomerActive {
			mrr += c.Plan.MonthlyPrice
		}
	}
	return mrr
}

// AnnualRecurringRevenue is MRR annualized.
func (e *Engine) AnnualRecurringRevenue() float64 {
	return e.MonthlyRecurringRevenue() * 12
}

func (e *Engine) probeFunnel(ctx context.Context) bool {
	if e.config.FunnelURL == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.config.FunnelURL, nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Warn("funnel unreachable", zap.String("url", e.config.FunnelURL), zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

func (e *Engine) ready() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.initialized {
		return ErrNotInitialized
	}
	return nil
}
