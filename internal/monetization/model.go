// Package monetization implements the monetization pillar: the sales
// funnel, lead lifecycle, pricing catalog, and recurring-revenue views.
package monetization

import (
	"errors"
	"time"
)

var (
	// ErrLeadNotFound is returned when a lead id is absent.
	ErrLeadNotFound = errors.New("lead not found")

	// ErrInvalidPlan is returned for a plan outside the catalog.
	ErrInvalidPlan = errors.New("invalid pricing plan")

	// ErrNotInitialized is returned when an operation runs before
	// Initialize or after Shutdown.
	ErrNotInitialized = errors.New("monetization engine not initialized")
)

// LeadSource records where a lead entered the funnel.
type LeadSource string

const (
	SourceWebForm  LeadSource = "web_form"
	SourceReferral LeadSource = "referral"
	SourceVoice    LeadSource = "voicelinc"
	SourceMapping  LeadSource = "maplinc"
	SourceEvent    LeadSource = "event"
)

// LeadStatus is the funnel stage of a lead.
type LeadStatus string

const (
	LeadNew         LeadStatus = "new"
	LeadContacted   LeadStatus = "contacted"
	LeadQualified   LeadStatus = "qualified"
	LeadProposal    LeadStatus = "proposal"
	LeadNegotiation LeadStatus = "negotiation"
	LeadConverted   LeadStatus = "converted"
	LeadLost        LeadStatus = "lost"
)

// Lead is a prospective customer captured from an intake channel.
type Lead struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Company   string     `json:"company,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Interest  string     `json:"interest"`
	Source    LeadSource `json:"source"`
	Status    LeadStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// Qualification scores a lead and recommends a plan.
type Qualification struct {
	LeadID          string      `json:"lead_id"`
	Score           int         `json:"score"`
	QualifiedFor    []string    `json:"qualified_for"`
	RecommendedPlan PricingPlan `json:"recommended_plan"`
}

// CustomerStatus is the subscription state of a converted customer.
type CustomerStatus string

const (
	CustomerActive  CustomerStatus = "active"
	CustomerPaused  CustomerStatus = "paused"
	CustomerChurned CustomerStatus = "churned"
)

// Customer is a converted lead with an active plan.
type Customer struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Company       string         `json:"company,omitempty"`
	Plan          PricingPlan    `json:"plan"`
	Status        CustomerStatus `json:"status"`
	ConvertedFrom string         `json:"converted_from"`
	CreatedAt     time.Time      `json:"created_at"`
}

// PricingPlan is one entry of the static pricing catalog.
type PricingPlan struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	MonthlyPrice float64        `json:"monthly_price"`
	Features     []string       `json:"features"`
	// Limits maps a resource name to its monthly allowance; -1 means
	// unlimited.
	Limits map[string]int `json:"limits"`
}

// Quote is a custom offer generated from stated requirements.
type Quote struct {
	BasePrice    float64   `json:"base_price"`
	Features     []string  `json:"features"`
	EstimatedMRR float64   `json:"estimated_mrr"`
	ValidUntil   time.Time `json:"valid_until"`
}
