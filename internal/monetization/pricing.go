package monetization

import "strings"

// ClaimLincPlans returns the ClaimLinc pricing catalog, cheapest first.
func ClaimLincPlans() []PricingPlan {
	return []PricingPlan{
		{
			Name:         "ClaimLinc Starter",
			Description:  "Perfect for small clinics",
			MonthlyPrice: 299,
			Features:     []string{"Up to 100 claims/month", "NPHIES integration", "Email support"},
			Limits:       map[string]int{"claims": 100},
		},
		{
			Name:         "ClaimLinc Professional",
			Description:  "For growing healthcare facilities",
			MonthlyPrice: 799,
			Features:     []string{"Up to 500 claims/month", "NPHIES integration", "Priority support", "Analytics"},
			Limits:       map[string]int{"claims": 500},
		},
		{
			Name:         "ClaimLinc Enterprise",
			Description:  "For hospitals and large facilities",
			MonthlyPrice: 2499,
			Features:     []string{"Unlimited claims", "NPHIES integration", "24/7 support", "Advanced analytics", "Custom workflows"},
			Limits:       map[string]int{"claims": -1},
		},
	}
}

// SMEPlans returns the SME digital enablement catalog, cheapest first.
func SMEPlans() []PricingPlan {
	return []PricingPlan{
		{
			Name:         "SME Basic",
			Description:  "Essential digital tools",
			MonthlyPrice: 199,
			Features:     []string{"3 automated workflows", "Basic AI agents", "Email support"},
			Limits:       map[string]int{"workflows": 3},
		},
		{
			Name:         "SME Growth",
			Description:  "Scale your operations",
			MonthlyPrice: 499,
			Features:     []string{"10 automated workflows", "All AI agents", "Priority support", "Analytics"},
			Limits:       map[string]int{"workflows": 10},
		},
		{
			Name:         "SME Scale",
			Description:  "Full digital transformation",
			MonthlyPrice: 999,
			Features:     []string{"Unlimited workflows", "All AI agents", "24/7 support", "Custom integrations"},
			Limits:       map[string]int{"workflows": -1},
		},
	}
}

// planByName resolves a plan across both catalogs.
func planByName(name string) (PricingPlan, bool) {
	for _, plan := range append(ClaimLincPlans(), SMEPlans()...) {
		if plan.Name == name {
			return plan, true
		}
	}
	return PricingPlan{}, false
}

// scoreLead rates a lead 0-100 on profile completeness and product fit.
func scoreLead(lead Lead) int {
	score := 0
	if lead.Company != "" {
		score += 20
	}
	if lead.Phone != "" {
		score += 15
	}
	if lead.Interest == "ClaimLinc" {
		score += 30
	}
	if strings.Contains(strings.ToLower(lead.Company), "health") {
		score += 35
	}
	if score > 100 {
		score = 100
	}
	return score
}

// productFit lists the products a lead qualifies for.
func productFit(lead Lead) []string {
	var products []string
	if strings.Contains(lead.Interest, "Claim") || strings.Contains(lead.Interest, "Healthcare") {
		products = append(products, "ClaimLinc")
	}
	if lead.Company != "" {
		products = append(products, "Digital Enablement")
	}
	return products
}

// suggestPlan picks the entry plan for the lead's best product fit.
func suggestPlan(lead Lead) PricingPlan {
	for _, product := range productFit(lead) {
		if product == "ClaimLinc" {
			return ClaimLincPlans()[0]
		}
	}
	return SMEPlans()[0]
}
