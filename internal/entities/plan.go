package entities

import "time"

// SubscriptionPlan is a premium membership tier.
type SubscriptionPlan struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	BillingPeriod string   `json:"billingPeriod"`
	Description   string   `json:"description"`
	Features      []string `json:"features"`
	IsPopular     bool     `json:"isPopular,omitempty"`
}

// PlanPurchase is the outcome of subscribing to a plan.
type PlanPurchase struct {
	Plan             SubscriptionPlan `json:"plan"`
	Method           PaymentMethod    `json:"method"`
	Quote            Quote            `json:"quote"`
	Hash             string           `json:"hash,omitempty"`
	PremiumExpiresAt *time.Time       `json:"premiumExpiresAt,omitempty"`
}
