// Package stripe is the card provider gateway. It exposes the minimal
// capability set the payment workflows need: customers, plans, charges
// and subscriptions, authenticated with the collective's own access
// token on every call.
package stripe

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/datatypes"
)

const ProviderName = "stripe"

type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Plan struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Interval string `json:"interval"`
}

type Subscription struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	// Raw keeps the provider payload verbatim for the local record.
	Raw datatypes.JSONMap `json:"-"`
}

type Charge struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	// ApplicationFeeAmount is zero when the provider reports no fee.
	ApplicationFeeAmount int64             `json:"application_fee_amount"`
	Raw                  datatypes.JSONMap `json:"-"`
}

type CustomerRequest struct {
	Token       string
	Email       string
	Description string
}

type PlanRequest struct {
	ID       string
	Amount   int64
	Currency string
	Interval string
}

type SubscriptionRequest struct {
	PlanID                string
	ApplicationFeePercent int64
	Metadata              map[string]string
}

type ChargeRequest struct {
	Amount      int64
	Currency    string
	CustomerID  string
	Description string
	Metadata    map[string]string
}

// Gateway is the card provider capability set consumed by the payment
// workflows. RetrievePlan returns (nil, nil) when the plan does not
// exist; any other error is fatal.
type Gateway interface {
	CreateCustomer(ctx context.Context, accessToken string, req CustomerRequest) (*Customer, error)
	RetrievePlan(ctx context.Context, accessToken, planID string) (*Plan, error)
	CreatePlan(ctx context.Context, accessToken string, req PlanRequest) (*Plan, error)
	CreateSubscription(ctx context.Context, accessToken, customerID string, req SubscriptionRequest) (*Subscription, error)
	CreateCharge(ctx context.Context, accessToken string, req ChargeRequest) (*Charge, error)
}

// PlanID derives the canonical plan identity for a price point. Two
// requests for the same (interval, amount, currency) always map to the
// same provider-side plan.
func PlanID(interval string, amount int64, currency string) string {
	return fmt.Sprintf("%s-%d-%s", strings.ToLower(interval), amount, strings.ToLower(currency))
}
