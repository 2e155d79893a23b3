// Package paypal is the wallet provider gateway. The provider models
// recurring billing as a plan that must be created then activated, an
// agreement created against the activated plan, and a payer-approved
// execution identified by a one-time token.
package paypal

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

const ProviderName = "paypal"

// Credentials are the collective's connected-account keys. Every call
// authenticates with them; there is no global wallet credential.
type Credentials struct {
	ClientID string
	Secret   string
}

type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type Plan struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

type PayerInfo struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Payer struct {
	PaymentMethod string    `json:"payment_method"`
	PayerInfo     PayerInfo `json:"payer_info"`
}

type Agreement struct {
	ID    string `json:"id"`
	State string `json:"state"`
	Payer Payer  `json:"payer"`
	Links []Link `json:"links"`
	// Raw keeps the provider payload verbatim for the local record.
	Raw datatypes.JSONMap `json:"-"`
}

type PlanRequest struct {
	Name        string
	Description string
	Amount      int64 // minor units
	Currency    string
	Interval    string // month|year
	ReturnURL   string
	CancelURL   string
}

type AgreementRequest struct {
	Name        string
	Description string
	PlanID      string
	StartDate   time.Time
}

// Gateway is the wallet provider capability set consumed by the payment
// workflows.
type Gateway interface {
	CreateBillingPlan(ctx context.Context, creds Credentials, req PlanRequest) (*Plan, error)
	ActivateBillingPlan(ctx context.Context, creds Credentials, planID string) error
	CreateBillingAgreement(ctx context.Context, creds Credentials, req AgreementRequest) (*Agreement, error)
	ExecuteBillingAgreement(ctx context.Context, creds Credentials, token string) (*Agreement, error)
}

// ApprovalLink returns the link the payer must visit to authorize the
// agreement, or an empty string when the provider sent none.
func ApprovalLink(links []Link) string {
	for _, link := range links {
		if link.Rel == "approval_url" {
			return link.Href
		}
	}
	return ""
}
