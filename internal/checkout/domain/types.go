// Package domain defines the payment workflow contracts: one synchronous
// card flow and a two-phase wallet flow with a payer-facing redirect.
package domain

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/carlosascari/opencollective-api/internal/providers/paypal"
)

// StripeDonationRequest is a card donation. Amount arrives in major
// currency units and is converted to integer minor units during
// validation; an empty Interval means a one-time charge.
type StripeDonationRequest struct {
	CollectiveSlug string  `json:"-"`
	StripeToken    string  `json:"stripeToken"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	Interval       string  `json:"interval"`
	Email          string  `json:"email"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
}

// PayerInfo identifies the donor in a workflow result.
type PayerInfo struct {
	ID    snowflake.ID `json:"id"`
	Email string       `json:"email"`
}

type StripeDonationResult struct {
	Success        bool      `json:"success"`
	Payer          PayerInfo `json:"user"`
	AccountCreated bool      `json:"accountCreated"`
}

// PayPalInitiateRequest starts a wallet subscription. The payer identity
// is unknown until the provider callback.
type PayPalInitiateRequest struct {
	CollectiveSlug string  `json:"-"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	Interval       string  `json:"interval"`
}

type PayPalInitiateResult struct {
	Success       bool          `json:"success"`
	TransactionID snowflake.ID  `json:"transactionId"`
	Links         []paypal.Link `json:"links"`
}

// PayPalExecuteRequest carries the provider redirect parameters: the
// provisional transaction reference and the one-time execution token.
type PayPalExecuteRequest struct {
	TransactionID string `form:"transactionId"`
	Token         string `form:"token"`
}

type PayPalExecuteResult struct {
	UserID         snowflake.ID `json:"userId"`
	HasFullAccount bool         `json:"hasFullAccount"`
}

// WorkflowError wraps a workflow failure with the original request
// payload for diagnostics.
type WorkflowError struct {
	Workflow string
	Request  any
	Err      error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s workflow failed: %v", e.Workflow, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}
