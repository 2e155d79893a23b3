package domain

import "errors"

var (
	ErrMissingStripeToken    = errors.New("missing_stripe_token")
	ErrInvalidAmount         = errors.New("invalid_amount")
	ErrInvalidInterval       = errors.New("invalid_interval")
	ErrMissingExecutionToken = errors.New("missing_execution_token")
	ErrMissingPayerEmail     = errors.New("missing_payer_email")
)
