package domain

import "context"

// Service runs the payment workflows. Validation failures are returned
// before any provider call; workflow failures arrive wrapped in a
// WorkflowError carrying the original request.
type Service interface {
	// CreateStripeDonation charges a card once or opens a card-provider
	// subscription, then records the donation locally, notifies the
	// donor and grants BACKER membership.
	CreateStripeDonation(ctx context.Context, req StripeDonationRequest) (*StripeDonationResult, error)

	// CreatePayPalSubscription creates the provisional local records and
	// the provider plan+agreement, returning the approval links the
	// payer must visit. Nothing becomes externally visible yet.
	CreatePayPalSubscription(ctx context.Context, req PayPalInitiateRequest) (*PayPalInitiateResult, error)

	// ExecutePayPalSubscription finishes the wallet flow after the payer
	// approved the agreement: executes it, activates the subscription,
	// resolves the payer's user record, grants membership and reveals
	// the provisional transaction.
	ExecutePayPalSubscription(ctx context.Context, req PayPalExecuteRequest) (*PayPalExecuteResult, error)
}
