package domain

import "context"

// Service resolves payment method rows by provider token.
type Service interface {
	// FindByToken returns the stored method for (token, provider), or
	// nil when the token has never been seen.
	FindByToken(ctx context.Context, token, provider string) (*PaymentMethod, error)

	// Attach persists a new method, reconciling a concurrent insert of
	// the same (token, provider) by returning the winner's row.
	Attach(ctx context.Context, method *PaymentMethod) (*PaymentMethod, error)
}
