package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Service resolves collectives and their provider credentials.
type Service interface {
	GetBySlug(ctx context.Context, slug string) (*Collective, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Collective, error)

	// GetStripeAccount returns the collective's card provider account.
	// It fails with ErrMissingStripeAccount when none is configured and
	// with ErrLiveKeyOutsideProduction when a live key is presented
	// outside the production environment.
	GetStripeAccount(ctx context.Context, collectiveID snowflake.ID) (*StripeAccount, error)

	// GetConnectedAccount returns the collective's wallet provider
	// credentials.
	GetConnectedAccount(ctx context.Context, collectiveID snowflake.ID, provider string) (*ConnectedAccount, error)
}
