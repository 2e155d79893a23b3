package domain

import "errors"

var (
	ErrCollectiveNotFound = errors.New("collective_not_found")

	// ErrMissingStripeAccount means the collective has no usable card
	// provider account configured.
	ErrMissingStripeAccount = errors.New("missing_stripe_account")

	// ErrLiveKeyOutsideProduction means a live-mode provider key was
	// presented in a non-production environment.
	ErrLiveKeyOutsideProduction = errors.New("live_key_outside_production")

	ErrMissingConnectedAccount = errors.New("missing_connected_account")
)
