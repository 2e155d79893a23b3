package domain

import "context"

// Service resolves local user records by payer email.
type Service interface {
	// FindOrCreateByEmail resolves the user owning the email, creating a
	// partial account on first contact. The boolean reports whether this
	// call created the record.
	FindOrCreateByEmail(ctx context.Context, email, name string) (*User, bool, error)
}
