package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ProvisionalPairRequest describes the hidden transaction+subscription
// pair created before any wallet provider round trip.
type ProvisionalPairRequest struct {
	CollectiveID snowflake.ID
	Amount       int64 // minor units
	Currency     string
	Interval     BillingInterval
	Provider     string
}

// Service persists donation records and drives the provisional
// transaction lifecycle.
type Service interface {
	RecordDonation(ctx context.Context, donation *Donation) error

	// ListRecentDonations returns a collective's newest donations,
	// capped at limit.
	ListRecentDonations(ctx context.Context, collectiveID snowflake.ID, limit int) ([]*Donation, error)
	RecordTransaction(ctx context.Context, transaction *Transaction) error
	RecordSubscription(ctx context.Context, subscription *Subscription) error

	// CreateProvisionalPair atomically persists an inactive subscription
	// and a provisional (hidden) transaction referencing it.
	CreateProvisionalPair(ctx context.Context, req ProvisionalPairRequest) (*Transaction, *Subscription, error)

	// GetProvisionalTransaction fails with ErrTransactionNotFound when
	// the id does not name a provisional row.
	GetProvisionalTransaction(ctx context.Context, id snowflake.ID) (*Transaction, error)
	GetTransaction(ctx context.Context, id snowflake.ID) (*Transaction, error)
	GetSubscription(ctx context.Context, id snowflake.ID) (*Subscription, error)

	// AttachAgreement stores the raw provider agreement payload on the
	// subscription without activating it.
	AttachAgreement(ctx context.Context, subscriptionID snowflake.ID, providerID string, data datatypes.JSONMap) error

	// ActivateSubscription merges the executed agreement payload, marks
	// the subscription active and stamps the activation time.
	ActivateSubscription(ctx context.Context, subscriptionID snowflake.ID, providerID string, data datatypes.JSONMap) error

	// RestoreTransaction reveals a provisional transaction and binds it
	// to the resolved payer.
	RestoreTransaction(ctx context.Context, transactionID, userID snowflake.ID) error
}
