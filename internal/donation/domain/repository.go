package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/carlosascari/opencollective-api/pkg/db/option"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository interface {
	InsertDonation(ctx context.Context, db *gorm.DB, donation *Donation) error
	InsertTransaction(ctx context.Context, db *gorm.DB, transaction *Transaction) error
	InsertSubscription(ctx context.Context, db *gorm.DB, subscription *Subscription) error

	// FindTransactionByID only sees confirmed rows; provisional rows are
	// invisible to the default scope.
	FindTransactionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Transaction, error)
	FindProvisionalTransactionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Transaction, error)
	FindSubscriptionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Subscription, error)
	FindDonationsByCollective(ctx context.Context, db *gorm.DB, collectiveID snowflake.ID, opts ...option.QueryOption) ([]*Donation, error)

	UpdateSubscriptionData(ctx context.Context, db *gorm.DB, id snowflake.ID, providerID string, data datatypes.JSONMap) error
	ActivateSubscription(ctx context.Context, db *gorm.DB, id snowflake.ID, providerID string, data datatypes.JSONMap, at time.Time) error

	// RestoreTransaction flips a provisional row to confirmed and binds
	// it to its payer in one statement.
	RestoreTransaction(ctx context.Context, db *gorm.DB, id, userID snowflake.ID) error
}
