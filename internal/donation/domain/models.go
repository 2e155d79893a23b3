// Package domain contains persistence models for donations, their
// transactions and recurring subscriptions.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// BillingInterval is the recurring cadence of a subscription.
type BillingInterval string

const (
	IntervalMonth BillingInterval = "month"
	IntervalYear  BillingInterval = "year"
)

// ValidInterval reports whether the value names a supported cadence.
func ValidInterval(value string) bool {
	switch BillingInterval(value) {
	case IntervalMonth, IntervalYear:
		return true
	default:
		return false
	}
}

// TransactionStatus is the visibility state of a transaction.
// Provisional rows are hidden from normal queries until the provider
// confirms payment; Restore flips them to confirmed.
type TransactionStatus string

const (
	TransactionStatusProvisional TransactionStatus = "PROVISIONAL"
	TransactionStatusConfirmed   TransactionStatus = "CONFIRMED"
)

type TransactionType string

const (
	TransactionTypeDonation TransactionType = "DONATION"
	TransactionTypePayment  TransactionType = "PAYMENT"
)

// Donation records one accepted gift. It is created once per successful
// charge or accepted subscription intent and never mutated afterwards
// except for transaction linkage.
type Donation struct {
	ID             snowflake.ID  `gorm:"primaryKey" json:"id"`
	UserID         snowflake.ID  `gorm:"not null;index" json:"user_id"`
	CollectiveID   snowflake.ID  `gorm:"not null;index" json:"collective_id"`
	Currency       string        `gorm:"not null" json:"currency"`
	Amount         int64         `gorm:"not null" json:"amount"` // minor units
	Title          string        `gorm:"not null" json:"title"`
	SubscriptionID *snowflake.ID `gorm:"index" json:"subscription_id,omitempty"`
	CreatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Donation) TableName() string { return "donations" }

// Transaction is the money-movement record. Amounts are integer minor
// currency units.
type Transaction struct {
	ID              snowflake.ID      `gorm:"primaryKey" json:"id"`
	Type            TransactionType   `gorm:"type:text;not null" json:"type"`
	Status          TransactionStatus `gorm:"type:text;not null;default:'CONFIRMED';index" json:"status"`
	Amount          int64             `gorm:"not null" json:"amount"` // minor units
	Currency        string            `gorm:"not null" json:"currency"`
	PlatformFee     int64             `gorm:"not null;default:0" json:"platform_fee"`
	ProviderFee     int64             `gorm:"not null;default:0" json:"provider_fee"`
	Data            datatypes.JSONMap `gorm:"type:jsonb" json:"data,omitempty"`
	CollectiveID    snowflake.ID      `gorm:"not null;index" json:"collective_id"`
	DonationID      *snowflake.ID     `gorm:"index" json:"donation_id,omitempty"`
	SubscriptionID  *snowflake.ID     `gorm:"index" json:"subscription_id,omitempty"`
	PaymentMethodID *snowflake.ID     `gorm:"index" json:"payment_method_id,omitempty"`
	UserID          *snowflake.ID     `gorm:"index" json:"user_id,omitempty"`
	CreatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Transaction) TableName() string { return "transactions" }

// Subscription captures a recurring donation agreement with either
// provider.
type Subscription struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	CollectiveID snowflake.ID      `gorm:"not null;index" json:"collective_id"`
	Amount       int64             `gorm:"not null" json:"amount"` // minor units
	Currency     string            `gorm:"not null" json:"currency"`
	Interval     BillingInterval   `gorm:"type:text;not null" json:"interval"`
	Provider     string            `gorm:"not null" json:"provider"`
	ProviderID   string            `gorm:"" json:"provider_id"` // provider subscription/agreement id
	Data         datatypes.JSONMap `gorm:"type:jsonb" json:"data,omitempty"`
	IsActive     bool              `gorm:"not null;default:false" json:"is_active"`
	ActivatedAt  *time.Time        `gorm:"" json:"activated_at,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }
