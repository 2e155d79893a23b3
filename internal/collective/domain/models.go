// Package domain contains persistence models for collectives and their
// provider accounts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Collective is the beneficiary organization receiving donations.
type Collective struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Slug      string       `gorm:"uniqueIndex;not null" json:"slug"`
	Name      string       `gorm:"not null" json:"name"`
	Currency  string       `gorm:"not null;default:'USD'" json:"currency"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Collective) TableName() string { return "collectives" }

// StripeAccount carries the card provider credentials of one collective.
type StripeAccount struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	CollectiveID snowflake.ID `gorm:"not null;uniqueIndex" json:"collective_id"`
	AccessToken  string       `gorm:"not null" json:"-"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (StripeAccount) TableName() string { return "stripe_accounts" }

// ConnectedAccount carries per-collective wallet provider credentials.
// Credentials are stored per collective, never globally, so one tenant's
// key can never authorize another tenant's agreement.
type ConnectedAccount struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	CollectiveID snowflake.ID `gorm:"not null;index:idx_connected_accounts_provider,unique" json:"collective_id"`
	Provider     string       `gorm:"not null;index:idx_connected_accounts_provider,unique" json:"provider"`
	ClientID     string       `gorm:"not null" json:"-"`
	Secret       string       `gorm:"not null" json:"-"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ConnectedAccount) TableName() string { return "connected_accounts" }
