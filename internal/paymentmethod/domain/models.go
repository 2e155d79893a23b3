package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PaymentMethod stores one provider token and the provider customer it
// was attached to. Uniqueness of (token, provider) is the idempotency
// anchor for the card provider: the same token presented twice reuses
// the same provider customer.
type PaymentMethod struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	Provider string       `gorm:"not null;index:idx_payment_methods_token,unique" json:"provider"`
	Token    string       `gorm:"not null;index:idx_payment_methods_token,unique" json:"token"`
	// CustomerID references the provider-side customer holding the
	// token.
	CustomerID string `gorm:"not null" json:"customer_id"`
	// UserID is nullable: a card may be attached during checkout before
	// any user record exists.
	UserID    *snowflake.ID `gorm:"index" json:"user_id,omitempty"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (PaymentMethod) TableName() string { return "payment_methods" }
