package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User is identified by email. Donor accounts created mid-checkout carry
// HasFullAccount=false until the donor finishes signup.
type User struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	Email          string       `gorm:"uniqueIndex;not null" json:"email"`
	Name           string       `gorm:"" json:"name,omitempty"`
	HasFullAccount bool         `gorm:"not null;default:false" json:"has_full_account"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string { return "users" }
