package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role names a user's relationship with a collective.
type Role string

const (
	RoleBacker Role = "BACKER"
	RoleMember Role = "MEMBER"
	RoleHost   Role = "HOST"
)

// Member links a user to a collective under one role. At most one row
// exists per (user, collective, role) triple.
type Member struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID       snowflake.ID `gorm:"not null;index:idx_members_triple,unique" json:"user_id"`
	CollectiveID snowflake.ID `gorm:"not null;index:idx_members_triple,unique" json:"collective_id"`
	Role         Role         `gorm:"type:text;not null;index:idx_members_triple,unique" json:"role"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Member) TableName() string { return "members" }
