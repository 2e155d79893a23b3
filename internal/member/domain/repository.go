package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Find(ctx context.Context, db *gorm.DB, userID, collectiveID snowflake.ID, role Role) (*Member, error)
	Insert(ctx context.Context, db *gorm.DB, member *Member) error
}
