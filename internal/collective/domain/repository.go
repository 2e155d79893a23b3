package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Collective, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Collective, error)
	FindStripeAccount(ctx context.Context, db *gorm.DB, collectiveID snowflake.ID) (*StripeAccount, error)
	FindConnectedAccount(ctx context.Context, db *gorm.DB, collectiveID snowflake.ID, provider string) (*ConnectedAccount, error)
}
