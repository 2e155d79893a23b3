package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByToken(ctx context.Context, db *gorm.DB, token, provider string) (*PaymentMethod, error)
	Insert(ctx context.Context, db *gorm.DB, method *PaymentMethod) error
}
