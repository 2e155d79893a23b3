package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	Insert(ctx context.Context, db *gorm.DB, user *User) error
}
