package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/carlosascari/opencollective-api/internal/collective/domain"
	pkgrepository "github.com/carlosascari/opencollective-api/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Collective, error) {
	return pkgrepository.ProvideStore[domain.Collective](db).
		FindOne(ctx, &domain.Collective{Slug: slug})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Collective, error) {
	return pkgrepository.ProvideStore[domain.Collective](db).
		FindOne(ctx, &domain.Collective{ID: id})
}

func (r *repo) FindStripeAccount(ctx context.Context, db *gorm.DB, collectiveID snowflake.ID) (*domain.StripeAccount, error) {
	return pkgrepository.ProvideStore[domain.StripeAccount](db).
		FindOne(ctx, &domain.StripeAccount{CollectiveID: collectiveID})
}

func (r *repo) FindConnectedAccount(ctx context.Context, db *gorm.DB, collectiveID snowflake.ID, provider string) (*domain.ConnectedAccount, error) {
	return pkgrepository.ProvideStore[domain.ConnectedAccount](db).
		FindOne(ctx, &domain.ConnectedAccount{CollectiveID: collectiveID, Provider: provider})
}
