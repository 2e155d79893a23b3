package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/carlosascari/opencollective-api/internal/collective/domain"
	"github.com/carlosascari/opencollective-api/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	cfg  config.Config
	repo domain.Repository
}

type ServiceParam struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Cfg  config.Config
	Repo domain.Repository
}

func New(p ServiceParam) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("collective.service"),
		cfg:  p.Cfg,
		repo: p.Repo,
	}
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Collective, error) {
	slug = strings.TrimSpace(strings.ToLower(slug))
	if slug == "" {
		return nil, domain.ErrCollectiveNotFound
	}

	collective, err := s.repo.FindBySlug(ctx, s.db, slug)
	if err != nil {
		return nil, err
	}
	if collective == nil {
		return nil, domain.ErrCollectiveNotFound
	}
	return collective, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Collective, error) {
	collective, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if collective == nil {
		return nil, domain.ErrCollectiveNotFound
	}
	return collective, nil
}

func (s *Service) GetStripeAccount(ctx context.Context, collectiveID snowflake.ID) (*domain.StripeAccount, error) {
	account, err := s.repo.FindStripeAccount(ctx, s.db, collectiveID)
	if err != nil {
		return nil, err
	}
	if account == nil || strings.TrimSpace(account.AccessToken) == "" {
		return nil, domain.ErrMissingStripeAccount
	}

	// a live-mode key must never charge cards from a test deployment
	if strings.Contains(account.AccessToken, "live") && !s.cfg.IsProduction() {
		s.log.Warn("rejecting live stripe key outside production",
			zap.Int64("collective_id", int64(collectiveID)),
		)
		return nil, domain.ErrLiveKeyOutsideProduction
	}

	return account, nil
}

func (s *Service) GetConnectedAccount(ctx context.Context, collectiveID snowflake.ID, provider string) (*domain.ConnectedAccount, error) {
	account, err := s.repo.FindConnectedAccount(ctx, s.db, collectiveID, provider)
	if err != nil {
		return nil, err
	}
	if account == nil || account.ClientID == "" || account.Secret == "" {
		return nil, domain.ErrMissingConnectedAccount
	}
	return account, nil
}
