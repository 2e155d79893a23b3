package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/carlosascari/opencollective-api/internal/paymentmethod/domain"
	dbpkg "github.com/carlosascari/opencollective-api/pkg/db"
	"github.com/carlosascari/opencollective-api/pkg/resolver"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

func New(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("paymentmethod.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) FindByToken(ctx context.Context, token, provider string) (*domain.PaymentMethod, error) {
	return s.repo.FindByToken(ctx, s.db, token, provider)
}

func (s *Service) Attach(ctx context.Context, method *domain.PaymentMethod) (*domain.PaymentMethod, error) {
	if method.ID == 0 {
		method.ID = s.genID.Generate()
	}

	attached, _, err := resolver.FindOrCreate(ctx,
		func(ctx context.Context) (*domain.PaymentMethod, error) {
			return s.repo.FindByToken(ctx, s.db, method.Token, method.Provider)
		},
		func(ctx context.Context) (*domain.PaymentMethod, error) {
			if err := s.repo.Insert(ctx, s.db, method); err != nil {
				return nil, err
			}
			return method, nil
		},
		dbpkg.IsDuplicateKeyErr,
	)
	return attached, err
}
