package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/carlosascari/opencollective-api/internal/user/domain"
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
		log:   p.Log.Named("user.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) FindOrCreateByEmail(ctx context.Context, email, name string) (*domain.User, bool, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, false, domain.ErrInvalidEmail
	}

	user, created, err := resolver.FindOrCreate(ctx,
		func(ctx context.Context) (*domain.User, error) {
			return s.repo.FindByEmail(ctx, s.db, email)
		},
		func(ctx context.Context) (*domain.User, error) {
			user := &domain.User{
				ID:    s.genID.Generate(),
				Email: email,
				Name:  strings.TrimSpace(name),
				// signup has not happened; the donor only gave an email
				HasFullAccount: false,
			}
			if err := s.repo.Insert(ctx, s.db, user); err != nil {
				return nil, err
			}
			return user, nil
		},
		dbpkg.IsDuplicateKeyErr,
	)
	if err != nil {
		return nil, false, err
	}

	if created {
		s.log.Info("created partial user account", zap.String("email", email))
	}
	return user, created, nil
}
