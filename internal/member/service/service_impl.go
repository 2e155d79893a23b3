package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/carlosascari/opencollective-api/internal/member/domain"
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
		log:   p.Log.Named("member.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Grant(ctx context.Context, userID, collectiveID snowflake.ID, role domain.Role) (*domain.Member, error) {
	member, created, err := resolver.FindOrCreate(ctx,
		func(ctx context.Context) (*domain.Member, error) {
			return s.repo.Find(ctx, s.db, userID, collectiveID, role)
		},
		func(ctx context.Context) (*domain.Member, error) {
			member := &domain.Member{
				ID:           s.genID.Generate(),
				UserID:       userID,
				CollectiveID: collectiveID,
				Role:         role,
			}
			if err := s.repo.Insert(ctx, s.db, member); err != nil {
				return nil, err
			}
			return member, nil
		},
		dbpkg.IsDuplicateKeyErr,
	)
	if err != nil {
		return nil, err
	}

	if created {
		s.log.Info("granted membership",
			zap.Int64("user_id", int64(userID)),
			zap.Int64("collective_id", int64(collectiveID)),
			zap.String("role", string(role)),
		)
	}
	return member, nil
}
