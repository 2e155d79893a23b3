package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/carlosascari/opencollective-api/internal/clock"
	"github.com/carlosascari/opencollective-api/internal/donation/domain"
	"github.com/carlosascari/opencollective-api/pkg/db/option"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxDonationPageSize = 50

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

func New(p ServiceParam) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("donation.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) RecordDonation(ctx context.Context, donation *domain.Donation) error {
	if donation.ID == 0 {
		donation.ID = s.genID.Generate()
	}
	return s.repo.InsertDonation(ctx, s.db, donation)
}

func (s *Service) ListRecentDonations(ctx context.Context, collectiveID snowflake.ID, limit int) ([]*domain.Donation, error) {
	if limit <= 0 || limit > maxDonationPageSize {
		limit = maxDonationPageSize
	}
	return s.repo.FindDonationsByCollective(ctx, s.db, collectiveID,
		option.WithOrder("created_at DESC"),
		option.WithLimit(limit),
	)
}

func (s *Service) RecordTransaction(ctx context.Context, transaction *domain.Transaction) error {
	if transaction.ID == 0 {
		transaction.ID = s.genID.Generate()
	}
	if transaction.Status == "" {
		transaction.Status = domain.TransactionStatusConfirmed
	}
	return s.repo.InsertTransaction(ctx, s.db, transaction)
}

func (s *Service) RecordSubscription(ctx context.Context, subscription *domain.Subscription) error {
	if subscription.ID == 0 {
		subscription.ID = s.genID.Generate()
	}
	return s.repo.InsertSubscription(ctx, s.db, subscription)
}

func (s *Service) CreateProvisionalPair(ctx context.Context, req domain.ProvisionalPairRequest) (*domain.Transaction, *domain.Subscription, error) {
	subscription := &domain.Subscription{
		ID:           s.genID.Generate(),
		CollectiveID: req.CollectiveID,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Interval:     req.Interval,
		Provider:     req.Provider,
		IsActive:     false,
	}
	subscriptionID := subscription.ID

	transaction := &domain.Transaction{
		ID:             s.genID.Generate(),
		Type:           domain.TransactionTypeDonation,
		Status:         domain.TransactionStatusProvisional,
		Amount:         req.Amount,
		Currency:       req.Currency,
		CollectiveID:   req.CollectiveID,
		SubscriptionID: &subscriptionID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertSubscription(ctx, tx, subscription); err != nil {
			return err
		}
		return s.repo.InsertTransaction(ctx, tx, transaction)
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("created provisional transaction",
		zap.Int64("transaction_id", int64(transaction.ID)),
		zap.Int64("subscription_id", int64(subscription.ID)),
	)
	return transaction, subscription, nil
}

func (s *Service) GetProvisionalTransaction(ctx context.Context, id snowflake.ID) (*domain.Transaction, error) {
	transaction, err := s.repo.FindProvisionalTransactionByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, domain.ErrTransactionNotFound
	}
	return transaction, nil
}

func (s *Service) GetTransaction(ctx context.Context, id snowflake.ID) (*domain.Transaction, error) {
	transaction, err := s.repo.FindTransactionByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, domain.ErrTransactionNotFound
	}
	return transaction, nil
}

func (s *Service) GetSubscription(ctx context.Context, id snowflake.ID) (*domain.Subscription, error) {
	subscription, err := s.repo.FindSubscriptionByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		return nil, domain.ErrSubscriptionNotFound
	}
	return subscription, nil
}

func (s *Service) AttachAgreement(ctx context.Context, subscriptionID snowflake.ID, providerID string, data datatypes.JSONMap) error {
	return s.repo.UpdateSubscriptionData(ctx, s.db, subscriptionID, providerID, data)
}

func (s *Service) ActivateSubscription(ctx context.Context, subscriptionID snowflake.ID, providerID string, data datatypes.JSONMap) error {
	return s.repo.ActivateSubscription(ctx, s.db, subscriptionID, providerID, data, s.clock.Now())
}

func (s *Service) RestoreTransaction(ctx context.Context, transactionID, userID snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.RestoreTransaction(ctx, tx, transactionID, userID)
	})
}
