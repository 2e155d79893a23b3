package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/carlosascari/opencollective-api/internal/donation/domain"
	"github.com/carlosascari/opencollective-api/pkg/db/option"
	pkgrepository "github.com/carlosascari/opencollective-api/pkg/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertDonation(ctx context.Context, db *gorm.DB, donation *domain.Donation) error {
	return db.WithContext(ctx).Create(donation).Error
}

func (r *repo) InsertTransaction(ctx context.Context, db *gorm.DB, transaction *domain.Transaction) error {
	return db.WithContext(ctx).Create(transaction).Error
}

func (r *repo) InsertSubscription(ctx context.Context, db *gorm.DB, subscription *domain.Subscription) error {
	return db.WithContext(ctx).Create(subscription).Error
}

func (r *repo) FindTransactionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Transaction, error) {
	var transaction domain.Transaction
	err := db.WithContext(ctx).
		Where("id = ? AND status = ?", id, domain.TransactionStatusConfirmed).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transaction, nil
}

func (r *repo) FindProvisionalTransactionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Transaction, error) {
	var transaction domain.Transaction
	err := db.WithContext(ctx).
		Where("id = ? AND status = ?", id, domain.TransactionStatusProvisional).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &transaction, nil
}

func (r *repo) FindSubscriptionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Subscription, error) {
	var subscription domain.Subscription
	err := db.WithContext(ctx).Where("id = ?", id).First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscription, nil
}

func (r *repo) FindDonationsByCollective(ctx context.Context, db *gorm.DB, collectiveID snowflake.ID, opts ...option.QueryOption) ([]*domain.Donation, error) {
	return pkgrepository.ProvideStore[domain.Donation](db).
		Find(ctx, &domain.Donation{CollectiveID: collectiveID}, opts...)
}

func (r *repo) UpdateSubscriptionData(ctx context.Context, db *gorm.DB, id snowflake.ID, providerID string, data datatypes.JSONMap) error {
	return db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"provider_id": providerID,
			"data":        data,
			"updated_at":  time.Now().UTC(),
		}).Error
}

func (r *repo) ActivateSubscription(ctx context.Context, db *gorm.DB, id snowflake.ID, providerID string, data datatypes.JSONMap, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Subscription{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"provider_id":  providerID,
			"data":         data,
			"is_active":    true,
			"activated_at": at,
			"updated_at":   at,
		}).Error
}

func (r *repo) RestoreTransaction(ctx context.Context, db *gorm.DB, id, userID snowflake.ID) error {
	result := db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("id = ? AND status = ?", id, domain.TransactionStatusProvisional).
		Updates(map[string]any{
			"status":     domain.TransactionStatusConfirmed,
			"user_id":    userID,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}
