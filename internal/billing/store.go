package billing

import (
	"context"
	"fmt"
	"time"

	"streaming-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionStore owns all writes to the subscriptions table. The handle
// is injected at construction; nothing in the engine touches a global pool.
type SubscriptionStore struct {
	db *gorm.DB
}

// NewSubscriptionStore creates a subscription store over a GORM handle.
func NewSubscriptionStore(db *gorm.DB) *SubscriptionStore {
	return &SubscriptionStore{db: db}
}

// Upsert inserts the subscription or, when a row with the same external
// subscription id exists, overwrites it to the given values. Redelivered
// events therefore converge on the latest payload instead of being skipped.
func (s *SubscriptionStore) Upsert(ctx context.Context, sub *models.Subscription) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_subscription_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id",
			"plan_id",
			"status",
			"current_period_start",
			"current_period_end",
			"cancel_at_period_end",
			"updated_at",
		}),
	}).Create(sub).Error
	if err != nil {
		return fmt.Errorf("upsert subscription %s: %w", sub.ExternalSubscriptionID, err)
	}
	return nil
}

// GetByExternalID fetches the row targeted by a lifecycle event.
func (s *SubscriptionStore) GetByExternalID(ctx context.Context, externalID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).
		Where("external_subscription_id = ?", externalID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ApplyUpdate overwrites the mutable lifecycle fields of the row with the
// matching external subscription id. Returns the number of rows touched so
// the caller can distinguish a missing row.
func (s *SubscriptionStore) ApplyUpdate(ctx context.Context, externalID, status string, periodStart, periodEnd time.Time, cancelAtPeriodEnd bool) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("external_subscription_id = ?", externalID).
		Updates(map[string]interface{}{
			"status":               status,
			"current_period_start": periodStart,
			"current_period_end":   periodEnd,
			"cancel_at_period_end": cancelAtPeriodEnd,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("update subscription %s: %w", externalID, result.Error)
	}
	return result.RowsAffected, nil
}

// MarkCanceled transitions the row to canceled. The row is retained for
// history and the ledger join.
func (s *SubscriptionStore) MarkCanceled(ctx context.Context, externalID string) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("external_subscription_id = ?", externalID).
		Update("status", models.SubscriptionStatusCanceled)
	if result.Error != nil {
		return 0, fmt.Errorf("cancel subscription %s: %w", externalID, result.Error)
	}
	return result.RowsAffected, nil
}

// Latest returns the user's current subscription: the most recently created
// row regardless of status.
func (s *SubscriptionStore) Latest(ctx context.Context, userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// LatestActive returns the user's most recent subscription in active status.
func (s *SubscriptionStore) LatestActive(ctx context.Context, userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		Order("created_at DESC, id DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// SetCancelAtPeriodEnd flags the row for cancellation at the period boundary
// without changing its status.
func (s *SubscriptionStore) SetCancelAtPeriodEnd(ctx context.Context, externalID string) error {
	err := s.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("external_subscription_id = ?", externalID).
		Update("cancel_at_period_end", true).Error
	if err != nil {
		return fmt.Errorf("flag subscription %s for cancellation: %w", externalID, err)
	}
	return nil
}

// LedgerStore owns the append-only payment ledger.
type LedgerStore struct {
	db *gorm.DB
}

// NewLedgerStore creates a ledger store over a GORM handle.
func NewLedgerStore(db *gorm.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

// Upsert records a payment attempt. The external payment id deduplicates
// provider redelivery; a redelivered event with a different payload
// overwrites the stored record so the ledger reflects the latest truth.
func (s *LedgerStore) Upsert(ctx context.Context, record *models.PaymentRecord) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_payment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id",
			"amount",
			"currency",
			"status",
			"description",
			"updated_at",
		}),
	}).Create(record).Error
	if err != nil {
		return fmt.Errorf("upsert payment record %s: %w", record.ExternalPaymentID, err)
	}
	return nil
}

// ListByUser returns the user's payment history, newest first.
func (s *LedgerStore) ListByUser(ctx context.Context, userID uint) ([]models.PaymentRecord, error) {
	var records []models.PaymentRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list payment records for user %d: %w", userID, err)
	}
	return records, nil
}

// UserStore resolves provider customer references to local accounts.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a user store over a GORM handle.
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// ByExternalCustomerID resolves the provider's customer reference.
func (s *UserStore) ByExternalCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("external_customer_id = ?", customerID).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ByID fetches a user by primary key.
func (s *UserStore) ByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
