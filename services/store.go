package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/wealth-horizon/BloomVest/models"
	"gorm.io/gorm"
)

// Store is the persistence surface the reconciliation core mutates state
// through. No other code path may write transaction status or investment
// totals. UpdateTransactionStatus is a conditional update: it applies the
// new status only while the row still holds the expected one, which is the
// guard that keeps two racing reconcilers from both crediting the ledger.
type Store interface {
	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	FindTransaction(ctx context.Context, orderID string) (*models.Transaction, error)
	// ListPending returns PENDING transactions, optionally filtered by user
	// (userID 0 means all users).
	ListPending(ctx context.Context, userID uint) ([]models.Transaction, error)
	// SavePendingSnapshot refreshes the audit payload on a still-pending
	// transaction without touching its status.
	SavePendingSnapshot(ctx context.Context, orderID, cfPaymentID, rawPayload string) error
	// UpdateTransactionStatus transitions orderID to status only if the row
	// currently holds expected. Returns false when the guard did not match.
	UpdateTransactionStatus(ctx context.Context, orderID string, status, expected models.TransactionStatus, cfPaymentID, rawPayload string) (bool, error)
	// UpsertInvestment adds the deltas to the (user, metal) ledger entry,
	// creating it on first credit.
	UpsertInvestment(ctx context.Context, userID uint, metalType string, deltaAmount, deltaWeight float64) error
	// WithinTransaction runs fn against a store whose writes commit or roll
	// back together.
	WithinTransaction(ctx context.Context, fn func(Store) error) error
}

// GormStore is the postgres-backed Store used in production
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a gorm handle
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	if err := s.db.WithContext(ctx).Create(txn).Error; err != nil {
		return fmt.Errorf("%w: create transaction %s: %v", ErrPersistence, txn.OrderID, err)
	}
	return nil
}

func (s *GormStore) FindTransaction(ctx context.Context, orderID string) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return nil, fmt.Errorf("%w: find transaction %s: %v", ErrPersistence, orderID, err)
	}
	return &txn, nil
}

func (s *GormStore) ListPending(ctx context.Context, userID uint) ([]models.Transaction, error) {
	query := s.db.WithContext(ctx).Where("status = ?", models.TransactionStatusPending)
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}
	var txns []models.Transaction
	if err := query.Order("created_at ASC").Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("%w: list pending: %v", ErrPersistence, err)
	}
	return txns, nil
}

func (s *GormStore) SavePendingSnapshot(ctx context.Context, orderID, cfPaymentID, rawPayload string) error {
	updates := map[string]interface{}{"raw_payload": rawPayload}
	if cfPaymentID != "" {
		updates["cf_payment_id"] = cfPaymentID
	}
	err := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("order_id = ? AND status = ?", orderID, models.TransactionStatusPending).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("%w: snapshot for %s: %v", ErrPersistence, orderID, err)
	}
	return nil
}

func (s *GormStore) UpdateTransactionStatus(ctx context.Context, orderID string, status, expected models.TransactionStatus, cfPaymentID, rawPayload string) (bool, error) {
	updates := map[string]interface{}{
		"status":      status,
		"raw_payload": rawPayload,
	}
	if cfPaymentID != "" {
		updates["cf_payment_id"] = cfPaymentID
	}
	result := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("order_id = ? AND status = ?", orderID, expected).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("%w: update status for %s: %v", ErrPersistence, orderID, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (s *GormStore) UpsertInvestment(ctx context.Context, userID uint, metalType string, deltaAmount, deltaWeight float64) error {
	db := s.db.WithContext(ctx)

	var investment models.Investment
	err := db.Where("user_id = ? AND metal_type = ?", userID, metalType).First(&investment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			investment = models.Investment{
				UserID:        userID,
				MetalType:     metalType,
				TotalAmount:   deltaAmount,
				WeightInGrams: deltaWeight,
			}
			if err := db.Create(&investment).Error; err != nil {
				return fmt.Errorf("%w: create investment for user %d: %v", ErrPersistence, userID, err)
			}
			return nil
		}
		return fmt.Errorf("%w: find investment for user %d: %v", ErrPersistence, userID, err)
	}

	err = db.Model(&investment).Updates(map[string]interface{}{
		"total_amount":    gorm.Expr("total_amount + ?", deltaAmount),
		"weight_in_grams": gorm.Expr("weight_in_grams + ?", deltaWeight),
	}).Error
	if err != nil {
		return fmt.Errorf("%w: update investment for user %d: %v", ErrPersistence, userID, err)
	}
	return nil
}

func (s *GormStore) WithinTransaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
