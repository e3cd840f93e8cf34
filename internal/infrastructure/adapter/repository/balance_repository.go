package repository

import (
	"context"
	"errors"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

const (
	tryDebitSQL = `
		UPDATE user_balances
		SET balance = balance - ?, updated_at = ?
		WHERE user_id = ? AND balance >= ?
		RETURNING balance`

	creditSQL = `
		INSERT INTO user_balances (user_id, balance, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = user_balances.balance + EXCLUDED.balance,
		    updated_at = EXCLUDED.updated_at
		RETURNING balance`
)

// BalanceRepository implements persistence.BalanceRepository using GORM.
// Debits and credits are single conditional statements, so concurrent
// callers never need a row lock held across a read and a write.
type BalanceRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewBalanceRepository creates a new BalanceRepository instance
func NewBalanceRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *BalanceRepository {
	return &BalanceRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// GetBalance returns the stored balance or 0 for users without a row
func (r *BalanceRepository) GetBalance(ctx context.Context, userID string) (int64, error) {
	var row model.UserBalance
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, wrapDatabaseError(r.logger, r.errorClassifier, "get balance", err, map[string]any{"user_id": userID})
	}
	return row.Balance, nil
}

// TryDebit subtracts amount when the balance covers it
func (r *BalanceRepository) TryDebit(ctx context.Context, userID string, amount int64) (entity.DebitResult, error) {
	result := entity.DebitResult{Required: amount}

	var balances []int64
	err := r.db.WithContext(ctx).
		Raw(tryDebitSQL, amount, r.timeProvider.Now(), userID, amount).
		Scan(&balances).Error
	if err != nil {
		return result, wrapDatabaseError(r.logger, r.errorClassifier, "debit balance", err, map[string]any{
			"user_id": userID,
			"amount":  amount,
		})
	}

	if len(balances) == 1 {
		result.Applied = true
		result.Balance = balances[0]
		return result, nil
	}

	current, err := r.GetBalance(ctx, userID)
	if err != nil {
		return result, err
	}
	result.Balance = current
	// a zero debit against a user without a row still succeeds
	result.Applied = amount == 0
	return result, nil
}

// Credit adds amount, creating the row on first credit
func (r *BalanceRepository) Credit(ctx context.Context, userID string, amount int64) (int64, error) {
	now := r.timeProvider.Now()

	var balances []int64
	err := r.db.WithContext(ctx).
		Raw(creditSQL, userID, amount, now, now).
		Scan(&balances).Error
	if err != nil {
		return 0, wrapDatabaseError(r.logger, r.errorClassifier, "credit balance", err, map[string]any{
			"user_id": userID,
			"amount":  amount,
		})
	}
	if len(balances) != 1 {
		return 0, wrapDatabaseError(r.logger, r.errorClassifier, "credit balance", gorm.ErrRecordNotFound, map[string]any{
			"user_id": userID,
		})
	}

	r.logger.Debug("Balance row credited", map[string]any{
		"user_id":     userID,
		"amount":      amount,
		"new_balance": balances[0],
	})
	return balances[0], nil
}
