package repository

import (
	"context"
	"fmt"
	"time"

	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConfirmationLockRepository is a persistence.ConfirmationLocker backed by
// the confirmation_locks table. It is used when no Redis is configured.
type ConfirmationLockRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewConfirmationLockRepository creates a new ConfirmationLockRepository instance
func NewConfirmationLockRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *ConfirmationLockRepository {
	return &ConfirmationLockRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// Acquire takes the lock unless a live one exists.
// An expired lock is taken over in the same upsert.
func (r *ConfirmationLockRepository) Acquire(ctx context.Context, transactionID string, ttl time.Duration) (persistence.ReleaseFunc, bool, error) {
	now := r.timeProvider.Now()
	expiresAt := now.Add(ttl)
	token := uuid.NewString()

	result := r.db.WithContext(ctx).Exec(`
		INSERT INTO confirmation_locks (transaction_id, token, locked_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (transaction_id) DO UPDATE
		SET token = EXCLUDED.token,
		    locked_at = EXCLUDED.locked_at,
		    expires_at = EXCLUDED.expires_at
		WHERE confirmation_locks.expires_at <= ?`,
		transactionID, token, now, expiresAt,
		now,
	)
	if result.Error != nil {
		if isContextError(result.Error) {
			return nil, false, fmt.Errorf("lock acquisition timeout: %w", result.Error)
		}
		r.logger.Error("Database error acquiring confirmation lock", map[string]any{
			"transaction_id": transactionID,
			"error":          result.Error.Error(),
		})
		return nil, false, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}

	if result.RowsAffected == 0 {
		r.logger.Debug("Confirmation lock held elsewhere", map[string]any{
			"transaction_id": transactionID,
		})
		return nil, false, nil
	}

	r.logger.Debug("Confirmation lock acquired", map[string]any{
		"transaction_id": transactionID,
		"expires_at":     expiresAt,
	})

	release := func(ctx context.Context) error {
		return r.release(ctx, transactionID, token)
	}
	return release, true, nil
}

// release deletes the lock only while this holder still owns it
func (r *ConfirmationLockRepository) release(ctx context.Context, transactionID, token string) error {
	result := r.db.WithContext(ctx).
		Where("transaction_id = ? AND token = ?", transactionID, token).
		Delete(&model.ConfirmationLock{})

	if result.Error != nil && isContextError(result.Error) {
		r.logger.Warn("Context ended while releasing confirmation lock, it will expire", map[string]any{
			"transaction_id": transactionID,
			"error":          result.Error.Error(),
		})
		return nil
	}
	if result.Error != nil {
		return fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		r.logger.Debug("Confirmation lock already expired or taken over", map[string]any{
			"transaction_id": transactionID,
		})
	}
	return nil
}

// CleanupExpiredLocks removes all expired locks from the database
func (r *ConfirmationLockRepository) CleanupExpiredLocks(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", r.timeProvider.Now()).
		Delete(&model.ConfirmationLock{})
	if result.Error != nil {
		r.logger.Error("Failed to clean up expired confirmation locks", map[string]any{
			"error": result.Error.Error(),
		})
		return 0, fmt.Errorf("%w: %s", errs.ErrDatabaseConnection, result.Error.Error())
	}
	return result.RowsAffected, nil
}
