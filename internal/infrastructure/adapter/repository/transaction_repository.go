package repository

import (
	"context"
	"errors"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// TransactionRepository implements persistence.TransactionRepository using GORM
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// entityToModel converts a transaction entity to a model
func (r *TransactionRepository) entityToModel(t *entity.Transaction) model.Transaction {
	return model.Transaction{
		TransactionID:    t.TransactionID,
		UserID:           t.UserID,
		ProductID:        t.ProductID,
		PackageID:        t.PackageID,
		PaymentMethodID:  t.PaymentMethodID,
		GameAccountID:    t.GameAccountID,
		ProductLabel:     t.ProductLabel,
		ProviderEntityID: t.ProductCode.EntityID,
		ProviderDenomID:  t.ProductCode.DenomID,
		Price:            t.Price,
		Fee:              t.Fee,
		Total:            t.Total,
		Status:           string(t.Status),
		ProviderOrderID:  t.ProviderOrderID,
		FulfillmentError: t.FulfillmentError,
		FailureReason:    t.FailureReason,
		CreatedAt:        t.CreatedAt,
		FinalizedAt:      t.FinalizedAt,
	}
}

// modelToEntity converts a transaction model to an entity
func (r *TransactionRepository) modelToEntity(m *model.Transaction) *entity.Transaction {
	return &entity.Transaction{
		TransactionID:    m.TransactionID,
		UserID:           m.UserID,
		ProductID:        m.ProductID,
		PackageID:        m.PackageID,
		PaymentMethodID:  m.PaymentMethodID,
		GameAccountID:    m.GameAccountID,
		ProductLabel:     m.ProductLabel,
		ProductCode:      entity.ProductCode{EntityID: m.ProviderEntityID, DenomID: m.ProviderDenomID},
		Price:            m.Price,
		Fee:              m.Fee,
		Total:            m.Total,
		Status:           entity.TransactionStatus(m.Status),
		ProviderOrderID:  m.ProviderOrderID,
		FulfillmentError: m.FulfillmentError,
		FailureReason:    m.FailureReason,
		CreatedAt:        m.CreatedAt,
		FinalizedAt:      m.FinalizedAt,
	}
}

// Create saves a new transaction
func (r *TransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	row := r.entityToModel(transaction)

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if r.errorClassifier.IsDuplicateKeyError(err) {
			r.logger.Warn("Duplicate transaction detected", map[string]any{
				"transaction_id": transaction.TransactionID,
			})
			return errs.ErrDuplicateTransaction
		}
		return wrapDatabaseError(r.logger, r.errorClassifier, "create transaction", err, map[string]any{
			"transaction_id": transaction.TransactionID,
			"user_id":        transaction.UserID,
		})
	}

	r.logger.Debug("Transaction stored", map[string]any{
		"transaction_id": transaction.TransactionID,
		"status":         transaction.Status,
	})
	return nil
}

// GetByTransactionID retrieves a transaction by its ID
func (r *TransactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*entity.Transaction, error) {
	var row model.Transaction
	err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrTransactionNotFound
	}
	if err != nil {
		return nil, wrapDatabaseError(r.logger, r.errorClassifier, "get transaction", err, map[string]any{
			"transaction_id": transactionID,
		})
	}
	return r.modelToEntity(&row), nil
}

// ListByUser returns a page of the user's transactions, newest first
func (r *TransactionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Transaction, error) {
	var rows []model.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, wrapDatabaseError(r.logger, r.errorClassifier, "list transactions", err, map[string]any{
			"user_id": userID,
		})
	}

	result := make([]*entity.Transaction, 0, len(rows))
	for i := range rows {
		result = append(result, r.modelToEntity(&rows[i]))
	}
	return result, nil
}

// Finalize moves a pending transaction to a terminal status.
// The status guard in the WHERE clause makes concurrent finalizers race safely:
// exactly one of them sees a row affected.
func (r *TransactionRepository) Finalize(ctx context.Context, transactionID string, f entity.Finalization) (bool, error) {
	if err := f.Validate(); err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("transaction_id = ? AND status = ?", transactionID, string(entity.StatusPending)).
		Updates(map[string]any{
			"status":            string(f.Status),
			"provider_order_id": f.ProviderOrderID,
			"failure_reason":    f.FailureReason,
			"finalized_at":      f.FinalizedAt,
		})
	if result.Error != nil {
		return false, wrapDatabaseError(r.logger, r.errorClassifier, "finalize transaction", result.Error, map[string]any{
			"transaction_id": transactionID,
			"status":         f.Status,
		})
	}

	if result.RowsAffected == 0 {
		r.logger.Info("Transaction no longer pending, finalization skipped", map[string]any{
			"transaction_id": transactionID,
			"status":         f.Status,
		})
		return false, nil
	}
	return true, nil
}

// RecordFulfillment stores the provider outcome of a successful purchase
func (r *TransactionRepository) RecordFulfillment(ctx context.Context, transactionID string, providerOrderID *string, fulfillmentError string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("transaction_id = ? AND status = ?", transactionID, string(entity.StatusSuccess)).
		Updates(map[string]any{
			"provider_order_id": providerOrderID,
			"fulfillment_error": fulfillmentError,
		})
	if result.Error != nil {
		return wrapDatabaseError(r.logger, r.errorClassifier, "record fulfillment", result.Error, map[string]any{
			"transaction_id": transactionID,
		})
	}
	if result.RowsAffected == 0 {
		return errs.ErrTransactionNotFound
	}
	return nil
}
