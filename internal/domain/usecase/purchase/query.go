package purchase

import (
	"context"
	"strings"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// GetTransaction returns a transaction owned by userID.
// Transactions of other users are reported as not found.
func (s *Service) GetTransaction(ctx context.Context, transactionID string, userID string) (*entity.Transaction, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, errs.ErrInvalidTransactionID
	}
	if strings.TrimSpace(userID) == "" {
		return nil, errs.ErrInvalidUserID
	}

	txn, err := s.uow.GetTransactionRepository(ctx).GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.UserID != userID {
		return nil, errs.ErrTransactionNotFound
	}
	return txn, nil
}

// ListTransactions pages through a user's transactions, newest first
func (s *Service) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*entity.Transaction, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errs.ErrInvalidUserID
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	return s.uow.GetTransactionRepository(ctx).ListByUser(ctx, userID, limit, offset)
}
