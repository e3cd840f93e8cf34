package persistence

import (
	"context"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
)

// TransactionRepository defines methods to interact with purchase transactions
type TransactionRepository interface {
	// Create saves a new transaction in whatever status it was built with
	//
	// Possible errors:
	// - ErrDuplicateTransaction: If transaction with the same ID already exists
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, transaction *entity.Transaction) error

	// GetByTransactionID retrieves a transaction by its ID
	//
	// Possible errors:
	// - ErrTransactionNotFound: If transaction with the given ID doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByTransactionID(ctx context.Context, transactionID string) (*entity.Transaction, error)

	// ListByUser returns a user's transactions, newest first
	//
	// Possible errors:
	// - ErrDatabaseConnection: If database connection fails
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Transaction, error)

	// Finalize moves a pending transaction to a terminal status.
	// It returns false without error when the transaction was no longer pending.
	//
	// Possible errors:
	// - ErrInvalidInput: If the finalization does not target a terminal status
	// - ErrDatabaseConnection: If database connection fails
	Finalize(ctx context.Context, transactionID string, f entity.Finalization) (bool, error)

	// RecordFulfillment stores the provider outcome of a successful direct purchase.
	// Exactly one of providerOrderID and fulfillmentError is expected to be set.
	//
	// Possible errors:
	// - ErrTransactionNotFound: If no successful transaction has the given ID
	// - ErrDatabaseConnection: If database connection fails
	RecordFulfillment(ctx context.Context, transactionID string, providerOrderID *string, fulfillmentError string) error
}
