package persistence

import (
	"context"
)

// UnitOfWork coordinates repositories inside one storage transaction.
// Repositories obtained with a context returned by Begin take part in that
// transaction; any other context yields auto-committing repositories.
type UnitOfWork interface {
	// Begin starts a new transaction and returns a transactional context
	Begin(ctx context.Context) (context.Context, error)

	// Commit commits the transaction in the given context
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction in the given context.
	// Rolling back an already finished transaction is not an error.
	Rollback(ctx context.Context) error

	GetBalanceRepository(ctx context.Context) BalanceRepository
	GetTransactionRepository(ctx context.Context) TransactionRepository
	GetSettlementEventRepository(ctx context.Context) SettlementEventRepository
	GetCatalogRepository(ctx context.Context) CatalogRepository
}
