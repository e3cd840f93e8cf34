package persistence

import (
	"context"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
)

// BalanceRepository stores per-user balances.
// Every mutation is a single atomic conditional statement; no row lock is held
// between a read and a write.
type BalanceRepository interface {
	// GetBalance returns the current balance, or 0 when the user has no row yet
	//
	// Possible errors:
	// - ErrDatabaseConnection: If database connection fails
	GetBalance(ctx context.Context, userID string) (int64, error)

	// TryDebit subtracts amount only if the balance covers it.
	// An uncovered debit is reported through DebitResult.Applied, not an error.
	//
	// Possible errors:
	// - ErrDatabaseConnection: If database connection fails
	TryDebit(ctx context.Context, userID string, amount int64) (entity.DebitResult, error)

	// Credit adds amount, creating the balance row when absent, and returns the new balance
	//
	// Possible errors:
	// - ErrConstraintViolation: If the resulting balance would violate the schema
	// - ErrDatabaseConnection: If database connection fails
	Credit(ctx context.Context, userID string, amount int64) (int64, error)
}
