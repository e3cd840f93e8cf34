package ledger

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
)

// TryDebit subtracts amount from the balance only if it is covered.
// A rejected debit is reported with Applied=false and the current balance;
// the error return is reserved for invalid input and storage faults.
func (l *Ledger) TryDebit(ctx context.Context, userID string, amount int64) (entity.DebitResult, error) {
	if err := validateUserID(userID); err != nil {
		return entity.DebitResult{}, err
	}
	if amount < 0 {
		return entity.DebitResult{}, fmt.Errorf("%w: debit of %d", errs.ErrInvalidAmount, amount)
	}

	result, err := l.uow.GetBalanceRepository(ctx).TryDebit(ctx, userID, amount)
	if err != nil {
		l.metrics.ObserveLedgerOperation("debit", "error")
		l.logger.Error("Failed to debit balance", map[string]any{
			"user_id": userID,
			"amount":  amount,
			"error":   err.Error(),
		})
		return entity.DebitResult{}, err
	}
	result.Required = amount

	if !result.Applied {
		l.metrics.ObserveLedgerOperation("debit", "insufficient")
		l.logger.Info("Debit rejected for insufficient balance", map[string]any{
			"user_id": userID,
			"balance": result.Balance,
			"amount":  amount,
			"missing": result.Missing(),
		})
		return result, nil
	}

	l.metrics.ObserveLedgerOperation("debit", "applied")
	l.logger.Debug("Balance debited", map[string]any{
		"user_id":     userID,
		"amount":      amount,
		"new_balance": result.Balance,
	})
	return result, nil
}
