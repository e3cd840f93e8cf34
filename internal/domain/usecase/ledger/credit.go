package ledger

import (
	"context"
	"fmt"

	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
)

// Credit adds a positive amount to the balance and returns the new balance
func (l *Ledger) Credit(ctx context.Context, userID string, amount int64) (int64, error) {
	if err := validateUserID(userID); err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, fmt.Errorf("%w: credit of %d", errs.ErrInvalidAmount, amount)
	}

	balance, err := l.uow.GetBalanceRepository(ctx).Credit(ctx, userID, amount)
	if err != nil {
		l.metrics.ObserveLedgerOperation("credit", "error")
		l.logger.Error("Failed to credit balance", map[string]any{
			"user_id": userID,
			"amount":  amount,
			"error":   err.Error(),
		})
		return 0, err
	}

	l.metrics.ObserveLedgerOperation("credit", "applied")
	l.logger.Info("Balance credited", map[string]any{
		"user_id":     userID,
		"amount":      amount,
		"new_balance": balance,
	})
	return balance, nil
}
