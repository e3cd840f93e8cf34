package ledger

import (
	"context"
)

// GetBalance returns the balance of a user, 0 for users never credited.
// It never creates a row.
func (l *Ledger) GetBalance(ctx context.Context, userID string) (int64, error) {
	if err := validateUserID(userID); err != nil {
		return 0, err
	}

	balance, err := l.uow.GetBalanceRepository(ctx).GetBalance(ctx, userID)
	if err != nil {
		l.logger.Error("Failed to get balance", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		return 0, err
	}

	return balance, nil
}
