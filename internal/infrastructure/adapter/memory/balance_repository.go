package memory

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
)

type balanceRepository struct {
	store *Store
}

func (r *balanceRepository) GetBalance(ctx context.Context, userID string) (int64, error) {
	var balance int64
	err := r.store.access(ctx, func(func(func())) error {
		if b, ok := r.store.balances[userID]; ok {
			balance = b.Balance
		}
		return nil
	})
	return balance, err
}

func (r *balanceRepository) TryDebit(ctx context.Context, userID string, amount int64) (entity.DebitResult, error) {
	result := entity.DebitResult{Required: amount}
	err := r.store.access(ctx, func(record func(func())) error {
		b, ok := r.store.balances[userID]
		if !ok {
			// a missing row is a zero balance
			result.Applied = amount == 0
			return nil
		}
		if b.Balance < amount {
			result.Balance = b.Balance
			return nil
		}

		prev := *b
		record(func() { *b = prev })
		b.Balance -= amount
		b.UpdatedAt = r.store.timeProvider.Now()

		result.Applied = true
		result.Balance = b.Balance
		return nil
	})
	return result, err
}

func (r *balanceRepository) Credit(ctx context.Context, userID string, amount int64) (int64, error) {
	var balance int64
	err := r.store.access(ctx, func(record func(func())) error {
		if amount < 0 {
			return fmt.Errorf("%w: negative credit", errs.ErrConstraintViolation)
		}

		b, ok := r.store.balances[userID]
		if !ok {
			b = &entity.UserBalance{UserID: userID}
			r.store.balances[userID] = b
			record(func() { delete(r.store.balances, userID) })
		} else {
			prev := *b
			record(func() { *b = prev })
		}

		b.Balance += amount
		b.UpdatedAt = r.store.timeProvider.Now()
		balance = b.Balance
		return nil
	})
	return balance, err
}
