package memory

import (
	"context"
	"sort"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
)

type transactionRepository struct {
	store *Store
}

func (r *transactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	return r.store.access(ctx, func(record func(func())) error {
		id := transaction.TransactionID
		if _, exists := r.store.transactions[id]; exists {
			return errs.ErrDuplicateTransaction
		}

		r.store.transactions[id] = cloneTransaction(transaction)
		r.store.txOrder = append(r.store.txOrder, id)
		record(func() {
			delete(r.store.transactions, id)
			r.store.txOrder = r.store.txOrder[:len(r.store.txOrder)-1]
		})
		return nil
	})
}

func (r *transactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*entity.Transaction, error) {
	var txn *entity.Transaction
	err := r.store.access(ctx, func(func(func())) error {
		stored, ok := r.store.transactions[transactionID]
		if !ok {
			return errs.ErrTransactionNotFound
		}
		txn = cloneTransaction(stored)
		return nil
	})
	return txn, err
}

func (r *transactionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*entity.Transaction, error) {
	var result []*entity.Transaction
	err := r.store.access(ctx, func(func(func())) error {
		owned := make([]*entity.Transaction, 0)
		for i := len(r.store.txOrder) - 1; i >= 0; i-- {
			t := r.store.transactions[r.store.txOrder[i]]
			if t.UserID == userID {
				owned = append(owned, t)
			}
		}
		// insertion order breaks ties between equal creation times
		sort.SliceStable(owned, func(i, j int) bool {
			return owned[i].CreatedAt.After(owned[j].CreatedAt)
		})

		if offset >= len(owned) {
			result = []*entity.Transaction{}
			return nil
		}
		end := len(owned)
		if limit > 0 && offset+limit < end {
			end = offset + limit
		}
		result = make([]*entity.Transaction, 0, end-offset)
		for _, t := range owned[offset:end] {
			result = append(result, cloneTransaction(t))
		}
		return nil
	})
	return result, err
}

func (r *transactionRepository) Finalize(ctx context.Context, transactionID string, f entity.Finalization) (bool, error) {
	if err := f.Validate(); err != nil {
		return false, err
	}

	var applied bool
	err := r.store.access(ctx, func(record func(func())) error {
		stored, ok := r.store.transactions[transactionID]
		if !ok {
			return errs.ErrTransactionNotFound
		}
		if stored.Status != entity.StatusPending {
			return nil
		}

		prev := cloneTransaction(stored)
		record(func() { r.store.transactions[transactionID] = prev })

		updated := cloneTransaction(stored)
		updated.Apply(f)
		r.store.transactions[transactionID] = cloneTransaction(updated)
		applied = true
		return nil
	})
	return applied, err
}

func (r *transactionRepository) RecordFulfillment(ctx context.Context, transactionID string, providerOrderID *string, fulfillmentError string) error {
	return r.store.access(ctx, func(record func(func())) error {
		stored, ok := r.store.transactions[transactionID]
		if !ok || stored.Status != entity.StatusSuccess {
			return errs.ErrTransactionNotFound
		}

		prev := cloneTransaction(stored)
		record(func() { r.store.transactions[transactionID] = prev })

		updated := cloneTransaction(stored)
		if providerOrderID != nil {
			id := *providerOrderID
			updated.ProviderOrderID = &id
		}
		updated.FulfillmentError = fulfillmentError
		r.store.transactions[transactionID] = updated
		return nil
	})
}
