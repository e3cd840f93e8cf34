package memory

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
)

type settlementEventRepository struct {
	store *Store
}

func (r *settlementEventRepository) Create(ctx context.Context, event *entity.SettlementEvent) error {
	return r.store.access(ctx, func(record func(func())) error {
		if _, exists := r.store.eventByTx[event.TransactionID]; exists {
			return errs.ErrDuplicateSettlementEvent
		}
		if _, exists := r.store.events[event.EventID]; exists {
			return errs.ErrDuplicateSettlementEvent
		}

		r.store.events[event.EventID] = cloneEvent(event)
		r.store.eventByTx[event.TransactionID] = event.EventID
		r.store.eventOrder = append(r.store.eventOrder, event.EventID)
		record(func() {
			delete(r.store.events, event.EventID)
			delete(r.store.eventByTx, event.TransactionID)
			r.store.eventOrder = r.store.eventOrder[:len(r.store.eventOrder)-1]
		})
		return nil
	})
}

func (r *settlementEventRepository) FindUnpublished(ctx context.Context, limit int) ([]*entity.SettlementEvent, error) {
	var result []*entity.SettlementEvent
	err := r.store.access(ctx, func(func(func())) error {
		result = make([]*entity.SettlementEvent, 0)
		for _, id := range r.store.eventOrder {
			e := r.store.events[id]
			if e.IsPublished() {
				continue
			}
			result = append(result, cloneEvent(e))
			if limit > 0 && len(result) == limit {
				break
			}
		}
		return nil
	})
	return result, err
}

func (r *settlementEventRepository) MarkPublished(ctx context.Context, eventID string, publishedAt time.Time) error {
	return r.store.access(ctx, func(record func(func())) error {
		e, ok := r.store.events[eventID]
		if !ok {
			return errs.ErrNotFound
		}

		prev := e.PublishedAt
		record(func() { e.PublishedAt = prev })
		at := publishedAt
		e.PublishedAt = &at
		return nil
	})
}
