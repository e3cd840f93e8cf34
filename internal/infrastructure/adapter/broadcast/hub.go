package broadcast

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/event"
)

const defaultBuffer = 16

// Subscription receives the settlement events of one user
type Subscription struct {
	ID     string
	UserID string
	events chan *entity.SettlementEvent
}

// Events is closed when the subscription is removed
func (s *Subscription) Events() <-chan *entity.SettlementEvent {
	return s.events
}

// Hub fans settlement events out to live subscribers in this process.
// Slow subscribers lose events instead of blocking the publisher.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	logger core.Logger
}

var _ event.Publisher = (*Hub)(nil)

// NewHub creates an empty hub
func NewHub(logger core.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]*Subscription),
		logger: logger,
	}
}

// Subscribe registers a subscriber for userID's events
func (h *Hub) Subscribe(userID string, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	sub := &Subscription{
		ID:     uuid.NewString(),
		UserID: userID,
		events: make(chan *entity.SettlementEvent, buffer),
	}

	h.mu.Lock()
	h.subs[sub.ID] = sub
	h.mu.Unlock()

	h.logger.Debug("Settlement subscriber added", map[string]any{
		"subscription_id": sub.ID,
		"user_id":         userID,
	})
	return sub
}

// Unsubscribe removes the subscription and closes its channel; unknown ids are ignored
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
		close(sub.events)
	}
	h.mu.Unlock()
}

// Publish delivers evt to every subscriber of its user without blocking
func (h *Hub) Publish(_ context.Context, evt *entity.SettlementEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if sub.UserID != evt.UserID {
			continue
		}
		select {
		case sub.events <- evt:
		default:
			h.logger.Warn("Dropping settlement event for slow subscriber", map[string]any{
				"subscription_id": sub.ID,
				"event_id":        evt.EventID,
			})
		}
	}
	return nil
}

// Len returns the number of live subscriptions
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
