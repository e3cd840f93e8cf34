package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
)

// SettlementEventRepository is the outbox of settlement events
type SettlementEventRepository interface {
	// Create records the event; it must run in the same unit of work as the status change
	//
	// Possible errors:
	// - ErrDuplicateSettlementEvent: If the transaction already has an event
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, event *entity.SettlementEvent) error

	// FindUnpublished returns up to limit events not yet handed to the bus, oldest first
	FindUnpublished(ctx context.Context, limit int) ([]*entity.SettlementEvent, error)

	// MarkPublished stamps the event as delivered to the bus
	MarkPublished(ctx context.Context, eventID string, publishedAt time.Time) error
}
