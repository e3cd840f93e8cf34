package event

import (
	"context"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
)

// Publisher hands settlement events to downstream consumers with at-least-once delivery
type Publisher interface {
	Publish(ctx context.Context, event *entity.SettlementEvent) error
}
