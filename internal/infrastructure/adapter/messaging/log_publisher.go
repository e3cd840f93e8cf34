package messaging

import (
	"context"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/event"
)

// LogPublisher writes settlement events to the log; used when no broker is configured
type LogPublisher struct {
	logger core.Logger
}

var _ event.Publisher = (*LogPublisher)(nil)

// NewLogPublisher creates a new LogPublisher
func NewLogPublisher(logger core.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event
func (p *LogPublisher) Publish(_ context.Context, evt *entity.SettlementEvent) error {
	p.logger.Info("Settlement event", map[string]any{
		"event_id":       evt.EventID,
		"transaction_id": evt.TransactionID,
		"user_id":        evt.UserID,
		"product_label":  evt.ProductLabel,
		"amount":         evt.Amount,
		"status":         string(evt.Status),
	})
	return nil
}
