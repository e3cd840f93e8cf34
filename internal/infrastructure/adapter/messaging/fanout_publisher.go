package messaging

import (
	"context"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/event"
)

// FanoutPublisher delivers to a primary publisher and then, best-effort, to secondaries.
// Only a primary failure is reported, so only the primary gets at-least-once delivery.
type FanoutPublisher struct {
	primary     event.Publisher
	secondaries []event.Publisher
	logger      core.Logger
}

var _ event.Publisher = (*FanoutPublisher)(nil)

// NewFanoutPublisher creates a new FanoutPublisher
func NewFanoutPublisher(logger core.Logger, primary event.Publisher, secondaries ...event.Publisher) *FanoutPublisher {
	return &FanoutPublisher{primary: primary, secondaries: secondaries, logger: logger}
}

// Publish sends evt to the primary, then to every secondary
func (p *FanoutPublisher) Publish(ctx context.Context, evt *entity.SettlementEvent) error {
	if err := p.primary.Publish(ctx, evt); err != nil {
		return err
	}

	for _, s := range p.secondaries {
		if err := s.Publish(ctx, evt); err != nil {
			p.logger.Warn("Secondary settlement publisher failed", map[string]any{
				"event_id": evt.EventID,
				"error":    err.Error(),
			})
		}
	}
	return nil
}
