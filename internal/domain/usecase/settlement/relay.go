package settlement

import (
	"context"
	"errors"
	"time"

	coreport "github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/event"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/persistence"
)

const (
	defaultPollInterval = time.Second
	defaultBatchSize    = 100
)

// Options tunes the outbox polling
type Options struct {
	PollInterval time.Duration
	BatchSize    int
}

// Relay moves settlement events from the outbox to the message bus.
// An event is marked published only after the publisher accepted it, so a
// crash between the two steps republishes it: delivery is at-least-once.
type Relay struct {
	uow          persistence.UnitOfWork
	publisher    event.Publisher
	timeProvider coreport.TimeProvider
	metrics      coreport.MetricsRecorder
	logger       coreport.Logger
	opts         Options
}

// NewRelay creates a new outbox relay
func NewRelay(
	uow persistence.UnitOfWork,
	publisher event.Publisher,
	timeProvider coreport.TimeProvider,
	metrics coreport.MetricsRecorder,
	logger coreport.Logger,
	opts Options,
) *Relay {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}

	return &Relay{
		uow:          uow,
		publisher:    publisher,
		timeProvider: timeProvider,
		metrics:      metrics,
		logger:       logger,
		opts:         opts,
	}
}

// Run flushes the outbox every poll interval until ctx is cancelled
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("Settlement relay started", map[string]any{
		"poll_interval": r.opts.PollInterval.String(),
		"batch_size":    r.opts.BatchSize,
	})

	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Settlement relay stopped", nil)
			return nil
		case <-ticker.C:
			// drain full batches before waiting for the next tick
			for {
				n, err := r.Flush(ctx)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						r.logger.Error("Settlement relay flush failed", map[string]any{"error": err.Error()})
					}
					break
				}
				if n < r.opts.BatchSize {
					break
				}
			}
		}
	}
}

// Flush publishes one batch of unpublished events, oldest first, and returns
// how many were delivered. It stops at the first publish failure so the rest
// of the batch keeps its order for the next attempt.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	repo := r.uow.GetSettlementEventRepository(ctx)

	events, err := repo.FindUnpublished(ctx, r.opts.BatchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, evt := range events {
		if err := r.publisher.Publish(ctx, evt); err != nil {
			r.metrics.ObserveSettlementPublish("error")
			r.logger.Warn("Failed to publish settlement event", map[string]any{
				"event_id":       evt.EventID,
				"transaction_id": evt.TransactionID,
				"error":          err.Error(),
			})
			return published, err
		}
		r.metrics.ObserveSettlementPublish("published")

		if err := repo.MarkPublished(ctx, evt.EventID, r.timeProvider.Now()); err != nil {
			// already on the bus; it will be delivered again on the next flush
			r.logger.Error("Failed to mark settlement event published", map[string]any{
				"event_id":       evt.EventID,
				"transaction_id": evt.TransactionID,
				"error":          err.Error(),
			})
			return published, err
		}
		published++
	}

	if published > 0 {
		r.logger.Debug("Settlement events published", map[string]any{"count": published})
	}
	return published, nil
}
