package purchase

import (
	"context"
	"time"

	coreport "github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/gateway"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/usecase"
)

var _ usecase.PurchaseUseCase = (*Service)(nil)

const (
	defaultGatewayTimeout = 10 * time.Second
	defaultLockTTL        = 30 * time.Second
)

// Options tunes the state machine
type Options struct {
	// GatewayTimeout bounds every provider call
	GatewayTimeout time.Duration
	// LockTTL is how long a confirmation may hold its transaction
	LockTTL time.Duration
}

// Service drives purchase transactions from creation to a terminal status.
// Direct purchases start in success; confirmable purchases start in pending
// and are finalized by ConfirmTransaction.
type Service struct {
	uow          persistence.UnitOfWork
	ledger       usecase.LedgerUseCase
	gateway      gateway.FulfillmentGateway
	locker       persistence.ConfirmationLocker
	ids          coreport.IDGenerator
	timeProvider coreport.TimeProvider
	metrics      coreport.MetricsRecorder
	logger       coreport.Logger
	opts         Options
}

// NewService creates a new purchase service
func NewService(
	uow persistence.UnitOfWork,
	ledger usecase.LedgerUseCase,
	fulfillment gateway.FulfillmentGateway,
	locker persistence.ConfirmationLocker,
	ids coreport.IDGenerator,
	timeProvider coreport.TimeProvider,
	metrics coreport.MetricsRecorder,
	logger coreport.Logger,
	opts Options,
) *Service {
	if opts.GatewayTimeout <= 0 {
		opts.GatewayTimeout = defaultGatewayTimeout
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultLockTTL
	}
	if opts.LockTTL < opts.GatewayTimeout {
		opts.LockTTL = 2 * opts.GatewayTimeout
	}

	return &Service{
		uow:          uow,
		ledger:       ledger,
		gateway:      fulfillment,
		locker:       locker,
		ids:          ids,
		timeProvider: timeProvider,
		metrics:      metrics,
		logger:       logger,
		opts:         opts,
	}
}

// rollback undoes a unit of work, logging rather than masking the original failure
func (s *Service) rollback(txCtx context.Context, transactionID string) {
	if err := s.uow.Rollback(txCtx); err != nil {
		s.logger.Error("Failed to rollback purchase", map[string]any{
			"transaction_id": transactionID,
			"error":          err.Error(),
		})
	}
}

func (s *Service) observe(flow string, result *usecase.PurchaseResult) {
	s.metrics.ObserveTransaction(flow, string(result.Outcome))
}
