package ledger

import (
	"strings"

	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/usecase"
)

var _ usecase.LedgerUseCase = (*Ledger)(nil)

// Ledger owns user balances. It never reads and writes a balance in two steps;
// every mutation is delegated to a single conditional statement of the repository.
type Ledger struct {
	uow     persistence.UnitOfWork
	metrics coreport.MetricsRecorder
	logger  coreport.Logger
}

// NewLedger creates a new Ledger
func NewLedger(
	uow persistence.UnitOfWork,
	metrics coreport.MetricsRecorder,
	logger coreport.Logger,
) *Ledger {
	return &Ledger{
		uow:     uow,
		metrics: metrics,
		logger:  logger,
	}
}

func validateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return errs.ErrInvalidUserID
	}
	return nil
}
