package usecase

import (
	"context"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
)

// LedgerUseCase is the balance ledger. Calls made with a transactional
// context join the surrounding unit of work.
type LedgerUseCase interface {
	GetBalance(ctx context.Context, userID string) (int64, error)
	TryDebit(ctx context.Context, userID string, amount int64) (entity.DebitResult, error)
	Credit(ctx context.Context, userID string, amount int64) (int64, error)
}
