package memory

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/persistence"
	"github.com/google/uuid"
)

type lockEntry struct {
	token     string
	expiresAt time.Time
}

var _ persistence.ConfirmationLocker = (*Store)(nil)

// Acquire takes the confirmation lock of a transaction unless a live holder owns it
func (s *Store) Acquire(ctx context.Context, transactionID string, ttl time.Duration) (persistence.ReleaseFunc, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	now := s.timeProvider.Now()
	if held, ok := s.locks[transactionID]; ok && held.expiresAt.After(now) {
		return nil, false, nil
	}

	token := uuid.NewString()
	s.locks[transactionID] = lockEntry{token: token, expiresAt: now.Add(ttl)}

	release := func(context.Context) error {
		s.locksMu.Lock()
		defer s.locksMu.Unlock()
		// an expired lock may have been taken over; only the owner removes it
		if held, ok := s.locks[transactionID]; ok && held.token == token {
			delete(s.locks, transactionID)
		}
		return nil
	}
	return release, true, nil
}
