package persistence

import (
	"context"
	"time"
)

// ReleaseFunc gives a held lock back
type ReleaseFunc func(ctx context.Context) error

// ConfirmationLocker guards a pending transaction so only one confirmation
// talks to the provider at a time. Locks expire after ttl even if never released.
type ConfirmationLocker interface {
	// Acquire returns acquired=false without error when another holder owns the lock
	//
	// Possible errors:
	// - ErrDatabaseConnection: If the lock store cannot be reached
	Acquire(ctx context.Context, transactionID string, ttl time.Duration) (release ReleaseFunc, acquired bool, err error)
}
