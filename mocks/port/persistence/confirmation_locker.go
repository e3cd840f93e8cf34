package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/persistence"
	"github.com/stretchr/testify/mock"
)

// MockConfirmationLocker is a mock implementation of persistence.ConfirmationLocker
type MockConfirmationLocker struct {
	mock.Mock
}

// NewMockConfirmationLocker creates a MockConfirmationLocker that asserts its expectations on cleanup
func NewMockConfirmationLocker(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockConfirmationLocker {
	m := &MockConfirmationLocker{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockConfirmationLocker) Acquire(ctx context.Context, transactionID string, ttl time.Duration) (persistence.ReleaseFunc, bool, error) {
	args := m.Called(ctx, transactionID, ttl)
	var release persistence.ReleaseFunc
	if fn, ok := args.Get(0).(persistence.ReleaseFunc); ok {
		release = fn
	} else if fn, ok := args.Get(0).(func(context.Context) error); ok {
		release = fn
	}
	return release, args.Bool(1), args.Error(2)
}
