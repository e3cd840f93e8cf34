package usecase

import (
	"context"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockLedgerUseCase is a mock implementation of usecase.LedgerUseCase
type MockLedgerUseCase struct {
	mock.Mock
}

// NewMockLedgerUseCase creates a MockLedgerUseCase that asserts its expectations on cleanup
func NewMockLedgerUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockLedgerUseCase {
	m := &MockLedgerUseCase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockLedgerUseCase) GetBalance(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerUseCase) TryDebit(ctx context.Context, userID string, amount int64) (entity.DebitResult, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(entity.DebitResult), args.Error(1)
}

func (m *MockLedgerUseCase) Credit(ctx context.Context, userID string, amount int64) (int64, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(int64), args.Error(1)
}
