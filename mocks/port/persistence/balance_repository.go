package persistence

import (
	"context"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockBalanceRepository is a mock implementation of persistence.BalanceRepository
type MockBalanceRepository struct {
	mock.Mock
}

// NewMockBalanceRepository creates a MockBalanceRepository that asserts its expectations on cleanup
func NewMockBalanceRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockBalanceRepository {
	m := &MockBalanceRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockBalanceRepository) GetBalance(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceRepository) TryDebit(ctx context.Context, userID string, amount int64) (entity.DebitResult, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(entity.DebitResult), args.Error(1)
}

func (m *MockBalanceRepository) Credit(ctx context.Context, userID string, amount int64) (int64, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(int64), args.Error(1)
}
