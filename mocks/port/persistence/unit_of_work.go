package persistence

import (
	"context"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/persistence"
	"github.com/stretchr/testify/mock"
)

// MockUnitOfWork is a mock implementation of persistence.UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

// NewMockUnitOfWork creates a MockUnitOfWork that asserts its expectations on cleanup
func NewMockUnitOfWork(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUnitOfWork {
	m := &MockUnitOfWork{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return ctx, args.Error(1)
	}
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *MockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) GetBalanceRepository(ctx context.Context) persistence.BalanceRepository {
	args := m.Called(ctx)
	return args.Get(0).(persistence.BalanceRepository)
}

func (m *MockUnitOfWork) GetTransactionRepository(ctx context.Context) persistence.TransactionRepository {
	args := m.Called(ctx)
	return args.Get(0).(persistence.TransactionRepository)
}

func (m *MockUnitOfWork) GetSettlementEventRepository(ctx context.Context) persistence.SettlementEventRepository {
	args := m.Called(ctx)
	return args.Get(0).(persistence.SettlementEventRepository)
}

func (m *MockUnitOfWork) GetCatalogRepository(ctx context.Context) persistence.CatalogRepository {
	args := m.Called(ctx)
	return args.Get(0).(persistence.CatalogRepository)
}
