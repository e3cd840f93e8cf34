package usecase

import (
	"context"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/usecase"
	"github.com/stretchr/testify/mock"
)

// MockPurchaseUseCase is a mock implementation of usecase.PurchaseUseCase
type MockPurchaseUseCase struct {
	mock.Mock
}

// NewMockPurchaseUseCase creates a MockPurchaseUseCase that asserts its expectations on cleanup
func NewMockPurchaseUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPurchaseUseCase {
	m := &MockPurchaseUseCase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPurchaseUseCase) CreateTransaction(ctx context.Context, req usecase.CreatePurchaseRequest) (*usecase.PurchaseResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.PurchaseResult), args.Error(1)
}

func (m *MockPurchaseUseCase) ConfirmTransaction(ctx context.Context, transactionID string) (*usecase.PurchaseResult, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.PurchaseResult), args.Error(1)
}

func (m *MockPurchaseUseCase) GetTransaction(ctx context.Context, transactionID string, userID string) (*entity.Transaction, error) {
	args := m.Called(ctx, transactionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Transaction), args.Error(1)
}

func (m *MockPurchaseUseCase) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*entity.Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Transaction), args.Error(1)
}
