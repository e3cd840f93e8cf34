package persistence

import (
	"context"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockCatalogRepository is a mock implementation of persistence.CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

// NewMockCatalogRepository creates a MockCatalogRepository that asserts its expectations on cleanup
func NewMockCatalogRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCatalogRepository {
	m := &MockCatalogRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCatalogRepository) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockCatalogRepository) GetPackage(ctx context.Context, id string) (*entity.Package, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Package), args.Error(1)
}

func (m *MockCatalogRepository) GetPaymentMethod(ctx context.Context, id string) (*entity.PaymentMethod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PaymentMethod), args.Error(1)
}

func (m *MockCatalogRepository) SaveProduct(ctx context.Context, product *entity.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockCatalogRepository) SavePackage(ctx context.Context, pkg *entity.Package) error {
	args := m.Called(ctx, pkg)
	return args.Error(0)
}

func (m *MockCatalogRepository) SavePaymentMethod(ctx context.Context, method *entity.PaymentMethod) error {
	args := m.Called(ctx, method)
	return args.Error(0)
}
