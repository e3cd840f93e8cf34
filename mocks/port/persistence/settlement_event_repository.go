package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockSettlementEventRepository is a mock implementation of persistence.SettlementEventRepository
type MockSettlementEventRepository struct {
	mock.Mock
}

// NewMockSettlementEventRepository creates a MockSettlementEventRepository that asserts its expectations on cleanup
func NewMockSettlementEventRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSettlementEventRepository {
	m := &MockSettlementEventRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSettlementEventRepository) Create(ctx context.Context, event *entity.SettlementEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockSettlementEventRepository) FindUnpublished(ctx context.Context, limit int) ([]*entity.SettlementEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.SettlementEvent), args.Error(1)
}

func (m *MockSettlementEventRepository) MarkPublished(ctx context.Context, eventID string, publishedAt time.Time) error {
	args := m.Called(ctx, eventID, publishedAt)
	return args.Error(0)
}
