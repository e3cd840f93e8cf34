package event

import (
	"context"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

// MockPublisher is a mock implementation of event.Publisher
type MockPublisher struct {
	mock.Mock
}

// NewMockPublisher creates a MockPublisher that asserts its expectations on cleanup
func NewMockPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPublisher {
	m := &MockPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPublisher) Publish(ctx context.Context, event *entity.SettlementEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
