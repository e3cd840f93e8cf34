package gateway

import (
	"context"

	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/gateway"
	"github.com/stretchr/testify/mock"
)

// MockFulfillmentGateway is a mock implementation of gateway.FulfillmentGateway
type MockFulfillmentGateway struct {
	mock.Mock
}

// NewMockFulfillmentGateway creates a MockFulfillmentGateway that asserts its expectations on cleanup
func NewMockFulfillmentGateway(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockFulfillmentGateway {
	m := &MockFulfillmentGateway{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockFulfillmentGateway) PlaceOrder(ctx context.Context, req gateway.OrderRequest) (gateway.OrderResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(gateway.OrderResult), args.Error(1)
}
