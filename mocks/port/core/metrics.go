package core

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MockMetricsRecorder is a mock implementation of core.MetricsRecorder
type MockMetricsRecorder struct {
	mock.Mock
}

// NewMockMetricsRecorder creates a MockMetricsRecorder that asserts its expectations on cleanup
func NewMockMetricsRecorder(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockMetricsRecorder {
	m := &MockMetricsRecorder{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// AllowAll accepts any observation without further setup
func (m *MockMetricsRecorder) AllowAll() *MockMetricsRecorder {
	m.On("ObserveTransaction", mock.Anything, mock.Anything).Return().Maybe()
	m.On("ObserveLedgerOperation", mock.Anything, mock.Anything).Return().Maybe()
	m.On("ObserveGatewayCall", mock.Anything, mock.Anything).Return().Maybe()
	m.On("ObserveSettlementPublish", mock.Anything).Return().Maybe()
	return m
}

func (m *MockMetricsRecorder) ObserveTransaction(flow string, outcome string) {
	m.Called(flow, outcome)
}

func (m *MockMetricsRecorder) ObserveLedgerOperation(operation string, result string) {
	m.Called(operation, result)
}

func (m *MockMetricsRecorder) ObserveGatewayCall(result string, duration time.Duration) {
	m.Called(result, duration)
}

func (m *MockMetricsRecorder) ObserveSettlementPublish(result string) {
	m.Called(result)
}
