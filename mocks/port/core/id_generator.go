package core

import "github.com/stretchr/testify/mock"

// MockIDGenerator is a mock implementation of core.IDGenerator
type MockIDGenerator struct {
	mock.Mock
}

// NewMockIDGenerator creates a MockIDGenerator that asserts its expectations on cleanup
func NewMockIDGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockIDGenerator {
	m := &MockIDGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockIDGenerator) NewTransactionID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIDGenerator) NewEventID() string {
	args := m.Called()
	return args.String(0)
}
