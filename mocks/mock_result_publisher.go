package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockResultPublisher is a mock implementation of port.ResultPublisher.
type MockResultPublisher struct {
	mock.Mock
}

func (m *MockResultPublisher) Publish(ctx context.Context, quarter string, body []byte) (string, error) {
	args := m.Called(ctx, quarter, body)
	return args.String(0), args.Error(1)
}
