package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bankmetrics/internal/domain"
)

// MockItemProcessor is a mock implementation of port.ItemProcessor.
type MockItemProcessor struct {
	mock.Mock
}

func (m *MockItemProcessor) Process(ctx context.Context, item domain.WorkItem) (*domain.BankMetrics, error) {
	args := m.Called(ctx, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankMetrics), args.Error(1)
}
