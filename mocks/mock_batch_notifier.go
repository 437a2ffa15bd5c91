package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bankmetrics/internal/domain"
)

// MockBatchNotifier is a mock implementation of port.BatchNotifier.
type MockBatchNotifier struct {
	mock.Mock
}

func (m *MockBatchNotifier) NotifyBatchCompleted(ctx context.Context, report *domain.AnalysisReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}
