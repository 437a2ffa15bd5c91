package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"bankmetrics/internal/domain"
)

// MockBatchRunRepo is a mock implementation of port.BatchRunRepository.
type MockBatchRunRepo struct {
	mock.Mock
}

func (m *MockBatchRunRepo) Create(ctx context.Context, run *domain.BatchRun, items []domain.BatchRunItem) error {
	args := m.Called(ctx, run, items)
	return args.Error(0)
}

func (m *MockBatchRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.BatchRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchRun), args.Error(1)
}

func (m *MockBatchRunRepo) ListByQuarter(ctx context.Context, quarter string, offset, limit int) ([]domain.BatchRun, int, error) {
	args := m.Called(ctx, quarter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.BatchRun), args.Int(1), args.Error(2)
}

func (m *MockBatchRunRepo) ListItems(ctx context.Context, runID uuid.UUID) ([]domain.BatchRunItem, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BatchRunItem), args.Error(1)
}
