package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"bankmetrics/internal/domain"
	"bankmetrics/internal/report"
	"bankmetrics/internal/service"
)

// MockResultService is a mock implementation of service.ResultService.
type MockResultService struct {
	mock.Mock
}

func (m *MockResultService) Get(ctx context.Context, quarter string) (*domain.ConsolidatedResult, error) {
	args := m.Called(ctx, quarter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConsolidatedResult), args.Error(1)
}

func (m *MockResultService) Tables(ctx context.Context, quarter string) ([]*report.Table, error) {
	args := m.Called(ctx, quarter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*report.Table), args.Error(1)
}

func (m *MockResultService) Export(ctx context.Context, quarter, format string) (*service.ExportFile, error) {
	args := m.Called(ctx, quarter, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportFile), args.Error(1)
}

func (m *MockResultService) Window(quarter string, count int) ([]string, error) {
	args := m.Called(quarter, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockResultService) ListRuns(ctx context.Context, quarter string, offset, limit int) ([]domain.BatchRun, int, error) {
	args := m.Called(ctx, quarter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.BatchRun), args.Int(1), args.Error(2)
}

func (m *MockResultService) GetRun(ctx context.Context, id uuid.UUID) (*domain.BatchRun, []domain.BatchRunItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	items, _ := args.Get(1).([]domain.BatchRunItem)
	return args.Get(0).(*domain.BatchRun), items, args.Error(2)
}
