package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bankmetrics/internal/domain"
)

// MockAnalysisService is a mock implementation of service.AnalysisService.
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Analyze(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalysisReport, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisReport), args.Error(1)
}

func (m *MockAnalysisService) Consolidate(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalysisReport, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisReport), args.Error(1)
}
