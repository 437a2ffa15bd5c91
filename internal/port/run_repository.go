package port

import (
	"context"

	"github.com/google/uuid"

	"bankmetrics/internal/domain"
)

// BatchRunRepository persists the ledger of batch invocations.
type BatchRunRepository interface {
	Create(ctx context.Context, run *domain.BatchRun, items []domain.BatchRunItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BatchRun, error)
	ListByQuarter(ctx context.Context, quarter string, offset, limit int) ([]domain.BatchRun, int, error)
	ListItems(ctx context.Context, runID uuid.UUID) ([]domain.BatchRunItem, error)
}
