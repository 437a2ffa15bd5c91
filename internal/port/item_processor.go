package port

import (
	"context"

	"bankmetrics/internal/domain"
)

// ItemProcessor runs the per-bank unit of work for one work item.
type ItemProcessor interface {
	Process(ctx context.Context, item domain.WorkItem) (*domain.BankMetrics, error)
}
