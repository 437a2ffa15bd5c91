package port

import (
	"context"

	"bankmetrics/internal/domain"
)

// BatchNotifier tells operators that a batch finished.
type BatchNotifier interface {
	NotifyBatchCompleted(ctx context.Context, report *domain.AnalysisReport) error
}
