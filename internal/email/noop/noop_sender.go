package noop

import (
	"context"
	"log/slog"

	"bankmetrics/internal/domain"
	"bankmetrics/internal/email"
	"bankmetrics/internal/port"
)

type noopNotifier struct {
	logger *slog.Logger
}

// NewNoopNotifier creates a BatchNotifier that only logs the summary subject.
func NewNoopNotifier(logger *slog.Logger) port.BatchNotifier {
	return &noopNotifier{logger: logger.With("component", "notifier")}
}

func (n *noopNotifier) NotifyBatchCompleted(_ context.Context, report *domain.AnalysisReport) error {
	msg := email.BuildBatchSummary(report)
	n.logger.Info("[NOOP EMAIL] batch completed", "subject", msg.Subject, "run_id", report.RunID)
	return nil
}
