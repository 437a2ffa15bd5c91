package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"bankmetrics/internal/domain"
	"bankmetrics/internal/metrics"
	"bankmetrics/internal/port"
)

const sideEffectTimeout = 30 * time.Second

var errNoProcessor = errors.New("analysis service has no extraction pipeline configured")

// AnalysisService runs a batch end to end: planning, running, consolidating.
type AnalysisService interface {
	Analyze(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalysisReport, error)
	Consolidate(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalysisReport, error)
}

// AnalysisDeps wires the collaborators of the analysis service.
// Publisher, Runs, Notifier and Metrics are optional.
type AnalysisDeps struct {
	Planner      PlanBuilder
	Runner       BatchRunner
	Processor    port.ItemProcessor
	Consolidator Consolidator
	Publisher    port.ResultPublisher
	Runs         port.BatchRunRepository
	Notifier     port.BatchNotifier
	Metrics      *metrics.BatchMetrics
	WindowSize   int
	BatchTimeout time.Duration
	Progress     ProgressFunc
	Logger       *slog.Logger
}

type analysisService struct {
	deps   AnalysisDeps
	logger *slog.Logger
}

// NewAnalysisService creates an AnalysisService.
func NewAnalysisService(deps AnalysisDeps) AnalysisService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &analysisService{deps: deps, logger: logger.With("component", "analysis_service")}
}

// Analyze plans, extracts and consolidates. Only invalid input and batch-global failures
// are returned as errors; item failures are reported in the returned report.
// An empty plan still consolidates and yields RunStatusNoDocuments.
func (s *analysisService) Analyze(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalysisReport, error) {
	if s.deps.Processor == nil {
		return nil, errNoProcessor
	}
	started := time.Now().UTC()

	plan, err := s.deps.Planner.Build(ctx, req.Banks, req.Quarter)
	if err != nil {
		return nil, err
	}
	report := s.newReport(plan, req, started)
	s.logger.Info("batch started", "run_id", report.RunID, "quarter", plan.Quarter.String(),
		"planned", len(plan.Items), "skipped", len(plan.Skipped))

	runCtx := ctx
	if s.deps.BatchTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.deps.BatchTimeout)
		defer cancel()
	}
	results := s.deps.Runner.Run(runCtx, plan.Items, s.deps.Processor, s.deps.Progress)
	for i := range results {
		summary := results[i].Summary()
		report.Items = append(report.Items, summary)
		if summary.Status == domain.ItemStatusFailed {
			report.Failed++
		} else {
			report.Succeeded++
		}
	}

	// Per-bank files already written stay valid when the batch was cancelled.
	consolidated, path, err := s.deps.Consolidator.Consolidate(context.WithoutCancel(ctx), plan.Quarter, plan.Items)
	if err != nil {
		return nil, err
	}
	s.finish(ctx, report, consolidated, path)
	return report, nil
}

// Consolidate rebuilds the consolidated result from per-bank files already on disk,
// without running extraction.
func (s *analysisService) Consolidate(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalysisReport, error) {
	started := time.Now().UTC()

	plan, err := s.deps.Planner.Build(ctx, req.Banks, req.Quarter)
	if err != nil {
		return nil, err
	}
	report := s.newReport(plan, req, started)

	consolidated, path, err := s.deps.Consolidator.Consolidate(ctx, plan.Quarter, plan.Items)
	if err != nil {
		return nil, err
	}
	report.Succeeded = consolidated.Len()
	report.Failed = len(plan.Items) - consolidated.Len()
	s.finish(ctx, report, consolidated, path)
	return report, nil
}

func (s *analysisService) newReport(plan *domain.Plan, req domain.AnalyzeRequest, started time.Time) *domain.AnalysisReport {
	window, err := domain.PastQuarters(plan.Quarter, s.deps.WindowSize)
	if err != nil {
		window = []domain.Quarter{plan.Quarter}
	}
	return &domain.AnalysisReport{
		RunID:          uuid.New(),
		Quarter:        plan.Quarter,
		Window:         window,
		RequestedBanks: req.Banks,
		Planned:        len(plan.Items),
		Skipped:        plan.Skipped,
		Items:          []domain.ItemSummary{},
		StartedAt:      started,
	}
}

func (s *analysisService) finish(ctx context.Context, report *domain.AnalysisReport, consolidated *domain.ConsolidatedResult, path string) {
	report.Consolidated = consolidated
	report.ConsolidatedPath = path
	report.Status = RunStatus(report.Planned, report.Failed, consolidated.Len())
	report.FinishedAt = time.Now().UTC()

	s.logger.Info("batch finished", "run_id", report.RunID, "quarter", report.Quarter.String(),
		"status", report.Status, "succeeded", report.Succeeded, "failed", report.Failed,
		"consolidated", consolidated.Len(), "path", path)

	s.sideEffects(context.WithoutCancel(ctx), report)
}

// RunStatus derives the batch outcome from planned, failed and consolidated counts.
func RunStatus(planned, failed, consolidated int) domain.RunStatus {
	switch {
	case planned == 0:
		return domain.RunStatusNoDocuments
	case consolidated == 0:
		return domain.RunStatusFailed
	case failed == 0 && consolidated == planned:
		return domain.RunStatusComplete
	default:
		return domain.RunStatusPartial
	}
}

// sideEffects publishes, records and announces the run. Failures are logged only.
func (s *analysisService) sideEffects(ctx context.Context, report *domain.AnalysisReport) {
	ctx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()

	if s.deps.Publisher != nil && report.Consolidated != nil {
		body, err := json.MarshalIndent(report.Consolidated, "", "  ")
		if err == nil {
			report.PublishedURI, err = s.deps.Publisher.Publish(ctx, report.Quarter.String(), body)
		}
		if err != nil {
			s.logger.Error("publishing consolidated result failed", "run_id", report.RunID, "error", err)
		}
	}

	if s.deps.Runs != nil {
		run, items := ledgerRecords(report)
		if err := s.deps.Runs.Create(ctx, run, items); err != nil {
			s.logger.Error("recording batch run failed", "run_id", report.RunID, "error", err)
		}
	}

	if s.deps.Notifier != nil {
		if err := s.deps.Notifier.NotifyBatchCompleted(ctx, report); err != nil {
			s.logger.Error("batch notification failed", "run_id", report.RunID, "error", err)
		}
	}

	s.deps.Metrics.ObserveRun(report)
}

func ledgerRecords(report *domain.AnalysisReport) (*domain.BatchRun, []domain.BatchRunItem) {
	run := &domain.BatchRun{
		ID:               report.RunID,
		Quarter:          report.Quarter.String(),
		Banks:            strings.Join(report.RequestedBanks, ","),
		Status:           report.Status,
		Planned:          report.Planned,
		Succeeded:        report.Succeeded,
		Failed:           report.Failed,
		Skipped:          len(report.Skipped),
		ConsolidatedPath: report.ConsolidatedPath,
		StartedAt:        report.StartedAt,
		FinishedAt:       report.FinishedAt,
	}
	items := make([]domain.BatchRunItem, 0, len(report.Items))
	for _, it := range report.Items {
		items = append(items, domain.BatchRunItem{
			RunID:      report.RunID,
			Bank:       it.Bank,
			Status:     it.Status,
			Error:      it.Error,
			OutputPath: it.OutputPath,
			DurationMs: it.DurationMs,
		})
	}
	return run, items
}
