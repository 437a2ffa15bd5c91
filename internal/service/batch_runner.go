package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"bankmetrics/internal/domain"
	"bankmetrics/internal/metrics"
	"bankmetrics/internal/port"
)

// RunnerConfig holds settings for the batch runner.
type RunnerConfig struct {
	// Concurrency bounds in-flight items. 1 processes items sequentially.
	Concurrency int
	// RequestsPerMinute caps item admissions. 0 disables the limiter.
	RequestsPerMinute int
	// ItemTimeout bounds a single item. 0 means no per-item timeout.
	ItemTimeout time.Duration
}

// ProgressFunc is called once per finished item. Calls are serialized.
type ProgressFunc func(done, total int, result domain.ItemResult)

// BatchRunner drives a processor over every work item of a plan.
type BatchRunner interface {
	Run(ctx context.Context, items []domain.WorkItem, processor port.ItemProcessor, progress ProgressFunc) []domain.ItemResult
}

type batchRunner struct {
	cfg     RunnerConfig
	metrics *metrics.BatchMetrics
	logger  *slog.Logger
}

// NewBatchRunner creates a BatchRunner. m may be nil.
func NewBatchRunner(cfg RunnerConfig, m *metrics.BatchMetrics, logger *slog.Logger) BatchRunner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &batchRunner{cfg: cfg, metrics: m, logger: logger.With("component", "batch_runner")}
}

// Run processes every item exactly once and returns results in input order.
// Item failures, panics included, are captured in ItemResult.Err and never stop the batch.
// Items not started when ctx is done are reported as failed with the context error.
func (r *batchRunner) Run(ctx context.Context, items []domain.WorkItem, processor port.ItemProcessor, progress ProgressFunc) []domain.ItemResult {
	results := make([]domain.ItemResult, len(items))
	limiter := r.newLimiter()

	var (
		mu   sync.Mutex
		done int
	)
	advance := func(i int) {
		if progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done++
		progress(done, len(items), results[i])
	}

	var g errgroup.Group
	g.SetLimit(r.cfg.Concurrency)
	for i := range items {
		if err := ctx.Err(); err != nil {
			results[i] = domain.ItemResult{Item: items[i], Err: err}
			r.logger.Warn("item not started", "bank", items[i].Bank, "error", err)
			advance(i)
			continue
		}
		g.Go(func() error {
			results[i] = r.runItem(ctx, limiter, items[i], processor)
			advance(i)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *batchRunner) newLimiter() *rate.Limiter {
	if r.cfg.RequestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(r.cfg.RequestsPerMinute)), 1)
}

func (r *batchRunner) runItem(ctx context.Context, limiter *rate.Limiter, item domain.WorkItem, processor port.ItemProcessor) (res domain.ItemResult) {
	res.Item = item
	log := r.logger.With("bank", item.Bank, "quarter", item.Quarter.String())

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	if err := limiter.Wait(ctx); err != nil {
		res.Err = fmt.Errorf("waiting for rate limiter: %w", err)
		return res
	}

	itemCtx := ctx
	if r.cfg.ItemTimeout > 0 {
		var cancel context.CancelFunc
		itemCtx, cancel = context.WithTimeout(ctx, r.cfg.ItemTimeout)
		defer cancel()
	}

	start := time.Now()
	r.metrics.ItemStarted()
	defer func() {
		if p := recover(); p != nil {
			res.Metrics = nil
			res.Err = fmt.Errorf("panic processing %s: %v", item.Bank, p)
			log.Error("item panicked", "panic", p, "stack", string(debug.Stack()))
		}
		res.Duration = time.Since(start)
		summary := res.Summary()
		r.metrics.ObserveItem(summary.Status, res.Duration)
		if res.Err != nil {
			log.Error("item failed", "error", res.Err, "duration", res.Duration)
			return
		}
		log.Info("item finished", "status", summary.Status, "duration", res.Duration)
	}()

	log.Info("item started", "document", item.InputDocumentPath)
	res.Metrics, res.Err = processor.Process(itemCtx, item)
	if res.Err == nil && res.Metrics != nil {
		res.Degraded = res.Metrics.Degraded()
	}
	return res
}
