package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"bankmetrics/internal/domain"
	"bankmetrics/internal/extractor"
	"bankmetrics/internal/port"
	"bankmetrics/internal/prompt"
	"bankmetrics/internal/provider"
	"bankmetrics/internal/workspace"
)

const (
	defaultRetryBaseDelay = 2 * time.Second
	defaultMaxRetryDelay  = 2 * time.Minute
)

// PipelineConfig holds settings for the extraction pipeline.
type PipelineConfig struct {
	WindowSize         int
	ExtractorRetries   int
	InterpreterRetries int
	RetryBaseDelay     time.Duration
	MaxRetryDelay      time.Duration
}

// ExtractionPipeline turns one bank's document into a metrics file:
// prompts, layout extraction, interpretation, parsing and an atomic write.
// It implements port.ItemProcessor.
type ExtractionPipeline struct {
	fs          afero.Fs
	prompts     *prompt.Loader
	extractor   port.DocumentExtractor
	interpreter port.Interpreter
	cfg         PipelineConfig
	logger      *slog.Logger
}

// NewExtractionPipeline creates an ExtractionPipeline.
func NewExtractionPipeline(fsys afero.Fs, ext port.DocumentExtractor, interp port.Interpreter, cfg PipelineConfig, logger *slog.Logger) *ExtractionPipeline {
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = defaultRetryBaseDelay
	}
	if cfg.MaxRetryDelay <= 0 {
		cfg.MaxRetryDelay = defaultMaxRetryDelay
	}
	return &ExtractionPipeline{
		fs:          fsys,
		prompts:     prompt.NewLoader(fsys),
		extractor:   ext,
		interpreter: interp,
		cfg:         cfg,
		logger:      logger.With("component", "extraction_pipeline"),
	}
}

// Process runs the pipeline for item and writes the result to item.OutputPath.
// A completion that is not a JSON object is kept as raw output and still counts as success.
func (p *ExtractionPipeline) Process(ctx context.Context, item domain.WorkItem) (*domain.BankMetrics, error) {
	window, err := domain.PastQuarters(item.Quarter, p.cfg.WindowSize)
	if err != nil {
		return nil, err
	}

	userPrompt, err := p.prompts.Load(item.UserPromptPath)
	if err != nil {
		return nil, err
	}
	systemTemplate, err := p.prompts.Load(item.SystemPromptPath)
	if err != nil {
		return nil, err
	}
	systemPrompt := prompt.RenderSystemPrompt(systemTemplate, window)

	fileBytes, err := afero.ReadFile(p.fs, item.InputDocumentPath)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", item.InputDocumentPath, err)
	}
	contentType, ok := domain.AllowedContentTypes[strings.ToLower(filepath.Ext(item.InputDocumentPath))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, item.InputDocumentPath)
	}

	log := p.logger.With("bank", item.Bank, "quarter", item.Quarter.String())

	var extracted *port.ExtractOutput
	err = retryExternal(ctx, p.cfg.ExtractorRetries, p.cfg.RetryBaseDelay, p.cfg.MaxRetryDelay, log, func() error {
		var callErr error
		extracted, callErr = p.extractor.Extract(ctx, port.ExtractInput{FileBytes: fileBytes, ContentType: contentType})
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: layout extraction: %w", domain.ErrExternalService, err)
	}
	log.Debug("layout extracted", "tables", len(extracted.Tables), "model", extracted.ModelUsed)

	input := port.CompletionInput{
		SystemPrompt: systemPrompt,
		UserPrompt:   prompt.BuildUserMessage(userPrompt, extractor.TablesToMarkdown(extracted.Tables)),
	}
	var completion *port.CompletionOutput
	err = retryExternal(ctx, p.cfg.InterpreterRetries, p.cfg.RetryBaseDelay, p.cfg.MaxRetryDelay, log, func() error {
		var callErr error
		completion, callErr = p.interpreter.Complete(ctx, input)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: interpretation: %w", domain.ErrExternalService, err)
	}

	metrics := ParseCompletion(completion.Text)
	if metrics.Degraded() {
		log.Warn("completion was not a JSON object, keeping raw output", "model", completion.ModelUsed)
	}

	body, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding metrics for %s: %w", item.Bank, err)
	}
	if err := workspace.WriteFileAtomic(p.fs, item.OutputPath, body); err != nil {
		return nil, err
	}
	log.Info("metrics written", "path", item.OutputPath, "model", completion.ModelUsed)
	return metrics, nil
}

// ParseCompletion decodes a model completion, tolerating a surrounding markdown code fence.
// Anything that is not a JSON object is preserved under the raw output key.
func ParseCompletion(text string) *domain.BankMetrics {
	metrics, err := domain.ParseBankMetrics([]byte(stripCodeFence(text)))
	if err != nil {
		return domain.RawBankMetrics(text)
	}
	return metrics
}

func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// retryExternal calls fn up to maxRetries+1 times with exponential backoff.
// A provider rate limit waits for its RetryAfter instead. Context errors are not retried.
func retryExternal(ctx context.Context, maxRetries int, base, maxDelay time.Duration, log *slog.Logger, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if attempt >= maxRetries {
			return err
		}

		delay := base << attempt
		var rlErr *provider.RateLimitError
		if errors.As(err, &rlErr) && rlErr.RetryAfter > 0 {
			delay = rlErr.RetryAfter
		}
		if delay > maxDelay {
			delay = maxDelay
		}
		log.Warn("external call failed, retrying", "attempt", attempt+1, "max_retries", maxRetries, "delay", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}
