// Package app wires configuration into the services shared by the HTTP server and the batch CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"

	"bankmetrics/internal/config"
	"bankmetrics/internal/email/noop"
	"bankmetrics/internal/email/ses"
	"bankmetrics/internal/extractor"
	"bankmetrics/internal/interpreter"
	"bankmetrics/internal/metrics"
	"bankmetrics/internal/port"
	"bankmetrics/internal/repository/postgres"
	"bankmetrics/internal/service"
	"bankmetrics/internal/storage"
	s3storage "bankmetrics/internal/storage/s3"
	"bankmetrics/internal/workspace"
)

// Options selects the optional parts of the wiring.
type Options struct {
	// Extraction builds the layout extractor and interpreter clients. Without it
	// Analyze is unavailable but consolidation, results and exports still work.
	Extraction bool
	// Progress receives per-item progress from the batch runner.
	Progress service.ProgressFunc
}

// App holds the wired services.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	FS       afero.Fs
	Layout   *workspace.Layout
	Registry *prometheus.Registry
	DB       *sqlx.DB

	Analysis service.AnalysisService
	Results  service.ResultService
	Auth     service.AuthService
}

// New builds an App on the OS filesystem.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	return NewWithFs(ctx, afero.NewOsFs(), cfg, logger, opts)
}

// NewWithFs builds an App on fsys. Callers must Close it.
func NewWithFs(ctx context.Context, fsys afero.Fs, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	a := &App{
		Config:   cfg,
		Logger:   logger,
		FS:       fsys,
		Layout:   workspace.NewLayout(cfg.Workspace),
		Registry: prometheus.NewRegistry(),
	}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	batchMetrics := metrics.New(a.Registry)

	var runs port.BatchRunRepository
	if cfg.DB.Enabled {
		db, err := postgres.NewDB(ctx, &cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		a.DB = db
		runs = postgres.NewBatchRunRepo(db)
	}

	publisher, err := newPublisher(ctx, &cfg.S3)
	if err != nil {
		a.Close()
		return nil, err
	}

	notifier, err := newNotifier(ctx, &cfg.Notify, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	var processor port.ItemProcessor
	if opts.Extraction {
		processor, err = newPipeline(fsys, cfg, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	locator := service.NewDocumentLocator(fsys, a.Layout, cfg.Workspace)
	planner := service.NewPlanBuilder(fsys, a.Layout, locator, workspace.NewDirEnsurer(fsys), logger)
	consolidator, err := service.NewConsolidator(fsys, a.Layout, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating consolidator: %w", err)
	}
	runner := service.NewBatchRunner(service.RunnerConfig{
		Concurrency:       cfg.Batch.Concurrency,
		RequestsPerMinute: cfg.Batch.RequestsPerMinute,
		ItemTimeout:       cfg.Batch.ItemTimeout(),
	}, batchMetrics, logger)

	a.Analysis = service.NewAnalysisService(service.AnalysisDeps{
		Planner:      planner,
		Runner:       runner,
		Processor:    processor,
		Consolidator: consolidator,
		Publisher:    publisher,
		Runs:         runs,
		Notifier:     notifier,
		Metrics:      batchMetrics,
		WindowSize:   cfg.Workspace.WindowSize,
		BatchTimeout: cfg.Batch.Timeout(),
		Progress:     opts.Progress,
		Logger:       logger,
	})
	a.Results = service.NewResultService(fsys, a.Layout, runs)
	if cfg.Auth.JWTSecret != "" {
		a.Auth = service.NewAuthService(cfg.Auth)
	}
	return a, nil
}

// Close releases the database connection, if any.
func (a *App) Close() {
	if a.DB == nil {
		return
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("closing database", "error", err)
	}
}

func newPipeline(fsys afero.Fs, cfg *config.Config, logger *slog.Logger) (*service.ExtractionPipeline, error) {
	ext, err := extractor.NewExtractor(&cfg.Extractor)
	if err != nil {
		return nil, fmt.Errorf("creating layout extractor: %w", err)
	}
	interp, err := interpreter.NewFromConfig(&cfg.Interpreter, logger)
	if err != nil {
		return nil, fmt.Errorf("creating interpreter: %w", err)
	}
	return service.NewExtractionPipeline(fsys, ext, interp, service.PipelineConfig{
		WindowSize:         cfg.Workspace.WindowSize,
		ExtractorRetries:   cfg.Extractor.MaxRetries,
		InterpreterRetries: cfg.Interpreter.PrimaryConfig().MaxRetries,
	}, logger), nil
}

// newPublisher returns nil when S3 mirroring is disabled.
func newPublisher(ctx context.Context, cfg *config.S3Config) (port.ResultPublisher, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	client, err := s3storage.NewS3Client(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating S3 client: %w", err)
	}
	return storage.NewResultPublisher(client, cfg.Bucket, cfg.Prefix, cfg.PresignExpiry), nil
}

func newNotifier(ctx context.Context, cfg *config.NotifyConfig, logger *slog.Logger) (port.BatchNotifier, error) {
	switch cfg.Provider {
	case "", "noop":
		return noop.NewNoopNotifier(logger), nil
	case "ses":
		n, err := ses.NewSESNotifier(ctx, cfg.Region, cfg.FromAddress, cfg.FromName, cfg.Recipients)
		if err != nil {
			return nil, fmt.Errorf("creating SES notifier: %w", err)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unknown notify provider: %s", cfg.Provider)
	}
}
