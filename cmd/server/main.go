package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bankmetrics/internal/app"
	"bankmetrics/internal/config"
	"bankmetrics/internal/handler"
	"bankmetrics/internal/logging"
	"bankmetrics/internal/router"

	// Register extractor and interpreter providers.
	_ "bankmetrics/internal/extractor/azure"
	_ "bankmetrics/internal/interpreter/claude"
	_ "bankmetrics/internal/interpreter/gemini"
	_ "bankmetrics/internal/interpreter/openai"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.Setup(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger, app.Options{Extraction: true})
	if err != nil {
		return err
	}
	defer a.Close()

	// Initialize handlers
	analysisH := handler.NewAnalysisHandler(a.Analysis)
	resultH := handler.NewResultHandler(a.Results, cfg.Workspace.WindowSize)
	healthH := handler.NewHealthHandler(a.FS, cfg.Workspace.RootDir, a.DB)

	// Setup router
	r := router.Setup(router.Options{
		AuthService:    a.Auth,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Gatherer:       a.Registry,
		Logger:         logger,
	}, analysisH, resultH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Server.Port, "environment", cfg.Server.Environment,
			"auth", a.Auth != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
