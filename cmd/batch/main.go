// Command batch runs bank metrics extraction from the command line.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bankmetrics/internal/config"
	"bankmetrics/internal/logging"

	// Register extractor and interpreter providers.
	_ "bankmetrics/internal/extractor/azure"
	_ "bankmetrics/internal/interpreter/claude"
	_ "bankmetrics/internal/interpreter/gemini"
	_ "bankmetrics/internal/interpreter/openai"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
	logger   *slog.Logger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "batch",
		Short: "Extract quarterly metrics from bank earnings supplements",
		Long: `batch finds each bank's quarterly earnings supplement under the workspace root,
extracts its tables, asks a language model for the configured metrics and
consolidates every bank's result into one file per quarter.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $BANKMETRICS_CONFIG_FILE)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(runCmd())
	root.AddCommand(consolidateCmd())
	root.AddCommand(quartersCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(tokenCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	path := cfgFile
	if path == "" {
		path = os.Getenv("BANKMETRICS_CONFIG_FILE")
	}

	loaded, err := config.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
	}

	l, err := logging.Setup(loaded.Log.Level, loaded.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	cfg = loaded
	logger = l
	return nil
}
