package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bankmetrics/internal/app"
)

func exportCmd() *cobra.Command {
	var (
		format string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "export QUARTER",
		Short: "Render the consolidated result of QUARTER as xlsx or csv tables",
		Example: `  batch export Q12025
  batch export Q12025 --format csv --out reports/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context(), cfg, logger, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			file, err := a.Results.Export(cmd.Context(), args[0], format)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			path := filepath.Join(outDir, file.Filename)
			if err := os.WriteFile(path, file.Body, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "xlsx", "export format (xlsx, csv)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}
