package main

import (
	"github.com/spf13/cobra"

	"bankmetrics/internal/app"
	"bankmetrics/internal/domain"
)

func consolidateCmd() *cobra.Command {
	var (
		banks      []string
		quarter    string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Rebuild the consolidated result from per-bank files",
		Long: `Rebuild the consolidated result for a quarter from the per-bank metric files
already on disk, without calling the extraction services.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.New(cmd.Context(), cfg, logger, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Analysis.Consolidate(cmd.Context(), domain.AnalyzeRequest{Banks: banks, Quarter: quarter})
			if err != nil {
				return err
			}
			if err := printReport(cmd.OutOrStdout(), report, jsonOutput); err != nil {
				return err
			}
			return reportError(report)
		},
	}

	cmd.Flags().StringSliceVarP(&banks, "banks", "b", nil, "comma-separated bank names")
	cmd.Flags().StringVarP(&quarter, "quarter", "q", "", "quarter, e.g. Q12025 or Q1'25")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the full report as JSON")
	_ = cmd.MarkFlagRequired("banks")
	_ = cmd.MarkFlagRequired("quarter")

	return cmd
}
