package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"bankmetrics/internal/app"
	"bankmetrics/internal/domain"
)

func runCmd() *cobra.Command {
	var (
		banks      []string
		quarter    string
		jsonOutput bool
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Extract and consolidate metrics for a quarter",
		Long: `Extract metrics for each listed bank that has an eligible document, then
consolidate every bank's result for the quarter.

Examples:
  batch run --banks BankA,BankB --quarter Q12025
  batch run --banks BankA --quarter "Q1'25" --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			var progress *batchProgress
			if !noProgress && !jsonOutput {
				progress = newBatchProgress(cmd.ErrOrStderr())
			}

			opts := app.Options{Extraction: true}
			if progress != nil {
				opts.Progress = progress.Update
			}
			a, err := app.New(cmd.Context(), cfg, logger, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Analysis.Analyze(cmd.Context(), domain.AnalyzeRequest{Banks: banks, Quarter: quarter})
			if err != nil {
				return err
			}
			if err := printReport(out, report, jsonOutput); err != nil {
				return err
			}
			return reportError(report)
		},
	}

	cmd.Flags().StringSliceVarP(&banks, "banks", "b", nil, "comma-separated bank names")
	cmd.Flags().StringVarP(&quarter, "quarter", "q", "", "quarter, e.g. Q12025 or Q1'25")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the full report as JSON")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
	_ = cmd.MarkFlagRequired("banks")
	_ = cmd.MarkFlagRequired("quarter")

	return cmd
}

// batchProgress renders runner progress. The bar is created on the first
// update, once the number of planned items is known.
type batchProgress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func newBatchProgress(w io.Writer) *batchProgress {
	return &batchProgress{w: w}
}

// Update is a service.ProgressFunc. The runner serializes calls.
func (p *batchProgress) Update(done, total int, result domain.ItemResult) {
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionShowCount(),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionOnCompletion(func() { _, _ = fmt.Fprintln(p.w) }),
		)
	}
	status := "ok"
	if result.Err != nil {
		status = "failed"
	}
	p.bar.Describe(fmt.Sprintf("%-20s %s", result.Item.Bank, status))
	_ = p.bar.Set(done)
}

func printReport(w io.Writer, report *domain.AnalysisReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(w, "Quarter:  %s\n", report.Quarter)
	fmt.Fprintf(w, "Status:   %s\n", report.Status)
	fmt.Fprintf(w, "Planned:  %d  succeeded: %d  failed: %d  skipped: %d\n",
		report.Planned, report.Succeeded, report.Failed, len(report.Skipped))
	for _, s := range report.Skipped {
		fmt.Fprintf(w, "  skipped  %-20s %s\n", s.Bank, s.Reason)
	}
	for _, it := range report.Items {
		line := fmt.Sprintf("  %-8s %-20s %6dms", it.Status, it.Bank, it.DurationMs)
		if it.Error != "" {
			line += "  " + it.Error
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	if report.ConsolidatedPath != "" {
		fmt.Fprintf(w, "Output:   %s\n", report.ConsolidatedPath)
	}
	if report.PublishedURI != "" {
		fmt.Fprintf(w, "Published: %s\n", report.PublishedURI)
	}
	return nil
}

// reportError turns runs without any usable output into a non-zero exit.
func reportError(report *domain.AnalysisReport) error {
	switch report.Status {
	case domain.RunStatusNoDocuments:
		return domain.ErrNoEligibleDocuments
	case domain.RunStatusFailed:
		return errors.New("no bank produced metrics")
	default:
		return nil
	}
}
