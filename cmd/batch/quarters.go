package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bankmetrics/internal/domain"
)

func quartersCmd() *cobra.Command {
	var (
		count int
		short bool
	)

	cmd := &cobra.Command{
		Use:   "quarters QUARTER",
		Short: "Print the window of quarters ending at QUARTER",
		Example: `  batch quarters Q12025
  batch quarters "Q1'25" --count 3 --short`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("count") {
				count = cfg.Workspace.WindowSize
			}
			latest, err := domain.ParseQuarter(args[0])
			if err != nil {
				return err
			}
			window, err := domain.PastQuarters(latest, count)
			if err != nil {
				return err
			}

			labels := make([]string, len(window))
			for i, q := range window {
				if short {
					labels[i] = q.Short()
				} else {
					labels[i] = q.String()
				}
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(labels, " "))
			return err
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 5, "number of quarters (default: workspace.window_size)")
	cmd.Flags().BoolVar(&short, "short", false, "print labels as Q1'25")
	return cmd
}
