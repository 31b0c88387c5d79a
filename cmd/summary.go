// =============================================================================
// Expense CSV Merger - Summary Command
// =============================================================================
//
// This file defines the 'summary' command, which reads the input files the
// way the merge does and prints the record count and amount total per
// category. Nothing is written.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/expense-csv-merger/internal/merger"
	"github.com/ginjaninja78/expense-csv-merger/internal/summary"
)

// newSummaryCmd creates the 'summary' command.
func newSummaryCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print totals per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ds, files, err := merger.New(cfg, newLogger(cmd.ErrOrStderr(), cfg, opts)).Collect()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d file(s), %d record(s)\n\n", len(files), ds.Len())
			summary.Build(ds).Print(out)
			return nil
		},
	}
}
