// =============================================================================
// Expense CSV Merger - Validate Command
// =============================================================================
//
// This file defines the 'validate' command. It reads every input file the
// merge would read and reports problems, without writing anything.
//
// CHECKS:
//   - Structure: every row has exactly six fields and valid quoting/UTF-8
//   - Content: dates are DD.MM.YYYY, amounts parse, categories are not empty
//
// Structural errors always fail the command. Content issues are warnings
// unless --strict is given.
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/expense-csv-merger/internal/merger"
	"github.com/ginjaninja78/expense-csv-merger/internal/validation"
)

// newValidateCmd creates the 'validate' command.
func newValidateCmd(opts *globalOptions) *cobra.Command {
	var strict bool

	c := &cobra.Command{
		Use:   "validate",
		Short: "Check the input files without merging them",
		Long: `Read every input file and report structural errors and suspicious values.

Example:
  merger validate --input-dir ./extratos
  merger validate --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			// Every file is checked, even after a failure.
			cfg.ContinueOnError = true

			out := cmd.OutOrStdout()
			m := merger.New(cfg, newLogger(cmd.ErrOrStderr(), cfg, opts))
			ds, files, err := m.Collect()
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(out, "No input files found.")
				return nil
			}

			var (
				issues []*validation.Issue
				failed int
				offset int
			)
			for _, fr := range files {
				for i := 0; i < fr.Records; i++ {
					issues = append(issues, validation.CheckRecord(fr.Path, i+1, ds.At(offset+i))...)
				}
				offset += fr.Records

				if fr.Err != nil {
					failed++
					fmt.Fprintf(out, "  ✗ %s: %v\n", filepath.Base(fr.Path), fr.Err)
					continue
				}
				fmt.Fprintf(out, "  ✓ %s (%d records)\n", filepath.Base(fr.Path), fr.Records)
			}

			fmt.Fprintln(out)
			fmt.Fprint(out, validation.FormatIssues(issues))
			fmt.Fprintln(out)

			if failed > 0 {
				return fmt.Errorf("validation failed: %d of %d file(s) cannot be merged", failed, len(files))
			}
			if strict && len(issues) > 0 {
				return fmt.Errorf("validation failed: %d issue(s) found", len(issues))
			}
			fmt.Fprintf(out, "All %d file(s) can be merged.\n", len(files))
			return nil
		},
	}

	c.Flags().BoolVar(&strict, "strict", false, "Treat content issues as errors")
	return c
}
