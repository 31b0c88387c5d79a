// =============================================================================
// Expense CSV Merger - Merge Command
// =============================================================================
//
// The merge runs when the root command is invoked without a subcommand.
//
// PROCESSING FLOW:
//   1. Load configuration (file, then flags)
//   2. Discover input files in the input directory
//   3. Ingest each file into one dataset, in listing order
//   4. Write the merged CSV (and the optional XLSX copy)
//   5. Print a summary
//
// EXIT CODES:
//   0 - Merge completed (skipped files are reported, not fatal)
//   1 - Configuration error, unreadable input directory, or aborted merge
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/expense-csv-merger/internal/config"
	"github.com/ginjaninja78/expense-csv-merger/internal/merger"
)

// =============================================================================
// COMMAND-LINE FLAGS
// =============================================================================

// mergeOptions holds the flags that only the merge uses.
type mergeOptions struct {
	output      string
	lineEnding  string
	xlsxOutput  string
	archiveDir  string
	byDate      bool
	errorLogDir string
	dryRun      bool
	partial     bool
}

// register adds the merge flags to the root command.
func (o *mergeOptions) register(c *cobra.Command) {
	f := c.Flags()
	f.StringVarP(&o.output, "output", "o", config.DefaultOutput, "Path of the merged CSV file")
	f.StringVar(&o.lineEnding, "line-ending", "native", "Record terminator: native, lf or crlf")
	f.StringVar(&o.xlsxOutput, "xlsx", "", "Also write the merged records to this XLSX workbook")
	f.StringVar(&o.archiveDir, "archive-dir", "", "Move merged input files here after a successful merge")
	f.BoolVar(&o.byDate, "archive-by-date", false, "Archive into YYYY/MM/DD subdirectories")
	f.StringVar(&o.errorLogDir, "error-log-dir", "", "Write a log of skipped files to this directory")
	f.BoolVar(&o.dryRun, "dry-run", false, "Read and check every file without writing anything")
	f.BoolVar(&o.partial, "partial", false, "Keep the rows read before a bad row of a failing file")
}

// apply copies every explicitly set merge flag into cfg.
func (o *mergeOptions) apply(c *cobra.Command, cfg *config.Config) {
	f := c.Flags()
	if f.Changed("output") {
		cfg.Output = o.output
	}
	if f.Changed("line-ending") {
		cfg.LineEnding = o.lineEnding
	}
	if f.Changed("xlsx") {
		cfg.XLSXOutput = o.xlsxOutput
	}
	if f.Changed("archive-dir") {
		cfg.ArchiveDir = o.archiveDir
	}
	if f.Changed("archive-by-date") {
		cfg.ArchiveByDate = o.byDate
	}
	if f.Changed("error-log-dir") {
		cfg.ErrorLogDir = o.errorLogDir
	}
	if f.Changed("dry-run") {
		cfg.DryRun = o.dryRun
	}
	if f.Changed("partial") {
		cfg.PartialIngest = o.partial
	}
}

// =============================================================================
// MERGE LOGIC
// =============================================================================

// runMerge runs the merge and prints a report to out.
func runMerge(out io.Writer, cfg *config.Config, logger *slog.Logger) error {
	fmt.Fprintln(out, "=== Expense CSV Merger ===")
	fmt.Fprintf(out, "Input directory: %s (%s)\n", cfg.InputDir, cfg.Pattern)

	result := merger.New(cfg, logger).Run()

	// =========================================================================
	// PER-FILE RESULTS
	// =========================================================================

	for _, fr := range result.Files {
		if fr.Err != nil {
			fmt.Fprintf(out, "  ✗ %s: %v\n", filepath.Base(fr.Path), fr.Err)
			continue
		}
		fmt.Fprintf(out, "  ✓ %s (%d records)\n", filepath.Base(fr.Path), fr.Records)
	}

	if result.Error != nil {
		return result.Error
	}

	if len(result.Files) == 0 {
		fmt.Fprintln(out, "No input files found; nothing written.")
		return nil
	}

	// =========================================================================
	// SUMMARY
	// =========================================================================

	fmt.Fprintln(out, "\n=== Merge Complete ===")
	fmt.Fprintf(out, "Files found:     %d\n", result.Stats.FilesFound)
	fmt.Fprintf(out, "Merged:          %d\n", result.Stats.FilesMerged)
	fmt.Fprintf(out, "Skipped:         %d\n", result.Stats.FilesFailed)
	fmt.Fprintf(out, "Records:         %d\n", result.Stats.Records)
	if result.OutputFile != "" {
		fmt.Fprintf(out, "Output:          %s\n", result.OutputFile)
	} else if cfg.DryRun {
		fmt.Fprintln(out, "Output:          (dry run, nothing written)")
	}
	if result.XLSXFile != "" {
		fmt.Fprintf(out, "Workbook:        %s\n", result.XLSXFile)
	}
	fmt.Fprintf(out, "Time elapsed:    %s\n", result.Stats.ProcessingTime)

	if result.ErrorLog != "" {
		fmt.Fprintf(out, "\nSkipped files have been logged to %s\n", result.ErrorLog)
	}

	return nil
}
