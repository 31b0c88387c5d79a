// =============================================================================
// Expense CSV Merger - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Running the root
// command without a subcommand performs the merge.
//
// COBRA CLI STRUCTURE:
//   rootCmd (merger)            - merge all input files into one CSV
//   ├── validateCmd (validate)  - check input files without writing
//   ├── summaryCmd (summary)    - print per-category totals
//   └── versionCmd (version)    - print version information
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose, --input-dir, --pattern)
//   2. Loading the YAML configuration and applying flag overrides
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/expense-csv-merger/internal/config"
)

// =============================================================================
// GLOBAL OPTIONS
// =============================================================================

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	// cfgFile is the path to the configuration file.
	cfgFile string

	// verbose enables debug logging.
	verbose bool

	// inputDir is the directory holding the expense files.
	inputDir string

	// pattern selects input files by name.
	pattern string

	// continueOnError skips files that fail to ingest.
	continueOnError bool
}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// NewRootCmd builds the command tree. Each call returns independent commands
// with their own flag state.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}
	merge := &mergeOptions{}

	rootCmd := &cobra.Command{
		Use:   "merger",
		Short: "Expense CSV Merger - Combine expense-tracking CSV files into one",
		Long: `Expense CSV Merger reads every semicolon-delimited expense file in a
directory, checks that each row has exactly six fields, and writes all rows,
in file order, to a single CSV with a fixed header.

Input files have no header row. Columns are:
  Data; Descrição; Categoria; Valor; Situação; Informações adicionais

Example Usage:
  merger                                  # Merge ./*.csv into output.csv
  merger --input-dir ./extratos --output abril.csv
  merger --line-ending crlf --xlsx abril.xlsx
  merger validate --input-dir ./extratos  # Check files without writing
  merger summary                          # Totals per category`,

		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			merge.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return runMerge(cmd.OutOrStdout(), cfg, newLogger(cmd.ErrOrStderr(), cfg, opts))
		},
	}

	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================
	// Persistent flags are available to this command and all subcommands.

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", config.DefaultConfigFile,
		"Path to the configuration file (ignored if the default file is absent)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output for debugging")
	pf.StringVar(&opts.inputDir, "input-dir", ".", "Directory containing the expense files")
	pf.StringVar(&opts.pattern, "pattern", "*.csv", "Glob pattern input file names must match")
	pf.BoolVar(&opts.continueOnError, "continue-on-error", false,
		"Skip files that fail to ingest instead of aborting")

	merge.register(rootCmd)

	rootCmd.AddCommand(newValidateCmd(opts))
	rootCmd.AddCommand(newSummaryCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute builds the command tree and runs it. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadConfig reads the configuration file and applies the persistent flags
// that were set on the command line. The caller validates the result once
// its own flags are applied.
func loadConfig(cmd *cobra.Command, opts *globalOptions) (*config.Config, error) {
	flags := cmd.Flags()

	cfg, err := config.Load(opts.cfgFile, flags.Changed("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if flags.Changed("input-dir") {
		cfg.InputDir = opts.inputDir
	}
	if flags.Changed("pattern") {
		cfg.Pattern = opts.pattern
	}
	if flags.Changed("continue-on-error") {
		cfg.ContinueOnError = opts.continueOnError
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

// newLogger creates the structured logger for a command run.
func newLogger(w io.Writer, cfg *config.Config, opts *globalOptions) *slog.Logger {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	if opts.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
