// =============================================================================
// Expense CSV Merger - Configuration Module
// =============================================================================
//
// This module loads the merge configuration. Settings come from three places,
// in increasing order of precedence:
//   1. Built-in defaults (applyDefaults)
//   2. The YAML config file (merger.yaml unless --config says otherwise)
//   3. Command-line flags that were explicitly set
//
// The format constants (delimiter, record width, header) live in
// internal/types and are not configurable.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/expense-csv-merger/internal/csvwriter"
)

// DefaultConfigFile is read when --config is not given. It may be absent.
const DefaultConfigFile = "merger.yaml"

// DefaultOutput is the merged file written when no output is configured.
const DefaultOutput = "output.csv"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the settings of a merge run.
type Config struct {
	// =========================================================================
	// INPUT SETTINGS
	// =========================================================================

	// InputDir is the directory scanned for expense files.
	// Default: "."
	InputDir string `yaml:"input_dir"`

	// Pattern is the glob that input file names must match.
	// Default: "*.csv"
	Pattern string `yaml:"pattern"`

	// PartialIngest keeps the rows read before a bad row of a failing file.
	// Default: false (a failing file contributes nothing)
	PartialIngest bool `yaml:"partial_ingest"`

	// ContinueOnError skips files that fail to ingest instead of aborting
	// the whole merge.
	// Default: false
	ContinueOnError bool `yaml:"continue_on_error"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// Output is the path of the merged CSV file.
	// Default: "output.csv"
	Output string `yaml:"output"`

	// LineEnding is "native", "lf" or "crlf".
	// Default: "native"
	LineEnding string `yaml:"line_ending"`

	// XLSXOutput, when set, also writes the merged records to this workbook.
	XLSXOutput string `yaml:"xlsx_output"`

	// ArchiveDir, when set, receives the input files after a successful merge.
	ArchiveDir string `yaml:"archive_dir"`

	// ArchiveByDate files archived inputs under YYYY/MM/DD subdirectories.
	// Default: false
	ArchiveByDate bool `yaml:"archive_by_date"`

	// ErrorLogDir, when set, receives an error log listing skipped files.
	ErrorLogDir string `yaml:"error_log_dir"`

	// DryRun reads and validates every file without writing anything.
	DryRun bool `yaml:"dry_run"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration from a YAML file. The result is not
// validated: callers apply their overrides first and then call Validate.
//
// PARAMETERS:
//   - path: The config file. Empty means DefaultConfigFile.
//   - explicit: Whether the user named the file. A missing file that was
//     not named explicitly yields the defaults; otherwise it is an error.
//
// RETURNS:
//   - The loaded configuration with defaults applied.
//   - An error if the file cannot be read or parsed.
func Load(path string, explicit bool) (*Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.InputDir == "" {
		cfg.InputDir = "."
	}
	if cfg.Pattern == "" {
		cfg.Pattern = "*.csv"
	}
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if cfg.LineEnding == "" {
		cfg.LineEnding = string(csvwriter.LineEndingNative)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// Validate checks the values that can be checked without touching the disk.
func (c *Config) Validate() error {
	if _, err := csvwriter.ParseLineEnding(c.LineEnding); err != nil {
		return err
	}
	if _, err := filepath.Match(c.Pattern, ""); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", c.Pattern, err)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.XLSXOutput != "" && filepath.Clean(c.XLSXOutput) == filepath.Clean(c.Output) {
		return fmt.Errorf("xlsx_output must differ from output")
	}
	return nil
}

// WriterOptions returns the serializer options for this configuration.
func (c *Config) WriterOptions() csvwriter.Options {
	opts := csvwriter.DefaultOptions()
	// Validate has already rejected unknown values.
	opts.LineEnding, _ = csvwriter.ParseLineEnding(c.LineEnding)
	return opts
}

// ParseLogLevel converts a level name into a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
