// =============================================================================
// Expense CSV Merger - Merge Pipeline
// =============================================================================
//
// This module runs one merge: it lists the input directory, ingests every
// matching file into a single dataset, and writes the merged output.
//
// PROCESSING STEPS:
//   1. Discover input files (regular files matching the pattern)
//   2. Ingest each file, in listing order, into one shared dataset
//   3. Write the merged CSV (skipped on dry runs)
//   4. Write the XLSX copy, if configured
//   5. Archive the merged input files, if configured
//   6. Write an error log for skipped files, if configured
//
// Files are processed strictly one at a time. A file that fails to ingest
// either aborts the run or is skipped, depending on ContinueOnError.
//
// =============================================================================

package merger

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/expense-csv-merger/internal/config"
	"github.com/ginjaninja78/expense-csv-merger/internal/csvparser"
	"github.com/ginjaninja78/expense-csv-merger/internal/csvwriter"
	"github.com/ginjaninja78/expense-csv-merger/internal/types"
	"github.com/ginjaninja78/expense-csv-merger/internal/validation"
	"github.com/ginjaninja78/expense-csv-merger/internal/xlsxexport"
	"github.com/ginjaninja78/expense-csv-merger/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of a merge run.
type Result struct {
	// RunID identifies the run in logs and in the error log.
	RunID string

	// OutputFile is the merged CSV. Empty on dry runs, on failure, or when
	// no input files were found.
	OutputFile string

	// XLSXFile is the workbook copy, if one was written.
	XLSXFile string

	// ErrorLog is the error log path, if one was written.
	ErrorLog string

	// Files holds one entry per discovered input file, in processing order.
	Files []FileResult

	// Dataset is the merged data.
	Dataset *types.Dataset

	// Success is true if the run completed without a fatal error.
	Success bool

	// Error is the fatal error, nil on success.
	Error error

	// Stats contains processing statistics.
	Stats Stats
}

// FileResult is the outcome for a single input file.
type FileResult struct {
	// Path is the input file.
	Path string

	// Records is the number of records the file contributed.
	Records int

	// Err is the ingestion error, nil if the file was merged.
	Err error

	// ArchivePath is where the file was moved, if it was archived.
	ArchivePath string
}

// Stats contains statistics about a run.
type Stats struct {
	FilesFound     int
	FilesMerged    int
	FilesFailed    int
	Records        int
	ProcessingTime time.Duration
}

// =============================================================================
// MERGER STRUCTURE
// =============================================================================

// Merger runs the merge pipeline for one configuration.
type Merger struct {
	cfg    *config.Config
	files  *utils.FileManager
	logger *slog.Logger
	runID  string
}

// New creates a Merger. Every log line carries the run ID.
func New(cfg *config.Config, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.New().String()
	files := utils.NewFileManager(cfg.InputDir, cfg.ArchiveDir)
	files.UseTimestampSubdirs = cfg.ArchiveByDate
	return &Merger{
		cfg:    cfg,
		files:  files,
		logger: logger.With("run_id", runID),
		runID:  runID,
	}
}

// RunID returns the identifier of this merger's run.
func (m *Merger) RunID() string {
	return m.runID
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the whole pipeline and reports the outcome.
func (m *Merger) Run() (result Result) {
	startTime := time.Now()
	result = Result{RunID: m.runID}
	defer func() {
		result.Stats.ProcessingTime = time.Since(startTime)
	}()

	// =========================================================================
	// STEP 1-2: DISCOVER AND INGEST
	// =========================================================================

	ds, files, err := m.Collect()
	result.Dataset = ds
	result.Files = files
	m.fillStats(&result)
	if err != nil {
		result.Error = err
		m.writeErrorLog(&result)
		return result
	}

	if len(files) == 0 {
		m.logger.Warn("no input files found", "dir", m.cfg.InputDir, "pattern", m.cfg.Pattern)
		result.Success = true
		return result
	}

	if m.cfg.DryRun {
		m.logger.Info("dry run, nothing written", "records", ds.Len())
		m.writeErrorLog(&result)
		result.Success = true
		return result
	}

	// =========================================================================
	// STEP 3: WRITE MERGED CSV
	// =========================================================================

	if err := csvwriter.Write(m.cfg.Output, ds, m.cfg.WriterOptions()); err != nil {
		result.Error = err
		return result
	}
	result.OutputFile = m.cfg.Output
	m.logger.Info("wrote merged file", "path", m.cfg.Output, "records", ds.Len())

	// =========================================================================
	// STEP 4: WRITE XLSX COPY
	// =========================================================================

	if m.cfg.XLSXOutput != "" {
		if err := xlsxexport.Write(m.cfg.XLSXOutput, ds); err != nil {
			result.Error = fmt.Errorf("failed to export xlsx: %w", err)
			return result
		}
		result.XLSXFile = m.cfg.XLSXOutput
		m.logger.Info("wrote workbook", "path", m.cfg.XLSXOutput)
	}

	// =========================================================================
	// STEP 5: ARCHIVE INPUTS
	// =========================================================================

	m.archive(&result)

	// =========================================================================
	// STEP 6: ERROR LOG
	// =========================================================================

	m.writeErrorLog(&result)

	result.Success = true
	return result
}

// Collect discovers the input files and ingests them into a new dataset,
// without writing anything.
//
// RETURNS:
//   - The merged dataset (never nil).
//   - One FileResult per processed file.
//   - A fatal error: the directory could not be listed, or a file failed
//     while ContinueOnError is off.
func (m *Merger) Collect() (*types.Dataset, []FileResult, error) {
	ds := types.NewDataset()

	inputs, err := m.discover()
	if err != nil {
		return ds, nil, err
	}
	m.logger.Info("discovered input files", "dir", m.cfg.InputDir, "count", len(inputs))

	opts := csvparser.DefaultOptions()
	opts.Partial = m.cfg.PartialIngest

	results := make([]FileResult, 0, len(inputs))
	for _, path := range inputs {
		before := ds.Len()
		err := csvparser.IngestWithOptions(path, ds, opts)
		fr := FileResult{Path: path, Records: ds.Len() - before, Err: err}
		results = append(results, fr)

		if err != nil {
			m.logger.Error("failed to ingest file", "file", path, "kind", ErrorKind(err), "error", err)
			if !m.cfg.ContinueOnError {
				return ds, results, fmt.Errorf("merge aborted: %w", err)
			}
			continue
		}
		m.logger.Debug("ingested file", "file", path, "records", fr.Records)
	}

	return ds, results, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// discover lists the input files, leaving out the merge's own outputs so a
// second run in the same directory does not read the previous result.
func (m *Merger) discover() ([]string, error) {
	found, err := m.files.DiscoverInputFiles(m.cfg.Pattern)
	if err != nil {
		return nil, err
	}

	skip := map[string]bool{}
	for _, p := range []string{m.cfg.Output, m.cfg.XLSXOutput} {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			skip[abs] = true
		}
	}

	inputs := make([]string, 0, len(found))
	for _, path := range found {
		if abs, err := filepath.Abs(path); err == nil && skip[abs] {
			m.logger.Debug("skipping output file found in input dir", "file", path)
			continue
		}
		inputs = append(inputs, path)
	}
	return inputs, nil
}

// archive moves every merged input file to the archive directory. Archival
// failures are logged and do not fail the run.
func (m *Merger) archive(result *Result) {
	if m.cfg.ArchiveDir == "" {
		return
	}
	for i := range result.Files {
		fr := &result.Files[i]
		if fr.Err != nil {
			continue
		}
		archived, err := m.files.ArchiveInputFile(fr.Path)
		if err != nil {
			m.logger.Warn("failed to archive file", "file", fr.Path, "error", err)
			continue
		}
		fr.ArchivePath = archived
		m.logger.Debug("archived file", "file", fr.Path, "to", archived)
	}
}

// writeErrorLog records failed files when an error log directory is set.
func (m *Merger) writeErrorLog(result *Result) {
	if m.cfg.ErrorLogDir == "" {
		return
	}

	var entries []utils.ErrorLogEntry
	for _, fr := range result.Files {
		if fr.Err == nil {
			continue
		}
		entries = append(entries, utils.ErrorLogEntry{
			Timestamp:    time.Now(),
			FileName:     fr.Path,
			ErrorType:    ErrorKind(fr.Err),
			ErrorMessage: fr.Err.Error(),
		})
	}
	if result.Error != nil && len(entries) == 0 {
		entries = append(entries, utils.ErrorLogEntry{
			Timestamp:    time.Now(),
			FileName:     m.cfg.InputDir,
			ErrorType:    ErrorKind(result.Error),
			ErrorMessage: result.Error.Error(),
		})
	}

	path, err := utils.WriteErrorLog(entries, m.cfg.ErrorLogDir, m.runID)
	if err != nil {
		m.logger.Warn("failed to write error log", "error", err)
		return
	}
	if path != "" {
		result.ErrorLog = path
		m.logger.Info("wrote error log", "path", path)
	}
}

// fillStats derives the file and record counters from the file results.
func (m *Merger) fillStats(result *Result) {
	result.Stats.FilesFound = len(result.Files)
	for _, fr := range result.Files {
		if fr.Err != nil {
			result.Stats.FilesFailed++
		} else {
			result.Stats.FilesMerged++
		}
	}
	if result.Dataset != nil {
		result.Stats.Records = result.Dataset.Len()
	}
}

// ErrorKind classifies an error for logs and error reports.
func ErrorKind(err error) string {
	var (
		dirErr   *utils.DirectoryAccessError
		parseErr *csvparser.ParseError
		countErr *validation.FieldCountError
		writeErr *csvwriter.WriteError
	)
	switch {
	case errors.As(err, &dirErr):
		return "directory"
	case errors.As(err, &countErr):
		return "validation"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &writeErr):
		return "io"
	default:
		return "unknown"
	}
}
