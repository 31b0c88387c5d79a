// =============================================================================
// Expense CSV Merger - CSV Ingestor
// =============================================================================
//
// This module reads one expense file at a time and appends its rows to a
// caller-supplied dataset. The input format is fixed:
//   - Fields are separated by types.Delimiter (';')
//   - Every row must have exactly types.RecordSize (6) fields
//   - There is no header row; the first row is data
//   - Field values are kept exactly as read (no trimming)
//
// PARSING vs VALIDATION:
//   The underlying reader is "flexible": it does not reject rows of unequal
//   width. Width is checked right after each row is read, and the first bad
//   row stops ingestion of the file with a validation.FieldCountError.
//
// COMMIT POLICY:
//   By default a file is ingested all-or-nothing. Rows are buffered and only
//   appended to the dataset once the whole file has been read and validated,
//   so a failing file leaves the dataset exactly as it was. Setting
//   Options.Partial keeps the rows read before the failure instead.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/ginjaninja78/expense-csv-merger/internal/types"
	"github.com/ginjaninja78/expense-csv-merger/internal/validation"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrInvalidEncoding is wrapped by ParseError when a row is not valid UTF-8.
var ErrInvalidEncoding = errors.New("invalid UTF-8 encoding")

// ParseError reports a low-level failure reading an input file: the file
// could not be opened, the CSV structure is broken, or the text is not UTF-8.
type ParseError struct {
	// Path is the file being read.
	Path string

	// Line is the line where the error occurred, 0 if not line-specific.
	Line int

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("failed to parse %s at line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options controls how a file is read.
type Options struct {
	// Comma is the field delimiter.
	// Default: types.Delimiter
	Comma rune

	// RecordSize is the number of fields every row must have.
	// Default: types.RecordSize
	RecordSize int

	// Partial keeps rows read before a failing row in the dataset.
	// Default: false (all-or-nothing per file)
	Partial bool

	// SkipHeader drops the first row when it is identical to types.Header,
	// which lets a previously merged file be fed back in.
	// Default: false (the first row is always data)
	SkipHeader bool
}

// DefaultOptions returns the options used by Ingest.
func DefaultOptions() Options {
	return Options{
		Comma:      types.Delimiter,
		RecordSize: types.RecordSize,
	}
}

// =============================================================================
// INGESTION
// =============================================================================

// Ingest reads the file at path and appends one record per row to ds, in file
// order.
//
// RETURNS:
//   - nil if every row was read and has the expected width.
//   - A *ParseError if the file cannot be opened or decoded.
//   - A *validation.FieldCountError for the first row with the wrong width.
//
// On error ds is left unchanged.
func Ingest(path string, ds *types.Dataset) error {
	return IngestWithOptions(path, ds, DefaultOptions())
}

// IngestWithOptions is Ingest with explicit options.
func IngestWithOptions(path string, ds *types.Dataset, opts Options) error {
	file, err := os.Open(path)
	if err != nil {
		return &ParseError{Path: path, Err: err}
	}
	defer file.Close()

	return ReadInto(path, bufio.NewReader(file), ds, opts)
}

// ReadInto reads CSV rows from r into ds. path is only used in errors.
func ReadInto(path string, r io.Reader, ds *types.Dataset, opts Options) error {
	reader := csv.NewReader(r)
	configureReader(reader, opts)

	expected := opts.RecordSize
	if expected <= 0 {
		expected = types.RecordSize
	}

	var pending []types.Record
	commit := func() {
		ds.Append(pending...)
	}

	for row := 1; ; row++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if opts.Partial {
				commit()
			}
			return parseError(path, err)
		}

		line, _ := reader.FieldPos(0)
		for _, f := range fields {
			if !utf8.ValidString(f) {
				if opts.Partial {
					commit()
				}
				return &ParseError{Path: path, Line: line, Err: ErrInvalidEncoding}
			}
		}

		if err := validation.CheckFieldCount(path, row, expected, fields); err != nil {
			if opts.Partial {
				commit()
			}
			return err
		}

		if row == 1 && opts.SkipHeader && types.Record(fields).Equal(types.Header) {
			continue
		}

		pending = append(pending, types.Record(fields))
	}

	commit()
	return nil
}

// configureReader sets up the CSV reader for the expense format.
func configureReader(reader *csv.Reader, opts Options) {
	reader.Comma = opts.Comma
	if reader.Comma == 0 {
		reader.Comma = types.Delimiter
	}

	// Width is checked after parsing, not by the reader.
	reader.FieldsPerRecord = -1

	// Broken quoting is an error, and values are kept as-is.
	reader.LazyQuotes = false
	reader.TrimLeadingSpace = false

	// Each row gets its own slice since rows are kept in the dataset.
	reader.ReuseRecord = false
}

// parseError converts a csv reader error into a ParseError, keeping the line
// number when the reader reports one.
func parseError(path string, err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{Path: path, Line: csvErr.Line, Err: csvErr.Err}
	}
	return &ParseError{Path: path, Err: err}
}
