// =============================================================================
// Expense CSV Merger - CSV Serializer
// =============================================================================
//
// This module writes a dataset out as a single semicolon-delimited file.
//
// OUTPUT FORMAT:
//   - First line is the fixed types.Header
//   - One line per record, fields joined with types.Delimiter
//   - Fields are never quoted or escaped; values containing the delimiter
//     will not survive a round trip
//   - Lines are terminated with a bare '\n'
//
// LINE ENDINGS:
//   Spreadsheet tools on Windows expect CRLF. With LineEndingCRLF the writer
//   appends '\r' to the last field of each data record, so every record line
//   ends in "\r\n" while the header line keeps a bare '\n'. The output of
//   existing merges depends on this exact layout, so it must not change.
//   LineEndingNative picks CRLF only when running on Windows.
//
// =============================================================================

package csvwriter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/ginjaninja78/expense-csv-merger/internal/types"
)

// =============================================================================
// LINE ENDING POLICY
// =============================================================================

// LineEnding selects how record lines are terminated.
type LineEnding string

const (
	// LineEndingNative uses CRLF on Windows and LF elsewhere.
	LineEndingNative LineEnding = "native"

	// LineEndingLF terminates every line with '\n'.
	LineEndingLF LineEnding = "lf"

	// LineEndingCRLF appends '\r' to the last field of every record.
	LineEndingCRLF LineEnding = "crlf"
)

// ParseLineEnding converts a config or flag value into a LineEnding.
func ParseLineEnding(s string) (LineEnding, error) {
	switch LineEnding(strings.ToLower(strings.TrimSpace(s))) {
	case "", LineEndingNative:
		return LineEndingNative, nil
	case LineEndingLF:
		return LineEndingLF, nil
	case LineEndingCRLF:
		return LineEndingCRLF, nil
	default:
		return "", fmt.Errorf("unknown line ending %q (want native, lf or crlf)", s)
	}
}

// useCRLF resolves the policy for the current platform.
func (le LineEnding) useCRLF() bool {
	switch le {
	case LineEndingCRLF:
		return true
	case LineEndingLF:
		return false
	default:
		return runtime.GOOS == "windows"
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// WriteError reports a failure creating, writing, flushing or closing the
// output file.
type WriteError struct {
	// Path is the output file.
	Path string

	// Op is the failed operation: "create", "write", "flush" or "close".
	Op string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *WriteError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to %s output: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options controls serialization.
type Options struct {
	// LineEnding selects the line terminator policy.
	// Default: LineEndingNative
	LineEnding LineEnding

	// Comma is the field delimiter.
	// Default: types.Delimiter
	Comma rune

	// Header is written as the first line.
	// Default: types.Header
	Header []string
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		LineEnding: LineEndingNative,
		Comma:      types.Delimiter,
		Header:     types.Header,
	}
}

// =============================================================================
// WRITING
// =============================================================================

// Write creates (or truncates) the file at path and writes ds to it.
// Every failure is returned as a *WriteError.
func Write(path string, ds *types.Dataset, opts Options) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return &WriteError{Path: path, Op: "create", Err: err}
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = &WriteError{Path: path, Op: "close", Err: cerr}
		}
	}()

	if err := WriteTo(file, ds, opts); err != nil {
		var we *WriteError
		if errors.As(err, &we) {
			we.Path = path
		}
		return err
	}
	return nil
}

// WriteTo writes the header and every record of ds to w. The dataset is not
// modified.
func WriteTo(w io.Writer, ds *types.Dataset, opts Options) error {
	comma := opts.Comma
	if comma == 0 {
		comma = types.Delimiter
	}
	header := opts.Header
	if header == nil {
		header = types.Header
	}
	crlf := opts.LineEnding.useCRLF()

	bw := bufio.NewWriter(w)
	sep := string(comma)

	if err := writeLine(bw, header, sep); err != nil {
		return &WriteError{Op: "write", Err: err}
	}

	for _, record := range ds.Records() {
		fields := []string(record)
		if crlf && len(fields) > 0 {
			fields = record.Clone()
			fields[len(fields)-1] += "\r"
		}
		if err := writeLine(bw, fields, sep); err != nil {
			return &WriteError{Op: "write", Err: err}
		}
	}

	if err := bw.Flush(); err != nil {
		return &WriteError{Op: "flush", Err: err}
	}
	return nil
}

// writeLine writes the fields joined by sep, unquoted, followed by '\n'.
func writeLine(bw *bufio.Writer, fields []string, sep string) error {
	for i, field := range fields {
		if i > 0 {
			if _, err := bw.WriteString(sep); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(field); err != nil {
			return err
		}
	}
	return bw.WriteByte('\n')
}
