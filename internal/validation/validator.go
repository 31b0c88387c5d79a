// =============================================================================
// Expense CSV Merger - Validation
// =============================================================================
//
// This module holds the two kinds of checks applied to expense records:
//
//   1. Width validation (fatal): every record must have exactly
//      types.RecordSize fields. A violation is reported as a FieldCountError
//      and aborts ingestion of the file being read.
//
//   2. Convention checks (non-fatal): the date should be DD.MM.YYYY and the
//      amount a comma-decimal number. These are data conventions, not parser
//      rules, so they only produce Issues for the 'validate' command.
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ginjaninja78/expense-csv-merger/internal/amount"
	"github.com/ginjaninja78/expense-csv-merger/internal/types"
)

// DateLayout is the layout of the Date column.
const DateLayout = "02.01.2006"

// =============================================================================
// WIDTH VALIDATION
// =============================================================================

// FieldCountError reports a row whose field count differs from the expected
// record size.
type FieldCountError struct {
	// Path is the file the row was read from.
	Path string

	// Row is the 1-indexed row number within the file.
	Row int

	// Expected is the required number of fields.
	Expected int

	// Actual is the number of fields found.
	Actual int
}

// Error implements the error interface.
func (e *FieldCountError) Error() string {
	return fmt.Sprintf("%s: row %d: expected %d fields, found %d",
		e.Path, e.Row, e.Expected, e.Actual)
}

// CheckFieldCount returns a FieldCountError if record does not have exactly
// expected fields. An expected width of zero or less means types.RecordSize.
func CheckFieldCount(path string, row, expected int, record []string) error {
	if expected <= 0 {
		expected = types.RecordSize
	}
	if len(record) != expected {
		return &FieldCountError{
			Path:     path,
			Row:      row,
			Expected: expected,
			Actual:   len(record),
		}
	}
	return nil
}

// =============================================================================
// CONVENTION CHECKS
// =============================================================================

// Issue is a non-fatal finding about a single field.
type Issue struct {
	// Path is the file the record came from.
	Path string

	// Row is the 1-indexed row number within the file.
	Row int

	// Field is the header name of the offending column.
	Field string

	// Value is the raw field value.
	Value string

	// Message describes the problem.
	Message string
}

// String renders the issue on one line.
func (i *Issue) String() string {
	return fmt.Sprintf("%s:%d [%s] %s (value: '%s')", i.Path, i.Row, i.Field, i.Message, i.Value)
}

// CheckRecord runs the convention checks on a record. The record is expected
// to have passed CheckFieldCount already.
func CheckRecord(path string, row int, record types.Record) []*Issue {
	var issues []*Issue

	if msg := validateDate(record.Date()); msg != "" {
		issues = append(issues, &Issue{
			Path:    path,
			Row:     row,
			Field:   types.Header[types.ColDate],
			Value:   record.Date(),
			Message: msg,
		})
	}

	if msg := validateAmount(record.Amount()); msg != "" {
		issues = append(issues, &Issue{
			Path:    path,
			Row:     row,
			Field:   types.Header[types.ColAmount],
			Value:   record.Amount(),
			Message: msg,
		})
	}

	if strings.TrimSpace(record.Category()) == "" {
		issues = append(issues, &Issue{
			Path:    path,
			Row:     row,
			Field:   types.Header[types.ColCategory],
			Message: "category is empty",
		})
	}

	return issues
}

// validateDate checks the DD.MM.YYYY layout.
func validateDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "date is empty"
	}
	if _, err := time.Parse(DateLayout, value); err != nil {
		return "date does not match format DD.MM.YYYY"
	}
	return ""
}

// validateAmount checks for a comma-decimal number.
func validateAmount(value string) string {
	if _, err := amount.Parse(value); err != nil {
		if errors.Is(err, amount.ErrEmpty) {
			return "amount is empty"
		}
		return "amount is not a valid decimal number"
	}
	return ""
}

// FormatIssues renders issues for display, one per line.
func FormatIssues(issues []*Issue) string {
	if len(issues) == 0 {
		return "No issues found."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d issue(s):\n", len(issues)))
	for _, issue := range issues {
		sb.WriteString("  ")
		sb.WriteString(issue.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
