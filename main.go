// =============================================================================
// Expense CSV Merger - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Expense CSV Merger CLI application.
// It delegates command execution to the cmd package.
//
// USAGE:
//   merger              - Merge all expense files in the input directory
//   merger validate     - Check input files without writing anything
//   merger summary      - Print totals per category
//   merger version      - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core merge logic (not for external import)
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/expense-csv-merger/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
