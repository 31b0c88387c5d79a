// =============================================================================
// Expense CSV Merger - File Manager Utility
// =============================================================================
//
// This module provides the file system helpers used by the merge pipeline:
//   - Directory listing (the top-level entries of the input folder)
//   - Input discovery (regular files matching a glob pattern)
//   - Archival of merged input files
//   - Error log generation for files that could not be merged
//
// ARCHIVAL STRATEGY:
//   - Input files are moved to the archive directory only after the merged
//     output was written successfully
//   - Files that failed to ingest stay where they are
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// =============================================================================
// DIRECTORY LISTING
// =============================================================================

// DirectoryAccessError reports a directory that could not be opened or whose
// entries could not be read.
type DirectoryAccessError struct {
	// Dir is the directory being listed.
	Dir string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *DirectoryAccessError) Error() string {
	return fmt.Sprintf("error opening dir '%s': %v", e.Dir, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DirectoryAccessError) Unwrap() error {
	return e.Err
}

// ListDir returns the full path of every entry directly inside dir, files and
// subdirectories alike. It does not recurse or filter. Entries come back in
// the order os.ReadDir returns them (sorted by name).
//
// RETURNS:
//   - The entry paths, each being dir joined with the entry name.
//   - A *DirectoryAccessError if the directory cannot be read.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &DirectoryAccessError{Dir: dir, Err: err}
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for a merge run.
type FileManager struct {
	// InputDir is the directory scanned for expense files.
	InputDir string

	// ArchiveDir is where merged input files are moved. Empty disables
	// archival.
	ArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: archive/2024/01/15/file.csv
	UseTimestampSubdirs bool

	// now is replaced in tests.
	now func() time.Time
}

// NewFileManager creates a FileManager for the given directories.
func NewFileManager(inputDir, archiveDir string) *FileManager {
	return &FileManager{
		InputDir:   inputDir,
		ArchiveDir: archiveDir,
		now:        time.Now,
	}
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the input directory and keeps the regular files
// whose base name matches pattern, in listing order.
//
// PARAMETERS:
//   - pattern: A glob pattern (e.g., "*.csv"). If empty, defaults to "*.csv".
//
// RETURNS:
//   - The matching file paths.
//   - A *DirectoryAccessError if the directory cannot be read, or an error
//     for a malformed pattern.
func (fm *FileManager) DiscoverInputFiles(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*.csv"
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid file pattern %q: %w", pattern, err)
	}

	entries, err := ListDir(fm.InputDir)
	if err != nil {
		return nil, err
	}

	var result []string
	for _, path := range entries {
		matched, _ := filepath.Match(pattern, filepath.Base(path))
		if !matched {
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, &DirectoryAccessError{Dir: fm.InputDir, Err: err}
		}
		if info.Mode().IsRegular() {
			result = append(result, path)
		}
	}

	return result, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the archive directory.
//
// RETURNS:
//   - The path to the archived file (the original path if archival is off).
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if fm.ArchiveDir == "" {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(filePath)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	// Move the file.
	if err := os.Rename(filePath, archivePath); err != nil {
		// If rename fails (e.g., cross-device), try copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// getArchivePath constructs the archive path for a file.
func (fm *FileManager) getArchivePath(filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := fm.now()
		return filepath.Join(
			fm.ArchiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName,
		)
	}

	return filepath.Join(fm.ArchiveDir, fileName)
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry describes one input file that could not be merged.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	ErrorType    string
	ErrorMessage string
}

// WriteErrorLog writes error entries to a timestamped log file in outputDir.
//
// RETURNS:
//   - The path to the error log file ("" if there were no entries).
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, outputDir string, runID string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	timestamp := time.Now().Format("20060102_150405")
	logPath := filepath.Join(outputDir, fmt.Sprintf("merge_errors_%s.txt", timestamp))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Expense CSV Merger - Error Log\n"+
		"Run ID: %s\n"+
		"Generated: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		runID,
		time.Now().Format("2006-01-02 15:04:05"),
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n"+
			"  Timestamp:      %s\n"+
			"  File:           %s\n"+
			"  Error Type:     %s\n"+
			"  Message:        %s\n\n",
			i+1,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.FileName,
			entry.ErrorType,
			entry.ErrorMessage)
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}
