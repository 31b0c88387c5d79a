package utils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeTree creates files (and one subdirectory) inside a temp dir.
func makeTree(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub.csv", "nested.csv"), []byte("x"), 0600))
	return dir
}

func TestListDir(t *testing.T) {
	// --- Arrange ---
	dir := makeTree(t, "f1.txt", "f2.txt", "f3.txt")

	// --- Act ---
	paths, err := ListDir(dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "f1.txt"),
		filepath.Join(dir, "f2.txt"),
		filepath.Join(dir, "f3.txt"),
		filepath.Join(dir, "sub.csv"),
	}, paths, "directories are listed, their contents are not")
}

func TestListDir_EmptyDir(t *testing.T) {
	paths, err := ListDir(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestListDir_MissingDirReturnsError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")

	paths, err := ListDir(dir)

	assert.Nil(t, paths)
	var dae *DirectoryAccessError
	require.True(t, errors.As(err, &dae))
	assert.Equal(t, dir, dae.Dir)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "error opening dir")
}

func TestListDir_FileIsNotADirectory(t *testing.T) {
	dir := makeTree(t, "plain.csv")

	_, err := ListDir(filepath.Join(dir, "plain.csv"))

	var dae *DirectoryAccessError
	assert.ErrorAs(t, err, &dae)
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := makeTree(t, "b.csv", "a.csv", "notes.txt")
	fm := NewFileManager(dir, "")

	files, err := fm.DiscoverInputFiles("")

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "b.csv"),
	}, files, "only regular files matching the pattern, sorted by name")

	files, err = fm.DiscoverInputFiles("*.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "notes.txt")}, files)
}

func TestDiscoverInputFiles_BadPattern(t *testing.T) {
	fm := NewFileManager(t.TempDir(), "")
	_, err := fm.DiscoverInputFiles("[")
	assert.ErrorIs(t, err, filepath.ErrBadPattern)
}

func TestArchiveInputFile(t *testing.T) {
	dir := makeTree(t, "a.csv")
	archive := filepath.Join(t.TempDir(), "archive")
	fm := NewFileManager(dir, archive)

	archived, err := fm.ArchiveInputFile(filepath.Join(dir, "a.csv"))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(archive, "a.csv"), archived)
	assert.FileExists(t, archived)
	assert.NoFileExists(t, filepath.Join(dir, "a.csv"))
}

func TestArchiveInputFile_TimestampSubdirs(t *testing.T) {
	dir := makeTree(t, "a.csv")
	archive := t.TempDir()
	fm := NewFileManager(dir, archive)
	fm.UseTimestampSubdirs = true
	fm.now = func() time.Time { return time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC) }

	archived, err := fm.ArchiveInputFile(filepath.Join(dir, "a.csv"))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(archive, "2024", "01", "15", "a.csv"), archived)
}

func TestArchiveInputFile_Disabled(t *testing.T) {
	dir := makeTree(t, "a.csv")
	fm := NewFileManager(dir, "")
	src := filepath.Join(dir, "a.csv")

	archived, err := fm.ArchiveInputFile(src)

	require.NoError(t, err)
	assert.Equal(t, src, archived)
	assert.FileExists(t, src)
}

func TestWriteErrorLog(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteErrorLog(nil, dir, "run-1")
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = WriteErrorLog([]ErrorLogEntry{{
		Timestamp:    time.Now(),
		FileName:     "bad.csv",
		ErrorType:    "validation",
		ErrorMessage: "row 2: expected 6 fields, found 5",
	}}, dir, "run-1")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Run ID: run-1")
	assert.Contains(t, string(data), "Total Errors: 1")
	assert.Contains(t, string(data), "bad.csv")
	assert.Contains(t, string(data), "expected 6 fields, found 5")
}
