package merger

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/expense-csv-merger/internal/config"
	"github.com/ginjaninja78/expense-csv-merger/internal/csvparser"
	"github.com/ginjaninja78/expense-csv-merger/internal/csvwriter"
	"github.com/ginjaninja78/expense-csv-merger/internal/types"
	"github.com/ginjaninja78/expense-csv-merger/internal/validation"
	"github.com/ginjaninja78/expense-csv-merger/pkg/utils"
)

const (
	fileA = "05.04.2023;Uber;Transporte;-65,66;Não pago;\n06.04.2023;Mercado;Alimentação;-120,00;Pago;cartão\n"
	fileB = "07.04.2023;Salário;Renda;5000,00;Pago;\n"
	fileC = "08.04.2023;short;Cat;1,00\n"
)

// newInputDir writes the given files into a fresh input directory.
func newInputDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
	}
	return dir
}

// newConfig returns a config reading from inputDir and writing into a separate
// temp dir with LF line endings.
func newConfig(t *testing.T, inputDir string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.InputDir = inputDir
	cfg.Output = filepath.Join(t.TempDir(), "output.csv")
	cfg.LineEnding = string(csvwriter.LineEndingLF)
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_MergesFilesInOrder(t *testing.T) {
	// --- Arrange ---
	dir := newInputDir(t, map[string]string{"a.csv": fileA, "b.csv": fileB, "notes.txt": "ignored"})
	cfg := newConfig(t, dir)

	// --- Act ---
	result := New(cfg, discardLogger()).Run()

	// --- Assert ---
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Equal(t, cfg.Output, result.OutputFile)
	assert.Equal(t, Stats{FilesFound: 2, FilesMerged: 2, Records: 3, ProcessingTime: result.Stats.ProcessingTime}, result.Stats)
	assert.True(t, result.Stats.ProcessingTime > 0)

	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	assert.Equal(t,
		"Data;Descrição;Categoria;Valor;Situação;Informações adicionais\n"+fileA+fileB,
		string(data))
}

func TestRun_RunIDIsUUID(t *testing.T) {
	m := New(newConfig(t, t.TempDir()), discardLogger())

	_, err := uuid.Parse(m.RunID())
	require.NoError(t, err)
	assert.Equal(t, m.RunID(), m.Run().RunID)
}

func TestRun_LogsCarryRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	m := New(newConfig(t, newInputDir(t, map[string]string{"a.csv": fileA})), logger)

	m.Run()

	assert.Contains(t, buf.String(), "run_id="+m.RunID())
}

func TestRun_AbortsOnBadFile(t *testing.T) {
	dir := newInputDir(t, map[string]string{"a.csv": fileA, "c.csv": fileC})
	cfg := newConfig(t, dir)

	result := New(cfg, discardLogger()).Run()

	require.Error(t, result.Error)
	assert.False(t, result.Success)
	var fce *validation.FieldCountError
	assert.ErrorAs(t, result.Error, &fce)
	assert.Empty(t, result.OutputFile)
	assert.NoFileExists(t, cfg.Output)
	assert.Equal(t, 1, result.Stats.FilesFailed)
}

func TestRun_ContinueOnErrorSkipsBadFile(t *testing.T) {
	// --- Arrange ---
	dir := newInputDir(t, map[string]string{"a.csv": fileA, "b.csv": fileB, "c.csv": fileC})
	cfg := newConfig(t, dir)
	cfg.ContinueOnError = true
	cfg.ErrorLogDir = t.TempDir()

	// --- Act ---
	result := New(cfg, discardLogger()).Run()

	// --- Assert ---
	require.NoError(t, result.Error)
	assert.Equal(t, 3, result.Stats.FilesFound)
	assert.Equal(t, 2, result.Stats.FilesMerged)
	assert.Equal(t, 1, result.Stats.FilesFailed)
	assert.Equal(t, 3, result.Dataset.Len())

	require.Len(t, result.Files, 3)
	assert.Equal(t, filepath.Join(dir, "c.csv"), result.Files[2].Path)
	assert.Error(t, result.Files[2].Err)

	require.NotEmpty(t, result.ErrorLog)
	log, err := os.ReadFile(result.ErrorLog)
	require.NoError(t, err)
	assert.Contains(t, string(log), "c.csv")
	assert.Contains(t, string(log), "validation")
	assert.Contains(t, string(log), result.RunID)
}

func TestRun_PartialIngestKeepsGoodRows(t *testing.T) {
	dir := newInputDir(t, map[string]string{"a.csv": fileA + "bad;row\n"})
	cfg := newConfig(t, dir)
	cfg.ContinueOnError = true
	cfg.PartialIngest = true

	result := New(cfg, discardLogger()).Run()

	require.NoError(t, result.Error)
	assert.Equal(t, 2, result.Dataset.Len())
	assert.Equal(t, 2, result.Files[0].Records)
}

func TestRun_MissingInputDir(t *testing.T) {
	cfg := newConfig(t, filepath.Join(t.TempDir(), "missing"))

	result := New(cfg, discardLogger()).Run()

	var dae *utils.DirectoryAccessError
	require.ErrorAs(t, result.Error, &dae)
	assert.Equal(t, "directory", ErrorKind(result.Error))
	assert.False(t, result.Success)
}

func TestRun_NoInputFiles(t *testing.T) {
	cfg := newConfig(t, t.TempDir())

	result := New(cfg, discardLogger()).Run()

	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Empty(t, result.OutputFile)
	assert.NoFileExists(t, cfg.Output)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	dir := newInputDir(t, map[string]string{"a.csv": fileA})
	cfg := newConfig(t, dir)
	cfg.DryRun = true
	cfg.XLSXOutput = filepath.Join(t.TempDir(), "out.xlsx")

	result := New(cfg, discardLogger()).Run()

	require.NoError(t, result.Error)
	assert.Equal(t, 2, result.Dataset.Len())
	assert.NoFileExists(t, cfg.Output)
	assert.NoFileExists(t, cfg.XLSXOutput)
}

func TestRun_SkipsOwnOutputInInputDir(t *testing.T) {
	// --- Arrange ---
	dir := newInputDir(t, map[string]string{"a.csv": fileA})
	cfg := newConfig(t, dir)
	cfg.Output = filepath.Join(dir, "output.csv")

	// --- Act ---
	first := New(cfg, discardLogger()).Run()
	second := New(cfg, discardLogger()).Run()

	// --- Assert ---
	require.NoError(t, first.Error)
	require.NoError(t, second.Error)
	assert.Equal(t, 2, second.Dataset.Len(), "previous output must not be merged again")
}

func TestRun_CRLFAndXLSX(t *testing.T) {
	dir := newInputDir(t, map[string]string{"a.csv": fileA})
	cfg := newConfig(t, dir)
	cfg.LineEnding = string(csvwriter.LineEndingCRLF)
	cfg.XLSXOutput = filepath.Join(t.TempDir(), "out.xlsx")

	result := New(cfg, discardLogger()).Run()
	require.NoError(t, result.Error)

	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	assert.Equal(t, "05.04.2023;Uber;Transporte;-65,66;Não pago;\r", lines[1])

	assert.Equal(t, cfg.XLSXOutput, result.XLSXFile)
	f, err := excelize.OpenFile(cfg.XLSXOutput)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Despesas")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestRun_ArchivesMergedInputs(t *testing.T) {
	dir := newInputDir(t, map[string]string{"a.csv": fileA, "c.csv": fileC})
	cfg := newConfig(t, dir)
	cfg.ContinueOnError = true
	cfg.ArchiveDir = filepath.Join(t.TempDir(), "archive")

	result := New(cfg, discardLogger()).Run()

	require.NoError(t, result.Error)
	assert.FileExists(t, filepath.Join(cfg.ArchiveDir, "a.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "a.csv"))
	assert.FileExists(t, filepath.Join(dir, "c.csv"), "failed files stay in place")
	assert.Equal(t, filepath.Join(cfg.ArchiveDir, "a.csv"), result.Files[0].ArchivePath)
}

func TestRun_ArchivesByDate(t *testing.T) {
	dir := newInputDir(t, map[string]string{"a.csv": fileA})
	cfg := newConfig(t, dir)
	cfg.ArchiveDir = t.TempDir()
	cfg.ArchiveByDate = true

	day := time.Now().Format("2006/01/02")
	result := New(cfg, discardLogger()).Run()

	require.NoError(t, result.Error)
	want := filepath.Join(cfg.ArchiveDir, filepath.FromSlash(day), "a.csv")
	assert.Equal(t, want, result.Files[0].ArchivePath)
	assert.FileExists(t, want)
}

func TestRun_OutputRoundTrips(t *testing.T) {
	dir := newInputDir(t, map[string]string{"a.csv": fileA, "b.csv": fileB})
	cfg := newConfig(t, dir)

	result := New(cfg, discardLogger()).Run()
	require.NoError(t, result.Error)

	opts := csvparser.DefaultOptions()
	opts.SkipHeader = true
	reread := types.NewDataset()
	require.NoError(t, csvparser.IngestWithOptions(cfg.Output, reread, opts))
	assert.True(t, result.Dataset.Equal(reread))
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "parse", ErrorKind(&csvparser.ParseError{Path: "x"}))
	assert.Equal(t, "validation", ErrorKind(&validation.FieldCountError{}))
	assert.Equal(t, "io", ErrorKind(&csvwriter.WriteError{}))
	assert.Equal(t, "unknown", ErrorKind(io.EOF))
}
