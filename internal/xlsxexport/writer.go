// =============================================================================
// Expense CSV Merger - XLSX Export
// =============================================================================
//
// This module writes a merged dataset to an Excel workbook, for users who
// open the result in a spreadsheet tool instead of consuming the CSV.
//
// WORKBOOK LAYOUT:
//   | Column A | Column B  | Column C  | Column D | Column E | Column F               |
//   |----------|-----------|-----------|----------|----------|------------------------|
//   | Data     | Descrição | Categoria | Valor    | Situação | Informações adicionais |
//   | 05.04... | Uber      | Transporte| -65.66   | Não pago |                        |
//
//   - A single sheet named SheetName
//   - Row 1 is types.Header
//   - The Valor column is written as a number when the amount parses, and as
//     the original text otherwise
//
// =============================================================================

package xlsxexport

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/expense-csv-merger/internal/amount"
	"github.com/ginjaninja78/expense-csv-merger/internal/types"
)

// SheetName is the name of the sheet holding the merged records.
const SheetName = "Despesas"

// Write creates (or overwrites) the workbook at path with the content of ds.
func Write(path string, ds *types.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	// Rename the default sheet instead of adding a second one.
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &types.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, record := range ds.Records() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		row := rowValues(record)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header row: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// rowValues converts a record into cell values.
func rowValues(record types.Record) []interface{} {
	values := make([]interface{}, len(record))
	for i, field := range record {
		values[i] = field
	}
	if d, err := amount.Parse(record.Amount()); err == nil && len(values) > types.ColAmount {
		values[types.ColAmount] = d.InexactFloat64()
	}
	return values
}
