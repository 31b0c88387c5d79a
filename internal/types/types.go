// =============================================================================
// Expense CSV Merger - Shared Types
// =============================================================================
//
// This package contains the record and dataset types shared by the ingestor,
// the serializer and the merge pipeline. It also holds the fixed format
// constants (delimiter, record width, output header) so that none of the
// other packages hardcode them.
//
// =============================================================================

package types

// =============================================================================
// FORMAT CONSTANTS
// =============================================================================

// Delimiter is the field separator used by every input and output file.
const Delimiter = ';'

// RecordSize is the number of fields every record must have.
const RecordSize = 6

// Column indexes within a Record.
const (
	ColDate = iota
	ColDescription
	ColCategory
	ColAmount
	ColStatus
	ColAdditionalInfo
)

// Header is the fixed header row written at the top of every merged file.
// Input files never carry a header; this one is always written.
var Header = []string{
	"Data",
	"Descrição",
	"Categoria",
	"Valor",
	"Situação",
	"Informações adicionais",
}

// =============================================================================
// RECORD
// =============================================================================

// Record is one row of an expense file: Date, Description, Category, Amount,
// Status and Additional Info, in that order.
type Record []string

// Field returns the value at column i, or "" if the record is too short.
func (r Record) Field(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Date returns the date column (DD.MM.YYYY by convention).
func (r Record) Date() string { return r.Field(ColDate) }

// Category returns the category column.
func (r Record) Category() string { return r.Field(ColCategory) }

// Amount returns the raw amount column, e.g. "-65,66".
func (r Record) Amount() string { return r.Field(ColAmount) }

// Clone returns a copy of the record that shares no memory with r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	copy(out, r)
	return out
}

// Equal reports whether both records hold the same fields in the same order.
func (r Record) Equal(other Record) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}

// =============================================================================
// DATASET
// =============================================================================

// Dataset is the ordered accumulation of records across one or more ingested
// files. It is append-only: records are never reordered, removed or modified
// once added. The zero value is an empty dataset ready for use.
type Dataset struct {
	records []Record
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{}
}

// Append adds records to the end of the dataset, keeping their order.
func (d *Dataset) Append(records ...Record) {
	d.records = append(d.records, records...)
}

// Len returns the number of records in the dataset.
func (d *Dataset) Len() int {
	return len(d.records)
}

// At returns the record at index i.
func (d *Dataset) At(i int) Record {
	return d.records[i]
}

// Records returns the records in insertion order. The slice must be treated
// as read-only.
func (d *Dataset) Records() []Record {
	return d.records
}

// Equal reports whether both datasets hold equal records in the same order.
func (d *Dataset) Equal(other *Dataset) bool {
	if d.Len() != other.Len() {
		return false
	}
	for i := range d.records {
		if !d.records[i].Equal(other.records[i]) {
			return false
		}
	}
	return true
}
