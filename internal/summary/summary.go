// Package summary aggregates a merged dataset into per-category totals.
package summary

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/expense-csv-merger/internal/amount"
	"github.com/ginjaninja78/expense-csv-merger/internal/types"
)

// CategoryTotal is the sum of the amounts recorded under one category.
type CategoryTotal struct {
	Category string
	Count    int
	Total    decimal.Decimal
}

// Summary holds the totals for a dataset.
type Summary struct {
	Records    int
	Categories []CategoryTotal
	Total      decimal.Decimal

	// Unparsed counts records whose amount could not be read. They are
	// included in Records and in their category's Count but not in any total.
	Unparsed int
}

// Build computes the summary of ds. Categories keep the order in which they
// first appear.
func Build(ds *types.Dataset) *Summary {
	s := &Summary{Total: decimal.Zero}
	index := make(map[string]int)

	for _, record := range ds.Records() {
		s.Records++

		category := record.Category()
		i, ok := index[category]
		if !ok {
			i = len(s.Categories)
			index[category] = i
			s.Categories = append(s.Categories, CategoryTotal{Category: category, Total: decimal.Zero})
		}
		s.Categories[i].Count++

		value, err := amount.Parse(record.Amount())
		if err != nil {
			s.Unparsed++
			continue
		}
		s.Categories[i].Total = s.Categories[i].Total.Add(value)
		s.Total = s.Total.Add(value)
	}

	return s
}

// Print writes the summary as an aligned table.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "%-30s %8s %15s\n", "Category", "Records", "Total")
	for _, c := range s.Categories {
		name := c.Category
		if name == "" {
			name = "(none)"
		}
		fmt.Fprintf(w, "%-30s %8d %15s\n", name, c.Count, amount.Format(c.Total))
	}
	fmt.Fprintf(w, "%-30s %8d %15s\n", "TOTAL", s.Records, amount.Format(s.Total))
	if s.Unparsed > 0 {
		fmt.Fprintf(w, "%d record(s) with unreadable amounts were left out of the totals\n", s.Unparsed)
	}
}
