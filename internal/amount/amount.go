// Package amount parses the monetary values found in expense files. Values use
// a comma as the decimal separator and may use dots to group thousands, e.g.
// "-65,66" or "1.234,50".
package amount

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrEmpty is returned when the amount field is blank.
var ErrEmpty = errors.New("amount is empty")

// Parse converts a comma-decimal amount into a decimal.Decimal.
func Parse(value string) (decimal.Decimal, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return decimal.Zero, ErrEmpty
	}

	// A dot is only accepted as a thousands separator, so "12.50" is
	// rejected instead of being read as twelve and a half.
	intPart, frac, hasFrac := strings.Cut(s, ",")
	if hasFrac && (frac == "" || strings.ContainsAny(frac, ".,")) {
		return decimal.Zero, fmt.Errorf("invalid amount %q", value)
	}
	if strings.Contains(intPart, ".") && !validGrouping(intPart) {
		return decimal.Zero, fmt.Errorf("invalid amount %q: bad thousands grouping", value)
	}

	normalized := strings.ReplaceAll(intPart, ".", "")
	if hasFrac {
		normalized += "." + frac
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return d, nil
}

// Format renders d back into the comma-decimal form with two places.
func Format(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// validGrouping checks that every dot-separated group after the first has
// exactly three digits.
func validGrouping(s string) bool {
	s = strings.TrimLeft(s, "+-")
	groups := strings.Split(s, ".")
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}
