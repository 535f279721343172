// Package normalize converts raw extractor output (scraped strings or
// native API numerics) into the typed values carried by fund records.
// Unparsable input is reported as an error so callers can record the
// field as absent; nothing here ever substitutes a zero.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var currencySymbols = []string{"$", "£", "€"}

// Percent parses a scraped percentage like "+3.25%" or "-1.10%" into a
// signed ratio (3.25, -1.10). The sign is taken from the literal prefix
// when present.
func Percent(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty percentage")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse percentage %q: %w", raw, err)
	}
	return v, nil
}

// Amount parses a scraped currency amount like "£1,234.56" into a
// decimal. Currency symbols and thousands separators are stripped; the
// currency itself is resolved separately from the ticker suffix.
func Amount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	for _, sym := range currencySymbols {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to parse amount %q: %w", raw, err)
	}
	return d, nil
}

// FormatMagnitude renders a raw numeric magnitude as a human-scaled
// string with two decimals and the given currency symbol, e.g.
// 1_500_000_000 -> "$1.50B". Values below a million are expressed in
// thousands.
func FormatMagnitude(value float64, currency string) string {
	switch {
	case value >= 1e9:
		return fmt.Sprintf("%s%.2fB", currency, value/1e9)
	case value >= 1e6:
		return fmt.Sprintf("%s%.2fM", currency, value/1e6)
	default:
		return fmt.Sprintf("%s%.2fK", currency, value/1e3)
	}
}
