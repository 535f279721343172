package fund

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status indicates whether a fetch produced usable data for a ticker.
type Status string

const (
	// StatusSuccess means at least one financial field was recovered.
	StatusSuccess Status = "success"
	// StatusError means the fetch failed; ErrorMessage explains why.
	StatusError Status = "error"
)

// Record is the normalized per-ticker output unit. Records are value
// objects: once built they are never mutated, only replaced.
//
// All financial fields are optional. A nil pointer (or empty string)
// means "absent", which is distinct from a true zero value. Error
// records carry no financial fields at all.
type Record struct {
	Ticker string
	Name   string
	Status Status

	// Currency is the display symbol resolved from the ticker suffix.
	Currency string

	LastPrice *decimal.Decimal
	NAV       *decimal.Decimal

	// Signed percentages stored as plain ratios (3.25 means +3.25%).
	Performance1M *float64
	NAVChange1D   *float64
	ExpenseRatio  *float64

	// Flows1M is kept as scraped (e.g. "+$12.3M"); no numeric guarantee.
	Flows1M string

	// AUM is a human-scaled magnitude string (e.g. "$12.34B").
	AUM string

	ErrorMessage string
	FetchedAt    time.Time
}

// NewErrorRecord builds an Error record for a ticker. Error records
// never carry financial fields.
func NewErrorRecord(ticker, message string, at time.Time) Record {
	return Record{
		Ticker:       ticker,
		Name:         ticker,
		Status:       StatusError,
		ErrorMessage: message,
		FetchedAt:    at,
	}
}

// HasData reports whether the record carries at least one financial
// field beyond ticker and name.
func (r Record) HasData() bool {
	return r.LastPrice != nil ||
		r.NAV != nil ||
		r.Performance1M != nil ||
		r.NAVChange1D != nil ||
		r.ExpenseRatio != nil ||
		r.Flows1M != "" ||
		r.AUM != ""
}

// IsNonNegative reports whether a signed change value should be treated
// as a gain for display purposes. Zero counts as non-negative.
func IsNonNegative(v float64) bool {
	return v >= 0
}
