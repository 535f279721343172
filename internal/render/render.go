// Package render writes record lists as plain-text cards or a table.
// It is purely a consumer of records and knows nothing about how they
// were fetched.
package render

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Tarantababu/funds-data/internal/fund"
)

const timeLayout = "2006-01-02 15:04:05"

// View selects the output format.
type View string

const (
	ViewCards View = "cards"
	ViewTable View = "table"
)

// Write renders records in the given view. Unknown views fall back to
// cards.
func Write(w io.Writer, view View, records []fund.Record, updatedAt time.Time) error {
	if view == ViewTable {
		return Table(w, records, updatedAt)
	}
	return Cards(w, records, updatedAt)
}

// Cards writes one block per record. Error records show only the
// ticker and message.
func Cards(w io.Writer, records []fund.Record, updatedAt time.Time) error {
	for _, r := range records {
		if r.Status == fund.StatusError {
			if _, err := fmt.Fprintf(w, "%s: ERROR - %s\n\n", r.Ticker, r.ErrorMessage); err != nil {
				return err
			}
			continue
		}

		fmt.Fprintf(w, "%s - %s\n", r.Ticker, r.Name)
		fmt.Fprintf(w, "  Last Price:     %s\n", amount(r.LastPrice, r.Currency))
		fmt.Fprintf(w, "  1M Performance: %s\n", percent(r.Performance1M))
		fmt.Fprintf(w, "  1M Flows:       %s\n", orDash(r.Flows1M))
		fmt.Fprintf(w, "  AuM:            %s\n", orDash(r.AUM))
		fmt.Fprintf(w, "  Expense Ratio:  %s\n", percent(r.ExpenseRatio))
		fmt.Fprintf(w, "  NAV:            %s\n", amount(r.NAV, r.Currency))
		fmt.Fprintf(w, "  1D NAV Change:  %s\n", percent(r.NAVChange1D))
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Last updated: %s\n", updatedAt.Format(timeLayout))
	return err
}

// Table writes all records as one aligned table, error rows included.
func Table(w io.Writer, records []fund.Record, updatedAt time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "TICKER\tNAME\tLAST PRICE\t1M PERF\t1M FLOWS\tAUM\tE/R\tNAV\t1D NAV CHG")
	for _, r := range records {
		if r.Status == fund.StatusError {
			fmt.Fprintf(tw, "%s\tERROR: %s\t-\t-\t-\t-\t-\t-\t-\n", r.Ticker, r.ErrorMessage)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Ticker,
			r.Name,
			amount(r.LastPrice, r.Currency),
			percent(r.Performance1M),
			orDash(r.Flows1M),
			orDash(r.AUM),
			percent(r.ExpenseRatio),
			amount(r.NAV, r.Currency),
			percent(r.NAVChange1D))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nLast updated: %s\n", updatedAt.Format(timeLayout))
	return err
}

func amount(d *decimal.Decimal, currency string) string {
	if d == nil {
		return "-"
	}
	return currency + d.StringFixed(2)
}

// percent renders a signed ratio with an explicit sign marker. Zero is
// rendered as a gain.
func percent(p *float64) string {
	if p == nil {
		return "-"
	}
	if fund.IsNonNegative(*p) {
		return fmt.Sprintf("+%.2f%%", *p)
	}
	return fmt.Sprintf("%.2f%%", *p)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
