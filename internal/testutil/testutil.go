// Package testutil builds canned remote-source payloads for tests.
package testutil

import (
	"fmt"
	"strings"
)

// FundPageMarkup renders a fund page in the source's label/value
// layout. fields maps label text to the displayed value.
func FundPageMarkup(name string, fields map[string]string) string {
	var b strings.Builder
	b.WriteString("<html><body>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n<div>\n", name)
	// Fixed label order keeps the markup deterministic.
	for _, label := range []string{"Last price", "1M perf.", "1M flows", "AuM", "E/R", "NAV", "NAV change"} {
		v, ok := fields[label]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "<div><div>%s</div><div>%s</div></div>\n", label, v)
	}
	b.WriteString("</div>\n</body></html>")
	return b.String()
}

// ChartJSON renders a chart API payload with the given metadata and
// daily closes. Closes are rendered verbatim, so "null" bars can be
// included.
func ChartJSON(shortName, currency string, marketCap float64, expenseRatio float64, closes []string) string {
	return fmt.Sprintf(`{
		"chart": {
			"result": [{
				"meta": {
					"shortName": %q,
					"currency": %q,
					"marketCap": %g,
					"expenseRatio": %g
				},
				"timestamp": [%s],
				"indicators": {"quote": [{"close": [%s]}]}
			}],
			"error": null
		}
	}`, shortName, currency, marketCap, expenseRatio, timestamps(len(closes)), strings.Join(closes, ","))
}

func timestamps(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("%d", 1700000000+i*86400)
	}
	return strings.Join(parts, ",")
}
