package quote

import "fmt"

// PerformanceOver returns the percent change from the first to the
// last close in the series. The sign is arithmetic, not scraped.
func PerformanceOver(closes []float64) (float64, error) {
	if len(closes) < 2 {
		return 0, fmt.Errorf("need at least 2 closes, have %d", len(closes))
	}
	first, last := closes[0], closes[len(closes)-1]
	if first == 0 {
		return 0, fmt.Errorf("first close is zero")
	}
	return (last - first) / first * 100, nil
}

// DailyChange returns the percent change from the previous-to-last
// close to the last close.
func DailyChange(closes []float64) (float64, error) {
	if len(closes) < 2 {
		return 0, fmt.Errorf("need at least 2 closes, have %d", len(closes))
	}
	prev, last := closes[len(closes)-2], closes[len(closes)-1]
	if prev == 0 {
		return 0, fmt.Errorf("previous close is zero")
	}
	return (last - prev) / prev * 100, nil
}
