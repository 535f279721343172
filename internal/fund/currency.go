package fund

import "strings"

// Exchange-suffix to currency symbol mapping. A ticker's currency is
// fixed for its lifetime, so resolution must be deterministic.
var suffixCurrencies = map[string]string{
	".L":  "£", // London Stock Exchange
	".DE": "€", // Deutsche Börse / Xetra
}

const defaultCurrency = "$"

// CurrencyFor resolves the display currency symbol from a ticker's
// exchange suffix. Tickers without a known suffix default to USD.
func CurrencyFor(ticker string) string {
	if i := strings.LastIndex(ticker, "."); i >= 0 {
		if sym, ok := suffixCurrencies[strings.ToUpper(ticker[i:])]; ok {
			return sym
		}
	}
	return defaultCurrency
}
