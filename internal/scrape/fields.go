package scrape

// Field names a data point on a fund page. The values are the label
// texts the source renders next to each figure.
type Field string

const (
	FieldLastPrice    Field = "Last price"
	FieldPerf1M       Field = "1M perf."
	FieldFlows1M      Field = "1M flows"
	FieldAUM          Field = "AuM"
	FieldExpenseRatio Field = "E/R"
	FieldNAV          Field = "NAV"
	FieldNAVChange1D  Field = "NAV change"
)

// AllFields lists every field the extractor attempts, in display order.
var AllFields = []Field{
	FieldLastPrice,
	FieldPerf1M,
	FieldFlows1M,
	FieldAUM,
	FieldExpenseRatio,
	FieldNAV,
	FieldNAVChange1D,
}

// priceLike reports whether a field's value looks like a currency
// amount, making it a candidate for the pattern-match fallback.
func priceLike(f Field) bool {
	return f == FieldLastPrice || f == FieldNAV
}

// classKeywords maps fields to the domain keyword used by the
// attribute-heuristic fallback strategy.
var classKeywords = map[Field]string{
	FieldLastPrice:    "price",
	FieldNAV:          "nav",
	FieldAUM:          "aum",
	FieldExpenseRatio: "expense",
	FieldPerf1M:       "perf",
	FieldFlows1M:      "flow",
}
