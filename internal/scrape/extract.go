package scrape

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Strategy is one way of locating a field's value within a parsed
// document. Strategies report "not found" rather than guessing; the
// extractor only advances to the next strategy on "not found".
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document, field Field) (string, bool)
}

// Extractor tries a fixed priority order of strategies until one
// produces a value. The source page carries no schema guarantee, so a
// single selector is never trusted to keep working.
type Extractor struct {
	strategies []Strategy
}

// NewExtractor builds the default strategy chain: structural label
// match, then currency-pattern scan, then class-keyword heuristic.
func NewExtractor() *Extractor {
	return &Extractor{
		strategies: []Strategy{
			labelStrategy{},
			patternStrategy{},
			attrStrategy{},
		},
	}
}

// Extract returns the raw value for field, or "not found".
func (e *Extractor) Extract(doc *goquery.Document, field Field) (string, bool) {
	for _, s := range e.strategies {
		if v, ok := s.Extract(doc, field); ok {
			return v, true
		}
	}
	return "", false
}

// ExtractAll collects every recoverable field from the document.
func (e *Extractor) ExtractAll(doc *goquery.Document) map[Field]string {
	out := make(map[Field]string)
	for _, f := range AllFields {
		if v, ok := e.Extract(doc, f); ok {
			out[f] = v
		}
	}
	return out
}

// FundName extracts the fund's display name from the page heading.
func FundName(doc *goquery.Document) (string, bool) {
	name := strings.TrimSpace(doc.Find("h1").First().Text())
	return name, name != ""
}

// documentNodes returns every element node in document order.
func documentNodes(doc *goquery.Document) []*html.Node {
	return doc.Find("*").Nodes
}

// ownText returns the text directly inside n, excluding child elements.
func ownText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(b.String())
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// matchesLabel compares node text against a field label. Trailing dots
// are insignificant ("1M perf." and "1M perf" label the same figure).
// The NAV change label appears with varying surroundings, so it is
// matched by containment rather than equality.
func matchesLabel(text string, field Field) bool {
	t := strings.ReplaceAll(strings.TrimSpace(text), ".", "")
	l := strings.ReplaceAll(string(field), ".", "")
	if field == FieldNAVChange1D {
		return strings.Contains(t, l)
	}
	return t == l
}

// labelStrategy locates the label node by text match and takes the
// first following node's text in document order.
type labelStrategy struct{}

func (labelStrategy) Name() string { return "label" }

func (labelStrategy) Extract(doc *goquery.Document, field Field) (string, bool) {
	nodes := documentNodes(doc)
	for i, n := range nodes {
		if !matchesLabel(ownText(n), field) {
			continue
		}
		for _, m := range nodes[i+1:] {
			if t := ownText(m); t != "" {
				return t, true
			}
		}
	}
	return "", false
}

// currencyAmountRE matches a currency symbol followed by digits with
// optional thousands separators and decimals, e.g. "$1,234.56".
var currencyAmountRE = regexp.MustCompile(`[$£€]\s?\d{1,3}(?:,\d{3})*(?:\.\d+)?`)

// patternStrategy scans all nodes for a currency-prefixed numeric
// pattern. It only applies to price-like fields.
type patternStrategy struct{}

func (patternStrategy) Name() string { return "pattern" }

func (patternStrategy) Extract(doc *goquery.Document, field Field) (string, bool) {
	if !priceLike(field) {
		return "", false
	}
	for _, n := range documentNodes(doc) {
		if m := currencyAmountRE.FindString(ownText(n)); m != "" {
			return m, true
		}
	}
	return "", false
}

// attrStrategy is the last resort: find a node whose class attribute
// contains a domain keyword and take the first following text that is
// not the field's own label.
type attrStrategy struct{}

func (attrStrategy) Name() string { return "attr" }

func (attrStrategy) Extract(doc *goquery.Document, field Field) (string, bool) {
	keyword, ok := classKeywords[field]
	if !ok {
		return "", false
	}
	nodes := documentNodes(doc)
	for i, n := range nodes {
		if !strings.Contains(strings.ToLower(attrValue(n, "class")), keyword) {
			continue
		}
		for _, m := range nodes[i:] {
			t := ownText(m)
			if t == "" || matchesLabel(t, field) {
				continue
			}
			return t, true
		}
	}
	return "", false
}
