package scrape

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"resty.dev/v3"

	"github.com/Tarantababu/funds-data/internal/fetchutil"
)

// DefaultUserAgent is a realistic browser identification; the source
// blocks or throttles clients that look automated.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Client fetches per-ticker fund pages.
type Client struct {
	client *resty.Client
}

// NewClient creates a fund page client. The page URL is baseURL/<ticker>.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		SetTimeout(timeout)

	return &Client{client: client}
}

// FetchDocument retrieves and parses the fund page for ticker.
func (c *Client) FetchDocument(ctx context.Context, ticker string) (*goquery.Document, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/" + ticker)

	if err != nil {
		return nil, fetchutil.NewSourceUnavailableError(0, err)
	}
	if !resp.IsSuccess() {
		return nil, fetchutil.ClassifyHTTPStatus(resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fetchutil.NewSourceUnavailableError(0, err)
	}
	return doc, nil
}
