// Package quote talks to the chart/quote API: per-ticker instrument
// metadata plus a trailing daily-close series. The API is rate limited
// and flaky, so callers run every fetch through the retry executor.
package quote

import (
	"context"
	"fmt"
	"time"

	"resty.dev/v3"

	"github.com/Tarantababu/funds-data/internal/fetchutil"
)

// Summary is the normalized result of one quote lookup.
type Summary struct {
	ShortName    string
	LongName     string
	Currency     string
	MarketCap    *float64
	ExpenseRatio *float64

	// Closes holds the trailing daily closes, oldest first. Null bars
	// (holidays) are already filtered out.
	Closes []float64
}

// Name returns the best display name the API offered, if any.
func (s *Summary) Name() string {
	if s.ShortName != "" {
		return s.ShortName
	}
	return s.LongName
}

// chartResponse mirrors the chart API payload.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				ShortName    string   `json:"shortName"`
				LongName     string   `json:"longName"`
				Currency     string   `json:"currency"`
				MarketCap    *float64 `json:"marketCap"`
				ExpenseRatio *float64 `json:"expenseRatio"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []any `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Client fetches instrument summaries from the chart API.
type Client struct {
	client *resty.Client
}

// NewClient creates a quote API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &Client{client: client}
}

// rangeFor maps a trailing day count onto the API's coarse range values.
func rangeFor(days int) string {
	switch {
	case days <= 35:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	default:
		return "1y"
	}
}

// FetchSummary retrieves metadata and the trailing daily-close series
// covering at least the given number of days.
func (c *Client) FetchSummary(ctx context.Context, ticker string, days int) (*Summary, error) {
	var result chartResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("ticker", ticker).
		SetQueryParams(map[string]string{
			"interval": "1d",
			"range":    rangeFor(days),
		}).
		SetResult(&result).
		SetForceResponseContentType("application/json").
		Get("/{ticker}")

	if err != nil {
		return nil, fetchutil.NewSourceUnavailableError(0, err)
	}
	if !resp.IsSuccess() {
		return nil, fetchutil.ClassifyHTTPStatus(resp.StatusCode())
	}
	if result.Chart.Error != nil {
		return nil, fetchutil.NewSourceUnavailableError(0,
			fmt.Errorf("quote api error: %s", result.Chart.Error.Description))
	}
	if len(result.Chart.Result) == 0 {
		return nil, fetchutil.NewSourceUnavailableError(0,
			fmt.Errorf("no data returned for %s", ticker))
	}

	r := result.Chart.Result[0]
	s := &Summary{
		ShortName:    r.Meta.ShortName,
		LongName:     r.Meta.LongName,
		Currency:     r.Meta.Currency,
		MarketCap:    r.Meta.MarketCap,
		ExpenseRatio: r.Meta.ExpenseRatio,
	}

	if len(r.Indicators.Quote) > 0 {
		closes := r.Indicators.Quote[0].Close
		s.Closes = make([]float64, 0, len(closes))
		for _, v := range closes {
			// Nulls mark holidays and halts; drop them.
			if f, ok := toFloat(v); ok {
				s.Closes = append(s.Closes, f)
			}
		}
	}

	// Trim to the requested window; the coarse range may over-fetch.
	if len(s.Closes) > days {
		s.Closes = s.Closes[len(s.Closes)-days:]
	}

	return s, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
