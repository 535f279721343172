package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Tarantababu/funds-data/internal/cache"
	"github.com/Tarantababu/funds-data/internal/engine"
	"github.com/Tarantababu/funds-data/internal/fund"
	"github.com/Tarantababu/funds-data/internal/quote"
	"github.com/Tarantababu/funds-data/internal/render"
	"github.com/Tarantababu/funds-data/internal/scrape"
	"github.com/Tarantababu/funds-data/internal/testutil"
)

// newPageServer serves fund pages for known tickers and 404s the rest.
func newPageServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ticker := strings.TrimPrefix(r.URL.Path, "/")

		if r.Header.Get("User-Agent") != scrape.DefaultUserAgent {
			t.Errorf("page request missing browser-like User-Agent, got %q", r.Header.Get("User-Agent"))
		}

		switch ticker {
		case "TSLI":
			w.Write([]byte(testutil.FundPageMarkup("Tesla Covered Call Income ETF", map[string]string{
				"Last price": "$12.34",
				"1M perf.":   "+3.25%",
				"1M flows":   "+$5.6M",
				"AuM":        "$1.50B",
				"E/R":        "0.99%",
				"NAV":        "$12.30",
				"NAV change": "-1.10%",
			})))
		case "XYZ.L":
			// Price only; the rest must come from the quote API.
			w.Write([]byte(testutil.FundPageMarkup("XYZ UK Fund", map[string]string{
				"Last price": "£110.00",
			})))
		case "EMPTY":
			w.Write([]byte(`<html><body><h1>EMPTY Fund</h1><p>under maintenance</p></body></html>`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

// newQuoteServer serves a 30-day close series for XYZ.L and errors for
// everything else.
func newQuoteServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ticker := strings.TrimPrefix(r.URL.Path, "/")
		if ticker != "XYZ.L" {
			w.Write([]byte(`{"chart": {"result": null, "error": {"code": "Not Found", "description": "no data"}}}`))
			return
		}

		closes := make([]string, 30)
		for i := range closes {
			closes[i] = "100"
		}
		closes[28] = "108"
		closes[29] = "110"
		w.Write([]byte(testutil.ChartJSON("XYZ UK Fund", "GBP", 2_300_000, 0.45, closes)))
	}))
}

func newTestEngine(pageURL, quoteURL string, mode engine.Mode) *engine.Engine {
	pages := scrape.NewClient(pageURL, "", 5*time.Second)
	quotes := quote.NewClient(quoteURL, 5*time.Second)
	store := cache.New(15 * time.Minute)

	return engine.New(pages, quotes, store, engine.Options{
		Mode:        mode,
		MaxWorkers:  3,
		MaxAttempts: 1,
		MinDelay:    time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
	})
}

func TestIntegration_FullBatch(t *testing.T) {
	pageServer := newPageServer(t)
	defer pageServer.Close()
	quoteServer := newQuoteServer(t)
	defer quoteServer.Close()

	eng := newTestEngine(pageServer.URL, quoteServer.URL, engine.ModeParallel)
	tickers := []string{"TSLI", "XYZ.L", "EMPTY", "MISSING"}
	batch := eng.FetchAll(context.Background(), tickers)

	if len(batch.Records) != len(tickers) {
		t.Fatalf("got %d records, want %d", len(batch.Records), len(tickers))
	}
	for i, tk := range tickers {
		if batch.Records[i].Ticker != tk {
			t.Errorf("record[%d].Ticker = %q, want %q", i, batch.Records[i].Ticker, tk)
		}
	}

	// TSLI: everything scraped from the page.
	tsli := batch.Records[0]
	if tsli.Status != fund.StatusSuccess {
		t.Fatalf("TSLI status = %q (%s), want success", tsli.Status, tsli.ErrorMessage)
	}
	if tsli.Name != "Tesla Covered Call Income ETF" {
		t.Errorf("TSLI name = %q", tsli.Name)
	}
	if tsli.LastPrice == nil || tsli.LastPrice.StringFixed(2) != "12.34" {
		t.Errorf("TSLI last price = %v, want 12.34", tsli.LastPrice)
	}
	if tsli.Performance1M == nil || *tsli.Performance1M != 3.25 {
		t.Errorf("TSLI 1M perf = %v, want 3.25", tsli.Performance1M)
	}
	if tsli.NAVChange1D == nil || *tsli.NAVChange1D != -1.10 {
		t.Errorf("TSLI NAV change = %v, want -1.10", tsli.NAVChange1D)
	}
	if tsli.AUM != "$1.50B" {
		t.Errorf("TSLI AuM = %q, want $1.50B", tsli.AUM)
	}
	if tsli.Flows1M != "+$5.6M" {
		t.Errorf("TSLI flows = %q, want +$5.6M", tsli.Flows1M)
	}

	// XYZ.L: page gave only the price; series math fills performance
	// and daily change, metadata fills expense ratio and AuM.
	xyz := batch.Records[1]
	if xyz.Status != fund.StatusSuccess {
		t.Fatalf("XYZ.L status = %q (%s), want success", xyz.Status, xyz.ErrorMessage)
	}
	if xyz.Currency != "£" {
		t.Errorf("XYZ.L currency = %q, want £", xyz.Currency)
	}
	if xyz.Performance1M == nil || *xyz.Performance1M < 9.99 || *xyz.Performance1M > 10.01 {
		t.Errorf("XYZ.L 1M perf = %v, want ≈10.00", xyz.Performance1M)
	}
	if xyz.NAVChange1D == nil || *xyz.NAVChange1D < 1.84 || *xyz.NAVChange1D > 1.86 {
		t.Errorf("XYZ.L NAV change = %v, want ≈1.85", xyz.NAVChange1D)
	}
	if xyz.ExpenseRatio == nil || *xyz.ExpenseRatio != 0.45 {
		t.Errorf("XYZ.L expense ratio = %v, want 0.45", xyz.ExpenseRatio)
	}
	if xyz.AUM != "£2.30M" {
		t.Errorf("XYZ.L AuM = %q, want £2.30M", xyz.AUM)
	}

	// EMPTY: page loaded but carried no fund data.
	empty := batch.Records[2]
	if empty.Status != fund.StatusError {
		t.Fatalf("EMPTY status = %q, want error", empty.Status)
	}
	if empty.ErrorMessage != "could not find fund data on page" {
		t.Errorf("EMPTY message = %q", empty.ErrorMessage)
	}
	if empty.HasData() {
		t.Error("EMPTY record must not carry financial fields")
	}

	// MISSING: page source returned 404.
	missing := batch.Records[3]
	if missing.Status != fund.StatusError {
		t.Fatalf("MISSING status = %q, want error", missing.Status)
	}
	if !strings.Contains(missing.ErrorMessage, "404") {
		t.Errorf("MISSING message = %q, want the HTTP status included", missing.ErrorMessage)
	}
}

func TestIntegration_SequentialMode(t *testing.T) {
	pageServer := newPageServer(t)
	defer pageServer.Close()
	quoteServer := newQuoteServer(t)
	defer quoteServer.Close()

	eng := newTestEngine(pageServer.URL, quoteServer.URL, engine.ModeSequential)
	tickers := []string{"TSLI", "XYZ.L"}
	batch := eng.FetchAll(context.Background(), tickers)

	if len(batch.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(batch.Records))
	}
	for i, tk := range tickers {
		if batch.Records[i].Ticker != tk {
			t.Errorf("record[%d].Ticker = %q, want %q", i, batch.Records[i].Ticker, tk)
		}
	}
}

func TestIntegration_RenderedOutput(t *testing.T) {
	pageServer := newPageServer(t)
	defer pageServer.Close()
	quoteServer := newQuoteServer(t)
	defer quoteServer.Close()

	eng := newTestEngine(pageServer.URL, quoteServer.URL, engine.ModeParallel)
	batch := eng.FetchAll(context.Background(), []string{"TSLI", "MISSING"})

	var cards strings.Builder
	if err := render.Write(&cards, render.ViewCards, batch.Records, batch.FetchedAt); err != nil {
		t.Fatalf("render cards: %v", err)
	}
	if !strings.Contains(cards.String(), "TSLI - Tesla Covered Call Income ETF") {
		t.Errorf("card output missing fund header:\n%s", cards.String())
	}
	if !strings.Contains(cards.String(), "MISSING: ERROR") {
		t.Errorf("card output missing error card:\n%s", cards.String())
	}

	var table strings.Builder
	if err := render.Write(&table, render.ViewTable, batch.Records, batch.FetchedAt); err != nil {
		t.Fatalf("render table: %v", err)
	}
	if !strings.Contains(table.String(), "TICKER") {
		t.Errorf("table output missing header:\n%s", table.String())
	}
}

func TestIntegration_CacheShortCircuitsSecondBatch(t *testing.T) {
	var pageHits atomic.Int32
	pageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pageHits.Add(1)
		w.Write([]byte(testutil.FundPageMarkup("Fund", map[string]string{"Last price": "$10.00"})))
	}))
	defer pageServer.Close()
	quoteServer := newQuoteServer(t)
	defer quoteServer.Close()

	eng := newTestEngine(pageServer.URL, quoteServer.URL, engine.ModeParallel)

	eng.FetchAll(context.Background(), []string{"TSLI"})
	first := pageHits.Load()
	if first != 1 {
		t.Fatalf("page hits after first batch = %d, want 1", first)
	}

	eng.FetchAll(context.Background(), []string{"TSLI"})
	if got := pageHits.Load(); got != first {
		t.Errorf("page hits after cached batch = %d, want %d", got, first)
	}
}
