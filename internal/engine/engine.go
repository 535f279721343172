// Package engine drives the ticker universe through the fetch
// pipeline: cache check, retry-wrapped remote calls, extraction,
// normalization, cache store. One ticker's failure never aborts the
// batch; the worst outcome is an all-Error batch.
package engine

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/Tarantababu/funds-data/internal/cache"
	"github.com/Tarantababu/funds-data/internal/fetchutil"
	"github.com/Tarantababu/funds-data/internal/fund"
	"github.com/Tarantababu/funds-data/internal/normalize"
	"github.com/Tarantababu/funds-data/internal/quote"
	"github.com/Tarantababu/funds-data/internal/scrape"
)

// Mode selects the fetch scheduling strategy.
type Mode string

const (
	// ModeParallel dispatches up to MaxWorkers concurrent fetches.
	ModeParallel Mode = "parallel"
	// ModeSequential fetches one ticker at a time with a randomized
	// inter-request delay, to stay under the source's rate threshold.
	ModeSequential Mode = "sequential"
)

const (
	// DefaultMaxWorkers bounds the parallel-mode pool.
	DefaultMaxWorkers = 5
	// DefaultHistoryDays is the trailing close window for series math.
	DefaultHistoryDays = 30

	// Sequential-mode inter-request delay bounds.
	defaultMinDelay = 1 * time.Second
	defaultMaxDelay = 2 * time.Second

	errNoFundData = "could not find fund data on page"
)

// PageSource fetches and parses a per-ticker fund page.
type PageSource interface {
	FetchDocument(ctx context.Context, ticker string) (*goquery.Document, error)
}

// QuoteSource fetches instrument metadata and the daily-close series.
type QuoteSource interface {
	FetchSummary(ctx context.Context, ticker string, days int) (*quote.Summary, error)
}

// Options configures an Engine. Zero values fall back to documented
// defaults.
type Options struct {
	Mode        Mode
	MaxWorkers  int
	MaxAttempts int
	HistoryDays int

	// Sequential-mode inter-request delay bounds.
	MinDelay time.Duration
	MaxDelay time.Duration

	// Progress, if set, is called after each ticker in sequential mode.
	Progress func(done, total int)
}

// Batch is the output of one FetchAll run.
type Batch struct {
	Records   []fund.Record
	FetchedAt time.Time
}

// Engine is the fetch orchestrator. Create one per process and reuse
// it; the cache lives for the engine's lifetime.
type Engine struct {
	pages     PageSource
	quotes    QuoteSource
	store     *cache.Cache
	extractor *scrape.Extractor
	opts      Options

	// retry wraps one remote call with the backoff policy; swapped out
	// in tests to avoid real sleeps.
	retry func(ctx context.Context, name, ticker string, op fetchutil.Operation) error

	// flights coalesces concurrent fetches of the same ticker so no
	// overlapping in-flight fetch is ever issued.
	flights singleflight.Group

	now func() time.Time
}

// New creates an Engine over the given sources and cache.
func New(pages PageSource, quotes QuoteSource, store *cache.Cache, opts Options) *Engine {
	if opts.Mode == "" {
		opts.Mode = ModeParallel
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = DefaultMaxWorkers
	}
	if opts.HistoryDays <= 0 {
		opts.HistoryDays = DefaultHistoryDays
	}
	if opts.MinDelay <= 0 {
		opts.MinDelay = defaultMinDelay
	}
	if opts.MaxDelay < opts.MinDelay {
		opts.MaxDelay = defaultMaxDelay
	}

	retrier := fetchutil.NewRetrier(opts.MaxAttempts)
	return &Engine{
		pages:     pages,
		quotes:    quotes,
		store:     store,
		extractor: scrape.NewExtractor(),
		opts:      opts,
		retry:     retrier.Do,
		now:       time.Now,
	}
}

// FetchAll produces one record per input ticker, in input order,
// regardless of mode or completion order.
func (e *Engine) FetchAll(ctx context.Context, tickers []string) Batch {
	var records []fund.Record
	if e.opts.Mode == ModeSequential {
		records = e.fetchSequential(ctx, tickers)
	} else {
		records = e.fetchParallel(ctx, tickers)
	}
	return Batch{Records: records, FetchedAt: e.now()}
}

// fetchParallel runs a bounded worker pool and reassembles results by
// input index.
func (e *Engine) fetchParallel(ctx context.Context, tickers []string) []fund.Record {
	results := make([]fund.Record, len(tickers))
	sem := make(chan struct{}, e.opts.MaxWorkers)

	var wg sync.WaitGroup
	for i, ticker := range tickers {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = e.fetchOne(ctx, ticker)
		}(i, ticker)
	}
	wg.Wait()

	return results
}

// fetchSequential iterates tickers one at a time. A rate gate plus
// random jitter keeps at least MinDelay and at most MaxDelay between
// consecutive requests.
func (e *Engine) fetchSequential(ctx context.Context, tickers []string) []fund.Record {
	results := make([]fund.Record, len(tickers))
	pace := rate.NewLimiter(rate.Every(e.opts.MinDelay), 1)

	for i, ticker := range tickers {
		// The limiter starts with one token, so the first ticker is
		// fetched immediately and every later request start is at
		// least MinDelay after the previous one.
		if err := pace.Wait(ctx); err != nil {
			results[i] = fund.NewErrorRecord(ticker, err.Error(), e.now())
			continue
		}
		if span := e.opts.MaxDelay - e.opts.MinDelay; i > 0 && span > 0 {
			jitter := time.Duration(rand.Int63n(int64(span)))
			if err := sleepContext(ctx, jitter); err != nil {
				results[i] = fund.NewErrorRecord(ticker, err.Error(), e.now())
				continue
			}
		}

		results[i] = e.fetchOne(ctx, ticker)

		slog.Info("fetched ticker",
			"ticker", ticker,
			"progress", float64(i+1)/float64(len(tickers)))
		if e.opts.Progress != nil {
			e.opts.Progress(i+1, len(tickers))
		}
	}

	return results
}

// fetchOne serves from cache when fresh, otherwise issues a fresh
// fetch. Concurrent callers for the same ticker share one flight.
func (e *Engine) fetchOne(ctx context.Context, ticker string) fund.Record {
	if rec, ok := e.store.Get(ticker); ok {
		return rec
	}

	v, _, _ := e.flights.Do(ticker, func() (any, error) {
		return e.fetchFresh(ctx, ticker), nil
	})
	return v.(fund.Record)
}

// fetchFresh runs the full pipeline for one ticker and stores the
// outcome, error records included, so a failing source is not hammered
// within the freshness window.
func (e *Engine) fetchFresh(ctx context.Context, ticker string) fund.Record {
	fetchedAt := e.now()

	var doc *goquery.Document
	err := e.retry(ctx, "page fetch", ticker, func(ctx context.Context) error {
		var ferr error
		doc, ferr = e.pages.FetchDocument(ctx, ticker)
		return ferr
	})
	if err != nil {
		slog.Warn("page fetch failed", "ticker", ticker, "error", err)
		rec := fund.NewErrorRecord(ticker, err.Error(), fetchedAt)
		e.store.Put(ticker, rec, fetchedAt)
		return rec
	}

	raw := e.extractor.ExtractAll(doc)
	name, _ := scrape.FundName(doc)

	// The quote API supplements fields the page did not yield; its
	// failure is contained, not fatal to the ticker.
	var summary *quote.Summary
	err = e.retry(ctx, "quote fetch", ticker, func(ctx context.Context) error {
		var ferr error
		summary, ferr = e.quotes.FetchSummary(ctx, ticker, e.opts.HistoryDays)
		return ferr
	})
	if err != nil {
		slog.Warn("quote fetch failed, continuing with page data only",
			"ticker", ticker, "error", err)
		summary = nil
	}

	rec := e.buildRecord(ticker, name, raw, summary, fetchedAt)
	if !rec.HasData() {
		rec = fund.NewErrorRecord(ticker, errNoFundData, fetchedAt)
	}
	e.store.Put(ticker, rec, fetchedAt)
	return rec
}

// buildRecord normalizes extractor output into a canonical record.
// Fields that fail normalization stay absent; they never become zeros.
func (e *Engine) buildRecord(ticker, name string, raw map[scrape.Field]string, summary *quote.Summary, fetchedAt time.Time) fund.Record {
	currency := fund.CurrencyFor(ticker)
	rec := fund.Record{
		Ticker:    ticker,
		Name:      ticker,
		Status:    fund.StatusSuccess,
		Currency:  currency,
		FetchedAt: fetchedAt,
	}

	if name != "" {
		rec.Name = name
	} else if summary != nil && summary.Name() != "" {
		rec.Name = summary.Name()
	}

	rec.LastPrice = e.amountField(ticker, raw, scrape.FieldLastPrice)
	rec.NAV = e.amountField(ticker, raw, scrape.FieldNAV)

	rec.Performance1M = e.percentField(ticker, raw, scrape.FieldPerf1M)
	if rec.Performance1M == nil && summary != nil {
		if v, err := quote.PerformanceOver(summary.Closes); err == nil {
			rec.Performance1M = &v
		}
	}

	rec.NAVChange1D = e.percentField(ticker, raw, scrape.FieldNAVChange1D)
	if rec.NAVChange1D == nil && summary != nil {
		if v, err := quote.DailyChange(summary.Closes); err == nil {
			rec.NAVChange1D = &v
		}
	}

	rec.ExpenseRatio = e.percentField(ticker, raw, scrape.FieldExpenseRatio)
	if rec.ExpenseRatio == nil && summary != nil && summary.ExpenseRatio != nil {
		v := *summary.ExpenseRatio
		rec.ExpenseRatio = &v
	}

	// Flows carry no numeric guarantee; keep the scraped text.
	rec.Flows1M = raw[scrape.FieldFlows1M]

	if v, ok := raw[scrape.FieldAUM]; ok {
		rec.AUM = v
	} else if summary != nil && summary.MarketCap != nil {
		rec.AUM = normalize.FormatMagnitude(*summary.MarketCap, currency)
	}

	return rec
}

func (e *Engine) amountField(ticker string, raw map[scrape.Field]string, f scrape.Field) *decimal.Decimal {
	v, ok := raw[f]
	if !ok {
		return nil
	}
	d, err := normalize.Amount(v)
	if err != nil {
		slog.Debug("dropping unparsable field",
			"ticker", ticker, "field", string(f), "raw", v, "error", err)
		return nil
	}
	return &d
}

func (e *Engine) percentField(ticker string, raw map[scrape.Field]string, f scrape.Field) *float64 {
	v, ok := raw[f]
	if !ok {
		return nil
	}
	p, err := normalize.Percent(v)
	if err != nil {
		slog.Debug("dropping unparsable field",
			"ticker", ticker, "field", string(f), "raw", v, "error", err)
		return nil
	}
	return &p
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
