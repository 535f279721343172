package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tarantababu/funds-data/internal/cache"
	"github.com/Tarantababu/funds-data/internal/config"
	"github.com/Tarantababu/funds-data/internal/engine"
	"github.com/Tarantababu/funds-data/internal/quote"
	"github.com/Tarantababu/funds-data/internal/render"
	"github.com/Tarantababu/funds-data/internal/scrape"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	pages := scrape.NewClient(cfg.FundPageBaseURL, cfg.UserAgent, timeout)
	quotes := quote.NewClient(cfg.QuoteBaseURL, timeout)
	store := cache.New(time.Duration(cfg.CacheTTLMinutes) * time.Minute)

	opts := engine.Options{
		Mode:        engine.Mode(cfg.FetchMode),
		MaxWorkers:  cfg.MaxWorkers,
		MaxAttempts: cfg.MaxRetries,
	}
	if opts.Mode == engine.ModeSequential {
		opts.Progress = func(done, total int) {
			fmt.Printf("Fetched %d/%d tickers\n", done, total)
		}
	}
	eng := engine.New(pages, quotes, store, opts)

	// Generous upper bound: sequential mode with full backoff on every
	// ticker is the slowest legitimate run.
	fetchCtx, fetchCancel := context.WithTimeout(ctx, 5*time.Minute)
	defer fetchCancel()

	fmt.Println("Fetching latest fund data...")
	batch := eng.FetchAll(fetchCtx, cfg.Tickers)

	fmt.Println()
	if err := render.Write(os.Stdout, render.View(cfg.View), batch.Records, batch.FetchedAt); err != nil {
		log.Fatalf("Failed to render output: %v", err)
	}
}
