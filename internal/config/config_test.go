package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if len(cfg.Tickers) != 11 {
		t.Errorf("len(Tickers) = %d, want 11 defaults", len(cfg.Tickers))
	}
	if cfg.Tickers[0] != "TSLI" {
		t.Errorf("Tickers[0] = %q, want TSLI", cfg.Tickers[0])
	}
	if cfg.CacheTTLMinutes != 15 {
		t.Errorf("CacheTTLMinutes = %d, want 15", cfg.CacheTTLMinutes)
	}
	if cfg.MaxWorkers != 5 {
		t.Errorf("MaxWorkers = %d, want 5", cfg.MaxWorkers)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.FetchMode != "parallel" {
		t.Errorf("FetchMode = %q, want parallel", cfg.FetchMode)
	}
	if cfg.View != "cards" {
		t.Errorf("View = %q, want cards", cfg.View)
	}
	if cfg.FundPageBaseURL == "" || cfg.QuoteBaseURL == "" {
		t.Error("base URLs should have production defaults")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	envVars := map[string]string{
		"FUND_TICKERS":           "XYZ.L, DAXX.DE ,SPYY",
		"FUND_PAGE_BASE_URL":     "https://test.example.com/fund",
		"QUOTE_BASE_URL":         "https://test.example.com/chart",
		"FUND_USER_AGENT":        "TestAgent/1.0",
		"FUND_CACHE_TTL_MINUTES": "5",
		"FUND_MAX_WORKERS":       "3",
		"FUND_FETCH_MODE":        "sequential",
		"FUND_VIEW":              "table",
	}
	for key, value := range envVars {
		os.Setenv(key, value)
		defer os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	wantTickers := []string{"XYZ.L", "DAXX.DE", "SPYY"}
	if len(cfg.Tickers) != len(wantTickers) {
		t.Fatalf("Tickers = %v, want %v", cfg.Tickers, wantTickers)
	}
	for i, w := range wantTickers {
		if cfg.Tickers[i] != w {
			t.Errorf("Tickers[%d] = %q, want %q", i, cfg.Tickers[i], w)
		}
	}
	if cfg.FundPageBaseURL != "https://test.example.com/fund" {
		t.Errorf("FundPageBaseURL = %q", cfg.FundPageBaseURL)
	}
	if cfg.UserAgent != "TestAgent/1.0" {
		t.Errorf("UserAgent = %q, want TestAgent/1.0", cfg.UserAgent)
	}
	if cfg.CacheTTLMinutes != 5 {
		t.Errorf("CacheTTLMinutes = %d, want 5", cfg.CacheTTLMinutes)
	}
	if cfg.MaxWorkers != 3 {
		t.Errorf("MaxWorkers = %d, want 3", cfg.MaxWorkers)
	}
	if cfg.FetchMode != "sequential" {
		t.Errorf("FetchMode = %q, want sequential", cfg.FetchMode)
	}
	if cfg.View != "table" {
		t.Errorf("View = %q, want table", cfg.View)
	}
}

func TestLoad_InvalidFetchMode(t *testing.T) {
	os.Setenv("FUND_FETCH_MODE", "turbo")
	defer os.Unsetenv("FUND_FETCH_MODE")

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for invalid fetch mode, got nil")
	}
}

func TestLoad_InvalidView(t *testing.T) {
	os.Setenv("FUND_VIEW", "hologram")
	defer os.Unsetenv("FUND_VIEW")

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for invalid view, got nil")
	}
}

func TestLoad_InvalidWorkerCount(t *testing.T) {
	os.Setenv("FUND_MAX_WORKERS", "0")
	defer os.Unsetenv("FUND_MAX_WORKERS")

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for zero workers, got nil")
	}
}
