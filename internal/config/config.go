package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Defaults for the scalar knobs the engine consumes.
const (
	DefaultCacheTTLMinutes = 15
	DefaultMaxWorkers      = 5
	DefaultMaxRetries      = 3
	DefaultTimeoutSeconds  = 10
)

// defaultTickers is the fund universe tracked out of the box.
var defaultTickers = []string{
	"TSLI", "YGLD", "SPYY", "GOOI", "QQQY",
	"COIY", "METY", "ONVD", "OAMZ", "AAPY", "YMSF",
}

// Config holds all configuration for the fund tracker.
type Config struct {
	// Tickers is the fixed, ordered fund universe.
	Tickers []string `mapstructure:"tickers"`

	// Base URLs for the remote sources (configurable for testing).
	FundPageBaseURL string `mapstructure:"fund_page_base_url"`
	QuoteBaseURL    string `mapstructure:"quote_base_url"`

	// UserAgent overrides the browser-like default sent to the page source.
	UserAgent string `mapstructure:"user_agent"`

	// Engine knobs.
	CacheTTLMinutes int    `mapstructure:"cache_ttl_minutes"`
	MaxWorkers      int    `mapstructure:"max_workers"`
	MaxRetries      int    `mapstructure:"max_retries"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds"`
	FetchMode       string `mapstructure:"fetch_mode"` // parallel or sequential

	// View selects the output format: cards or table.
	View string `mapstructure:"view"`
}

// Load reads configuration from environment variables and an optional
// config file. Environment variables take precedence over config file
// values.
//
// Expected environment variables (all optional):
//   - FUND_TICKERS (comma-separated)
//   - FUND_PAGE_BASE_URL
//   - QUOTE_BASE_URL
//   - FUND_USER_AGENT
//   - FUND_CACHE_TTL_MINUTES
//   - FUND_MAX_WORKERS
//   - FUND_MAX_RETRIES
//   - FUND_TIMEOUT_SECONDS
//   - FUND_FETCH_MODE (parallel|sequential)
//   - FUND_VIEW (cards|table)
func Load() (*Config, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.SetDefault("tickers", defaultTickers)
	v.SetDefault("fund_page_base_url", "https://www.trackinsight.com/en/fund")
	v.SetDefault("quote_base_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	v.SetDefault("cache_ttl_minutes", DefaultCacheTTLMinutes)
	v.SetDefault("max_workers", DefaultMaxWorkers)
	v.SetDefault("max_retries", DefaultMaxRetries)
	v.SetDefault("timeout_seconds", DefaultTimeoutSeconds)
	v.SetDefault("fetch_mode", "parallel")
	v.SetDefault("view", "cards")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.funds-data")

	// Read config file (ignore if not found)
	_ = v.ReadInConfig()

	v.BindEnv("tickers", "FUND_TICKERS")
	v.BindEnv("fund_page_base_url", "FUND_PAGE_BASE_URL")
	v.BindEnv("quote_base_url", "QUOTE_BASE_URL")
	v.BindEnv("user_agent", "FUND_USER_AGENT")
	v.BindEnv("cache_ttl_minutes", "FUND_CACHE_TTL_MINUTES")
	v.BindEnv("max_workers", "FUND_MAX_WORKERS")
	v.BindEnv("max_retries", "FUND_MAX_RETRIES")
	v.BindEnv("timeout_seconds", "FUND_TIMEOUT_SECONDS")
	v.BindEnv("fetch_mode", "FUND_FETCH_MODE")
	v.BindEnv("view", "FUND_VIEW")

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// FUND_TICKERS arrives as one comma-separated string from the env;
	// entries may also carry stray whitespace from config files.
	cleaned := make([]string, 0, len(config.Tickers))
	for _, t := range config.Tickers {
		for _, p := range strings.Split(t, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cleaned = append(cleaned, p)
			}
		}
	}
	config.Tickers = cleaned

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if len(c.Tickers) == 0 {
		return fmt.Errorf("no tickers configured")
	}
	if c.FetchMode != "parallel" && c.FetchMode != "sequential" {
		return fmt.Errorf("invalid fetch_mode %q: must be parallel or sequential", c.FetchMode)
	}
	if c.View != "cards" && c.View != "table" {
		return fmt.Errorf("invalid view %q: must be cards or table", c.View)
	}
	if c.MaxWorkers <= 0 {
		return fmt.Errorf("max_workers must be positive, got %d", c.MaxWorkers)
	}
	if c.CacheTTLMinutes <= 0 {
		return fmt.Errorf("cache_ttl_minutes must be positive, got %d", c.CacheTTLMinutes)
	}
	return nil
}
