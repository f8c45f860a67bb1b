package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/fiscal"
	"github.com/etnz/fiscal/rates"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Environment variables read by fcs. They take precedence over the
// configuration file.
const (
	EnvCurrency    = "FISCAL_CURRENCY"
	EnvWindow      = "FISCAL_WINDOW"
	EnvFeed        = "FISCAL_FEED"
	EnvRatesFile   = "FISCAL_RATES_FILE"
	EnvDatabase    = "FISCAL_DATABASE"
	EnvSource      = "FISCAL_SOURCE"
	EnvCacheTTL    = "FISCAL_CACHE_TTL"
	EnvLogLevel    = "FISCAL_LOG_LEVEL"
	EnvTestingNow  = "FISCAL_TESTING_NOW"
	EnvEODHDAPIKey = "EODHD_API_KEY"
	EnvGeminiKey   = "GEMINI_API_KEY"
)

// Rate sources.
const (
	SourceNone   = "none"
	SourceFile   = "file"
	SourceSQLite = "sqlite"
	SourceEODHD  = "eodhd"
	SourceYahoo  = "yahoo"
)

// Config holds the settings of fcs. They are resolved from defaults, then the
// TOML configuration file, then the environment, then command line flags.
type Config struct {
	Currency    string `toml:"currency"`
	Window      int    `toml:"window"`
	Feed        string `toml:"feed"`
	RatesFile   string `toml:"rates_file"`
	Database    string `toml:"database"`
	Source      string `toml:"source"`
	CacheTTL    string `toml:"cache_ttl"`
	LogLevel    string `toml:"log_level"`
	EODHDAPIKey string `toml:"eodhd_api_key"`
	GeminiKey   string `toml:"gemini_api_key"`
}

// DefaultConfig returns the settings used without configuration.
func DefaultConfig() *Config {
	return &Config{
		Currency:  fiscal.DefaultReportingCurrency,
		Window:    fiscal.DefaultWashSaleWindow,
		Feed:      "operations.jsonl",
		RatesFile: "rates.jsonl",
		Database:  "quotes.db",
		Source:    SourceFile,
		CacheTTL:  rates.DefaultTTL.String(),
		LogLevel:  "info",
	}
}

// LoadConfig reads the configuration file at path over the defaults, then
// the environment. A missing file is not an error.
func LoadConfig(path string, getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("cannot read configuration: %w", err)
		default:
			if err := toml.Unmarshal(content, cfg); err != nil {
				return nil, fmt.Errorf("cannot parse configuration %q: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) error {
	for name, dst := range map[string]*string{
		EnvCurrency:    &c.Currency,
		EnvFeed:        &c.Feed,
		EnvRatesFile:   &c.RatesFile,
		EnvDatabase:    &c.Database,
		EnvSource:      &c.Source,
		EnvCacheTTL:    &c.CacheTTL,
		EnvLogLevel:    &c.LogLevel,
		EnvEODHDAPIKey: &c.EODHDAPIKey,
		EnvGeminiKey:   &c.GeminiKey,
	} {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			*dst = v
		}
	}
	if v := strings.TrimSpace(getenv(EnvWindow)); v != "" {
		w, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvWindow, v, err)
		}
		c.Window = w
	}
	return nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	var errs []error
	c.Currency = strings.ToUpper(c.Currency)
	if c.Window <= 0 {
		errs = append(errs, fmt.Errorf("wash sale window must be positive, got %d", c.Window))
	}
	switch c.Source {
	case SourceNone, SourceFile, SourceSQLite, SourceEODHD, SourceYahoo:
	default:
		errs = append(errs, fmt.Errorf("unknown rate source %q", c.Source))
	}
	if _, err := c.TTL(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// TTL returns the rate cache expiration.
func (c *Config) TTL() (time.Duration, error) {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid cache ttl %q: %w", c.CacheTTL, err)
	}
	return d, nil
}

// loadDotEnv loads the .env file of the current directory, if any. Variables
// already set are kept.
func loadDotEnv() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// now returns the report timestamp, FISCAL_TESTING_NOW when set.
func now() time.Time {
	if v := os.Getenv(EnvTestingNow); v != "" {
		if t, err := time.Parse(time.DateTime, v); err == nil {
			return t.UTC()
		}
	}
	return time.Now()
}
