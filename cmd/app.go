// Package cmd implements fcs, the command line application computing the
// fiscal report of a portfolio.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/fiscal"
	"github.com/etnz/fiscal/eodhd"
	"github.com/etnz/fiscal/rates"
	"github.com/etnz/fiscal/yahoo"
	"github.com/google/subcommands"
	"github.com/google/uuid"
	"github.com/phuslu/log"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&calculateCmd{}, "report")
	c.Register(&fmtCmd{}, "operations")
	c.Register(&fetchRatesCmd{}, "rates")
	c.Register(&rateCmd{}, "rates")
	c.Register(&topicCmd{}, "help")
	c.Register(&assistCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", ".fiscal.toml", "Path to the TOML configuration file")

// Verbose forces debug logs.
var Verbose = flag.Bool("v", false, "Enable debug logs")

var (
	dotEnvOnce sync.Once
	dotEnvErr  error

	configMu   sync.Mutex
	configPath string // path config was loaded from
	config     *Config
	configErr  error
)

// settings returns the configuration loaded from the -config file. It is
// loaded again when -config changes, since shell completion builds every
// command's flags before the global flags are parsed.
func settings() (*Config, error) {
	dotEnvOnce.Do(func() {
		if err := loadDotEnv(); err != nil {
			dotEnvErr = fmt.Errorf("cannot load .env: %w", err)
		}
	})
	if dotEnvErr != nil {
		return nil, dotEnvErr
	}
	configMu.Lock()
	defer configMu.Unlock()
	if (config == nil && configErr == nil) || configPath != *configFile {
		configPath = *configFile
		config, configErr = LoadConfig(configPath, os.Getenv)
	}
	return config, configErr
}

// defaults returns the configuration for flag defaults, falling back to the
// built-in defaults. The loading error is reported by Execute.
func defaults() *Config {
	cfg, err := settings()
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// newLogger returns the logger writing to stderr at the configured level.
func newLogger(level string) *log.Logger {
	lvl := log.ParseLevel(level)
	if *Verbose {
		lvl = log.DebugLevel
	}
	logger := &log.Logger{
		Level: lvl,
		Writer: &log.ConsoleWriter{
			Writer:      os.Stderr,
			ColorOutput: log.IsTerminal(os.Stderr.Fd()),
		},
	}
	log.DefaultLogger = *logger
	return logger
}

// printMarkdown renders md for the terminal, or prints it raw when stdout is
// not a terminal.
func printMarkdown(md string) {
	if !log.IsTerminal(os.Stdout.Fd()) {
		fmt.Print(md)
		return
	}
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// DecodeFeed reads the operations feed at path.
func DecodeFeed(path string) ([]fiscal.Operation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open feed: %w", err)
	}
	defer f.Close()
	ops, err := fiscal.DecodeOperations(f)
	if err != nil {
		return nil, fmt.Errorf("cannot read feed %q: %w", path, err)
	}
	return ops, nil
}

// portfolioID returns id when it is a valid UUID, or a stable name based UUID
// of the absolute feed path when id is empty.
func portfolioID(id, feed string) (string, error) {
	if id != "" {
		u, err := uuid.Parse(id)
		if err != nil {
			return "", fmt.Errorf("invalid portfolio id %q: %w", id, err)
		}
		return u.String(), nil
	}
	abs, err := filepath.Abs(feed)
	if err != nil {
		return "", err
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(abs))).String(), nil
}

// rateSource returns the batch source named by cfg.Source. The returned
// function releases it.
func rateSource(ctx context.Context, cfg *Config, logger *log.Logger) (rates.Source, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Source {
	case SourceFile:
		t, err := rates.LoadTable(cfg.RatesFile)
		if err != nil {
			return nil, nil, err
		}
		t.Logger = logger
		return t, noop, nil
	case SourceSQLite:
		s, err := rates.OpenSQL(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case SourceEODHD:
		if cfg.EODHDAPIKey == "" {
			return nil, nil, errors.New("EODHD API key is not set, use the " + EnvEODHDAPIKey + " environment variable")
		}
		return eodhd.New(cfg.EODHDAPIKey, logger), noop, nil
	case SourceYahoo:
		return yahoo.New(), noop, nil
	}
	return nil, nil, fmt.Errorf("rate source %q cannot fetch rates", cfg.Source)
}

// rateProvider returns the provider used by calculations. Only a rates file
// is read directly, every other source is behind a cache.
func rateProvider(ctx context.Context, cfg *Config, logger *log.Logger) (rates.Provider, func() error, error) {
	if cfg.Source == SourceNone {
		return nil, func() error { return nil }, nil
	}
	src, release, err := rateSource(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if t, ok := src.(*rates.Table); ok {
		return t, release, nil
	}
	ttl, err := cfg.TTL()
	if err != nil {
		release()
		return nil, nil, err
	}
	return rates.NewCache(src, ttl, logger), release, nil
}

// calculate computes the report of the feed with cfg.
func calculate(ctx context.Context, cfg *Config, logger *log.Logger, portfolio string) (*fiscal.Report, error) {
	ops, err := DecodeFeed(cfg.Feed)
	if err != nil {
		return nil, err
	}
	id, err := portfolioID(portfolio, cfg.Feed)
	if err != nil {
		return nil, err
	}
	provider, release, err := rateProvider(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer release()

	c := &fiscal.Calculator{
		ReportingCurrency: cfg.Currency,
		Rates:             provider,
		WashSaleWindow:    cfg.Window,
		Logger:            logger,
		Now:               now,
	}
	return c.Calculate(ctx, id, ops)
}
