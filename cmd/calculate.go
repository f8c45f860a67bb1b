package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/fiscal"
	"github.com/etnz/fiscal/renderer"
	"github.com/google/subcommands"
)

// calculateCmd holds the flags for the 'calculate' subcommand.
type calculateCmd struct {
	cfg       Config
	portfolio string
	year      int
	json      bool
	skipItems bool
}

func (*calculateCmd) Name() string     { return "calculate" }
func (*calculateCmd) Synopsis() string { return "realized gains and losses per year" }
func (*calculateCmd) Usage() string {
	return `fcs calculate [-f <feed>] [-c <currency>] [-year <year>] [-source <source>] [-window <days>] [-json]

  Matches every sale with the earliest purchases (FIFO), disallows the losses
  of wash sales, converts results to the reporting currency and prints the
  realized gains and losses year by year.

  See 'fcs topic' for the details of each step.
`
}

func (c *calculateCmd) SetFlags(f *flag.FlagSet) {
	d := defaults()
	f.StringVar(&c.cfg.Feed, "f", d.Feed, "Operations feed (JSONL format)")
	f.StringVar(&c.portfolio, "portfolio", "", "Portfolio UUID. Defaults to a UUID derived from the feed path.")
	f.StringVar(&c.cfg.Currency, "c", d.Currency, "Reporting currency")
	f.IntVar(&c.year, "year", 0, "Only report this year")
	f.BoolVar(&c.json, "json", false, "Print the report as JSON")
	f.BoolVar(&c.skipItems, "skip-items", false, "Only print the yearly totals and the wash sales")
	f.StringVar(&c.cfg.RatesFile, "rates", d.RatesFile, "Rates file, used by the 'file' source")
	f.StringVar(&c.cfg.Database, "db", d.Database, "SQLite quotes database, used by the 'sqlite' source")
	f.StringVar(&c.cfg.Source, "source", d.Source, "Exchange rate source (none, file, sqlite, eodhd, yahoo)")
	f.IntVar(&c.cfg.Window, "window", d.Window, "Wash sale window in days, before and after the sale")
}

func (c *calculateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	d, err := settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	cfg := c.cfg
	cfg.CacheTTL, cfg.LogLevel = d.CacheTTL, d.LogLevel
	cfg.EODHDAPIKey, cfg.GeminiKey = d.EODHDAPIKey, d.GeminiKey
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	logger := newLogger(cfg.LogLevel)

	report, err := calculate(ctx, &cfg, logger, c.portfolio)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error calculating the fiscal report: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.year != 0 {
		report = report.Filter(c.year)
	}

	if c.json {
		if err := fiscal.EncodeReport(os.Stdout, report); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing the report: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.RenderReport(report, renderer.ReportRenderOptions{SkipItems: c.skipItems}))
	return subcommands.ExitSuccess
}
