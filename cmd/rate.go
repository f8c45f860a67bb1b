package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/fiscal/date"
	"github.com/etnz/fiscal/rates"
	"github.com/etnz/fiscal/yahoo"
	"github.com/google/subcommands"
)

// rateCmd prints the exchange rate a calculation uses.
type rateCmd struct {
	cfg  Config
	live bool
}

func (*rateCmd) Name() string     { return "rate" }
func (*rateCmd) Synopsis() string { return "prints the exchange rate of a day" }
func (*rateCmd) Usage() string {
	return `fcs rate [-source <source>] [-live] <from> <to> [<date>]

  Prints the exchange rate used to convert <from> into <to> on a day, today
  by default. When no quote exists on the day, the latest quote of the
  previous days is used.

  -live gets the current rate from Yahoo Finance instead.
`
}

func (c *rateCmd) SetFlags(f *flag.FlagSet) {
	d := defaults()
	f.StringVar(&c.cfg.Source, "source", d.Source, "Exchange rate source (file, sqlite, eodhd, yahoo)")
	f.StringVar(&c.cfg.RatesFile, "rates", d.RatesFile, "Rates file, used by the 'file' source")
	f.StringVar(&c.cfg.Database, "db", d.Database, "SQLite quotes database, used by the 'sqlite' source")
	f.BoolVar(&c.live, "live", false, "Get the current rate from Yahoo Finance")
}

func (c *rateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 || f.NArg() > 3 {
		fmt.Fprintln(os.Stderr, "Error: expected <from> <to> [<date>]")
		return subcommands.ExitUsageError
	}
	from, to := strings.ToUpper(f.Arg(0)), strings.ToUpper(f.Arg(1))
	on := date.Today()
	if f.NArg() == 3 {
		var err error
		if on, err = date.Parse(f.Arg(2)); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	d, err := settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	cfg := c.cfg
	cfg.CacheTTL, cfg.LogLevel, cfg.EODHDAPIKey = d.CacheTTL, d.LogLevel, d.EODHDAPIKey
	logger := newLogger(cfg.LogLevel)

	if c.live {
		cfg.Source = SourceYahoo
	}
	provider, release, err := rateProvider(ctx, &cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	if c.live {
		cache, ok := provider.(*rates.Cache)
		if !ok {
			fmt.Fprintln(os.Stderr, "Error: live rates need a cached source")
			return subcommands.ExitFailure
		}
		p := rates.Pair{From: from, To: to}
		day, rate, err := yahoo.New().Latest(ctx, p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting the live rate of %s: %v\n", p, err)
			return subcommands.ExitFailure
		}
		cache.Inject(p, day, rate)
		on = day
	}

	if provider == nil {
		fmt.Fprintln(os.Stderr, "Error: no rate source configured")
		return subcommands.ExitFailure
	}
	rate, ok, err := provider.Rate(ctx, from, to, on)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "No %s%s rate on %s or the %d days before.\n", from, to, on, rates.Lookback)
		return subcommands.ExitFailure
	}
	fmt.Printf("1 %s = %s %s on %s\n", from, rate, to, on)
	return subcommands.ExitSuccess
}
