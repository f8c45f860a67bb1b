package cmd

import (
	"cmp"
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/etnz/fiscal"
	"github.com/etnz/fiscal/date"
	"github.com/etnz/fiscal/rates"
	"github.com/google/subcommands"
)

// fetchRatesCmd downloads exchange rates into the rates file or the quotes
// database.
type fetchRatesCmd struct {
	cfg   Config
	pairs string
	start string
	end   string
	store string
}

func (*fetchRatesCmd) Name() string     { return "fetch-rates" }
func (*fetchRatesCmd) Synopsis() string { return "downloads exchange rates" }
func (*fetchRatesCmd) Usage() string {
	return `fcs fetch-rates [-source eodhd|yahoo] [-store file|sqlite] [-pairs USDEUR,GBPEUR] [-start <date>] [-end <date>]

  Downloads daily exchange rates and stores them in the rates file or in the
  quotes database, where 'fcs calculate' reads them.

  By default, fetches every currency of the feed against the reporting
  currency, over the days of the feed.

  The eodhd source requires the EODHD_API_KEY environment variable.
`
}

func (c *fetchRatesCmd) SetFlags(f *flag.FlagSet) {
	d := defaults()
	f.StringVar(&c.cfg.Feed, "f", d.Feed, "Operations feed, used to find the pairs and days to fetch")
	f.StringVar(&c.cfg.Currency, "c", d.Currency, "Reporting currency")
	f.StringVar(&c.cfg.Source, "source", SourceYahoo, "Source to fetch from (eodhd, yahoo)")
	f.StringVar(&c.store, "store", SourceFile, "Where to store the rates (file, sqlite)")
	f.StringVar(&c.cfg.RatesFile, "rates", d.RatesFile, "Rates file")
	f.StringVar(&c.cfg.Database, "db", d.Database, "SQLite quotes database")
	f.StringVar(&c.pairs, "pairs", "", "Comma separated pairs to fetch, like USDEUR. Defaults to the feed currencies.")
	f.StringVar(&c.start, "start", "", "First day to fetch. Defaults to the first day of the feed.")
	f.StringVar(&c.end, "end", "", "Last day to fetch. Defaults to the last day of the feed.")
}

func (c *fetchRatesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	d, err := settings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	cfg := c.cfg
	cfg.CacheTTL, cfg.LogLevel, cfg.EODHDAPIKey = d.CacheTTL, d.LogLevel, d.EODHDAPIKey
	if cfg.Source != SourceEODHD && cfg.Source != SourceYahoo {
		fmt.Fprintf(os.Stderr, "Error: cannot fetch rates from %q, use eodhd or yahoo\n", cfg.Source)
		return subcommands.ExitUsageError
	}
	logger := newLogger(cfg.LogLevel)

	pairs, r, err := c.plan(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if len(pairs) == 0 {
		fmt.Fprintln(os.Stderr, "Nothing to fetch, every operation is in the reporting currency.")
		return subcommands.ExitSuccess
	}

	src, release, err := rateSource(ctx, &cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer release()

	fetched := rates.NewTable()
	for _, p := range pairs {
		h, err := src.Fetch(ctx, p, r)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching %s: %v\n", p, err)
			return subcommands.ExitFailure
		}
		fetched.Merge(p, h)
		logger.Info().Stringer("pair", p).Int("quotes", h.Len()).Msg("fetched rates")
	}

	if err := storeRates(ctx, c.store, &cfg, fetched); err != nil {
		fmt.Fprintf(os.Stderr, "Error storing rates: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "✅ Successfully fetched %d rates for %d pairs over %s.\n", fetched.Len(), len(pairs), r)
	return subcommands.ExitSuccess
}

// plan returns the pairs and the days to fetch.
func (c *fetchRatesCmd) plan(cfg Config) ([]rates.Pair, date.Range, error) {
	var pairs []rates.Pair
	for _, s := range strings.Split(c.pairs, ",") {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		p, err := rates.ParsePair(s)
		if err != nil {
			return nil, date.Range{}, err
		}
		pairs = append(pairs, p)
	}

	var ops []fiscal.Operation
	if len(pairs) == 0 || c.start == "" || c.end == "" {
		var err error
		if ops, err = DecodeFeed(cfg.Feed); err != nil {
			return nil, date.Range{}, err
		}
	}
	feedPairs, r := feedNeeds(ops, strings.ToUpper(cfg.Currency))
	if len(pairs) == 0 {
		pairs = feedPairs
	}
	// the first days of the range also need a quote on the days before.
	r.From = r.From.Add(-rates.Lookback)
	if c.start != "" {
		d, err := date.Parse(c.start)
		if err != nil {
			return nil, date.Range{}, err
		}
		r.From = d
	}
	if c.end != "" {
		d, err := date.Parse(c.end)
		if err != nil {
			return nil, date.Range{}, err
		}
		r.To = d
	}
	if r.IsEmpty() {
		return nil, date.Range{}, fmt.Errorf("empty range %s", r)
	}
	return pairs, r, nil
}

// feedNeeds returns the sorted pairs needed to convert ops into reporting,
// and the days of ops.
func feedNeeds(ops []fiscal.Operation, reporting string) ([]rates.Pair, date.Range) {
	var pairs []rates.Pair
	var r date.Range
	for _, op := range ops {
		r = r.Extend(op.Date())
		p := rates.Pair{From: op.Currency, To: reporting}
		if p.From != p.To && !slices.Contains(pairs, p) {
			pairs = append(pairs, p)
		}
	}
	slices.SortFunc(pairs, func(a, b rates.Pair) int { return cmp.Compare(a.String(), b.String()) })
	return pairs, r
}

// storeRates merges fetched into the rates file or saves it in the quotes
// database.
func storeRates(ctx context.Context, store string, cfg *Config, fetched *rates.Table) error {
	switch store {
	case SourceFile:
		t, err := rates.LoadTable(cfg.RatesFile)
		if err != nil {
			return err
		}
		for _, p := range fetched.Pairs() {
			h, _ := fetched.History(p)
			t.Merge(p, h)
		}
		return rates.SaveTable(cfg.RatesFile, t)
	case SourceSQLite:
		s, err := rates.OpenSQL(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer s.Close()
		for _, p := range fetched.Pairs() {
			h, _ := fetched.History(p)
			if err := s.Save(ctx, p, h); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown store %q, use file or sqlite", store)
}
