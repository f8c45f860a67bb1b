package fiscal

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/etnz/fiscal/rates"
	"github.com/phuslu/log"
)

// DefaultReportingCurrency is used when a Calculator has none.
const DefaultReportingCurrency = "EUR"

// Calculator computes fiscal reports. Its zero value reports in EUR with a
// 60 days wash sale window and no exchange rates.
type Calculator struct {
	ReportingCurrency string
	Rates             rates.Provider // can be nil, then every conversion is missing
	WashSaleWindow    int            // in days
	Logger            *log.Logger
	Now               func() time.Time // report timestamp, defaults to time.Now
}

func (c *Calculator) reporting() string {
	if c.ReportingCurrency == "" {
		return DefaultReportingCurrency
	}
	return c.ReportingCurrency
}

func (c *Calculator) window() int {
	if c.WashSaleWindow <= 0 {
		return DefaultWashSaleWindow
	}
	return c.WashSaleWindow
}

func (c *Calculator) logger() *log.Logger {
	if c.Logger == nil {
		return &log.DefaultLogger
	}
	return c.Logger
}

func (c *Calculator) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Calculate computes the report of a portfolio from its operations, in feed
// order. ops is not modified.
//
// Invalid operations abort the calculation, there is no partial report.
func (c *Calculator) Calculate(ctx context.Context, portfolio string, ops []Operation) (*Report, error) {
	if err := ValidateOperations(ops); err != nil {
		return nil, err
	}
	reporting := c.reporting()
	if !knownCurrency(reporting) {
		return nil, fmt.Errorf("unknown reporting currency %q", reporting)
	}
	logger := c.logger()

	// private copy, normalization and matching annotate operations.
	list := make([]*Operation, len(ops))
	for i := range ops {
		op := ops[i]
		op.seq = i
		list[i] = &op
	}

	n := normalizer{reporting: reporting, provider: c.Rates, logger: logger}
	degradations, err := n.normalize(ctx, list)
	if err != nil {
		return nil, err
	}

	sortOperations(list)

	m := newMatcher(logger)
	for _, op := range list {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.process(op)
	}
	degradations = append(degradations, m.degradations...)

	e := newWashSaleEvaluator(c.window(), m.inventory, list)
	if err := e.evaluate(ctx, m.results); err != nil {
		return nil, err
	}

	report := &Report{
		Portfolio:         portfolio,
		GeneratedAt:       c.now(),
		ReportingCurrency: reporting,
		Years:             aggregate(m.results, reporting),
		Degradations:      degradations,
	}
	logger.Debug().Str("portfolio", portfolio).Int("operations", len(ops)).Int("results", len(m.results)).Int("degradations", len(degradations)).Msg("fiscal report computed")
	return report, nil
}

// sortOperations sorts by time, ties keep the feed order.
func sortOperations(ops []*Operation) {
	slices.SortStableFunc(ops, func(a, b *Operation) int {
		if a.before(b) {
			return -1
		}
		if b.before(a) {
			return 1
		}
		return 0
	})
}
