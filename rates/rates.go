// Package rates provides exchange rates between currencies.
//
// A Provider answers single rate lookups, a Source returns a series of rates
// for a date range. Table is an in-memory Source and Provider, Cache turns
// any Source into a Provider with batch preloading, and SQLStore persists
// quotes in a SQLite database.
//
// Whatever the implementation, a missing quote on a day falls back to the
// most recent quote at most Lookback days before, and a missing pair falls
// back to the inverse of its reverse pair.
package rates

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/fiscal/date"
	"github.com/shopspring/decimal"
)

// Lookback is the maximum age, in days, of a quote used for a day without quote.
const Lookback = 7

// Pair is a currency pair. Its rate is the value of one From in To.
type Pair struct {
	From, To string
}

func (p Pair) String() string { return p.From + p.To }

// Inverse returns the reverse pair.
func (p Pair) Inverse() Pair { return Pair{From: p.To, To: p.From} }

// ParsePair parses "USDEUR", "USD/EUR" or "USDEUR=X".
func ParsePair(s string) (Pair, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, "=X")
	s = strings.ReplaceAll(s, "/", "")
	if len(s) != 6 {
		return Pair{}, fmt.Errorf("invalid currency pair %q, want a form like USDEUR or USD/EUR", s)
	}
	return Pair{From: s[:3], To: s[3:]}, nil
}

// Provider returns the rate of a pair on a day. ok is false if there is no
// rate, err is reserved to failures to get an answer.
type Provider interface {
	Rate(ctx context.Context, from, to string, on date.Date) (rate decimal.Decimal, ok bool, err error)
}

// Preloader is implemented by providers that can fetch every rate of a
// calculation in a single call.
type Preloader interface {
	Preload(ctx context.Context, pairs []Pair, r date.Range) error
}

// Source returns the quotes of a pair within a range. The history is empty
// if the pair is unknown.
type Source interface {
	Fetch(ctx context.Context, p Pair, r date.Range) (*date.History[decimal.Decimal], error)
}

var one = decimal.NewFromInt(1)

// invert returns the history of 1/rate.
func invert(h *date.History[decimal.Decimal]) *date.History[decimal.Decimal] {
	inv := new(date.History[decimal.Decimal])
	for day, v := range h.Values() {
		if v.IsPositive() {
			inv.Append(day, one.Div(v))
		}
	}
	return inv
}

// lookbackRange extends r with the days a lookback might need.
func lookbackRange(r date.Range) date.Range {
	return date.Range{From: r.From.Add(-Lookback), To: r.To}
}
