package rates

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"github.com/etnz/fiscal/date"
	"github.com/phuslu/log"
	"github.com/shopspring/decimal"
)

// Table is an in-memory set of quote series. It is both a Provider and a
// Source. Its zero value is not usable, use NewTable.
type Table struct {
	series map[Pair]*date.History[decimal.Decimal]
	Logger *log.Logger
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{series: make(map[Pair]*date.History[decimal.Decimal])}
}

func (t *Table) logger() *log.Logger {
	if t.Logger == nil {
		return &log.DefaultLogger
	}
	return t.Logger
}

// Add sets the quote of a pair on a day.
func (t *Table) Add(p Pair, on date.Date, rate decimal.Decimal) {
	h, ok := t.series[p]
	if !ok {
		h = new(date.History[decimal.Decimal])
		t.series[p] = h
	}
	h.Append(on, rate)
}

// Merge adds every quote of h to the pair.
func (t *Table) Merge(p Pair, h *date.History[decimal.Decimal]) {
	for day, v := range h.Values() {
		t.Add(p, day, v)
	}
}

// Pairs returns the pairs with quotes, sorted.
func (t *Table) Pairs() []Pair {
	return slices.SortedFunc(maps.Keys(t.series), func(a, b Pair) int {
		return cmp.Compare(a.String(), b.String())
	})
}

// History returns the quotes stored for the pair, without inverse fallback.
func (t *Table) History(p Pair) (*date.History[decimal.Decimal], bool) {
	h, ok := t.series[p]
	return h, ok
}

// Len returns the total number of quotes.
func (t *Table) Len() int {
	n := 0
	for _, h := range t.series {
		n += h.Len()
	}
	return n
}

// Rate returns the rate on a day, or the most recent within Lookback days,
// trying the inverse pair if the pair has no quotes.
func (t *Table) Rate(ctx context.Context, from, to string, on date.Date) (decimal.Decimal, bool, error) {
	if from == to {
		return one, true, nil
	}
	p := Pair{From: from, To: to}
	if h, ok := t.series[p]; ok {
		return t.within(p, h, on, false)
	}
	if h, ok := t.series[p.Inverse()]; ok {
		return t.within(p, h, on, true)
	}
	return decimal.Decimal{}, false, nil
}

func (t *Table) within(p Pair, h *date.History[decimal.Decimal], on date.Date, inverse bool) (decimal.Decimal, bool, error) {
	day, v, ok := h.ValueWithin(on, Lookback)
	if !ok || !v.IsPositive() {
		return decimal.Decimal{}, false, nil
	}
	if day != on {
		t.logger().Info().Stringer("pair", p).Stringer("date", on).Stringer("quote", day).Msg("using an earlier quote")
	}
	if inverse {
		v = one.Div(v)
	}
	return v, true, nil
}

// Fetch returns the quotes of the pair within r, derived from the inverse
// pair if needed.
func (t *Table) Fetch(ctx context.Context, p Pair, r date.Range) (*date.History[decimal.Decimal], error) {
	if h, ok := t.series[p]; ok {
		return h.Sub(r), nil
	}
	if h, ok := t.series[p.Inverse()]; ok {
		return invert(h.Sub(r)), nil
	}
	return new(date.History[decimal.Decimal]), nil
}
