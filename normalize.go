package fiscal

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/etnz/fiscal/date"
	"github.com/etnz/fiscal/rates"
	"github.com/phuslu/log"
	"github.com/shopspring/decimal"
)

// Normalize sets the reporting price and fees of every operation, in place.
//
// Operations in a foreign currency are converted with the rate of their day.
// When provider has no rate the amounts are kept 1:1 and a MissingRate
// degradation is returned. Provider errors abort the normalization.
func Normalize(ctx context.Context, ops []Operation, reporting string, provider rates.Provider) ([]Degradation, error) {
	ptrs := make([]*Operation, len(ops))
	for i := range ops {
		ptrs[i] = &ops[i]
	}
	n := normalizer{reporting: reporting, provider: provider, logger: &log.DefaultLogger}
	return n.normalize(ctx, ptrs)
}

type normalizer struct {
	reporting string
	provider  rates.Provider // can be nil
	logger    *log.Logger
}

func (n *normalizer) normalize(ctx context.Context, ops []*Operation) ([]Degradation, error) {
	if err := n.preload(ctx, ops); err != nil {
		return nil, err
	}
	var degradations []Degradation
	one := decimal.NewFromInt(1)
	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rate, found := one, true
		if op.Currency != n.reporting {
			var err error
			rate, found, err = n.rate(ctx, op)
			if err != nil {
				return nil, fmt.Errorf("cannot convert %s from %s to %s: %w", op.ref(), op.Currency, n.reporting, err)
			}
			if !found {
				rate = one
				n.logger.Warn().Str("operation", op.ref()).Str("from", op.Currency).Str("to", n.reporting).Stringer("date", op.Date()).Msg("missing exchange rate, converting 1:1")
				degradations = append(degradations, Degradation{
					Kind:       MissingRate,
					Operation:  op.ID,
					Instrument: op.Instrument,
					Date:       op.Date(),
					Detail:     fmt.Sprintf("no %s%s rate, amounts kept in %s", op.Currency, n.reporting, op.Currency),
				})
			}
		}
		op.Rate = rate
		op.RateMissing = !found
		op.ReportingPrice = op.Price.Convert(rate, n.reporting)
		op.ReportingFees = op.Fees.Convert(rate, n.reporting)
	}
	return degradations, nil
}

func (n *normalizer) rate(ctx context.Context, op *Operation) (decimal.Decimal, bool, error) {
	if n.provider == nil {
		return decimal.Decimal{}, false, nil
	}
	return n.provider.Rate(ctx, op.Currency, n.reporting, op.Date())
}

// preload asks the provider, when it supports it, for every rate needed in
// a single call.
func (n *normalizer) preload(ctx context.Context, ops []*Operation) error {
	p, ok := n.provider.(rates.Preloader)
	if !ok {
		return nil
	}
	var pairs []rates.Pair
	var span date.Range
	for _, op := range ops {
		if op.Currency == n.reporting {
			continue
		}
		pair := rates.Pair{From: op.Currency, To: n.reporting}
		if !slices.Contains(pairs, pair) {
			pairs = append(pairs, pair)
		}
		span = span.Extend(op.Date())
	}
	if len(pairs) == 0 {
		return nil
	}
	slices.SortFunc(pairs, func(a, b rates.Pair) int { return cmp.Compare(a.String(), b.String()) })
	if err := p.Preload(ctx, pairs, span); err != nil {
		return fmt.Errorf("cannot preload exchange rates for %s: %w", span, err)
	}
	return nil
}
