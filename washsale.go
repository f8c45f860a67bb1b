package fiscal

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultWashSaleWindow is the number of days around a sale in which a
// repurchase disallows its loss.
const DefaultWashSaleWindow = 60

// washSaleEvaluator flags loss results whose instrument was bought again
// around the sale.
type washSaleEvaluator struct {
	window time.Duration
	buys   map[string][]*Operation // by instrument, in processing order
	inv    *inventory
	used   map[int]Quantity // quantity of a buy already used to disallow a loss, by seq
}

func newWashSaleEvaluator(days int, inv *inventory, ops []*Operation) *washSaleEvaluator {
	e := &washSaleEvaluator{
		window: time.Duration(days) * 24 * time.Hour,
		buys:   make(map[string][]*Operation),
		inv:    inv,
		used:   make(map[int]Quantity),
	}
	for _, op := range ops {
		if op.Kind == Buy {
			e.buys[op.Instrument] = append(e.buys[op.Instrument], op)
		}
	}
	return e
}

// evaluate annotates every loss result, in order.
func (e *washSaleEvaluator) evaluate(ctx context.Context, results []*MatchResult) error {
	for _, r := range results {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.GrossResult.IsNegative() {
			e.apply(r)
		}
	}
	return nil
}

// inWindow reports whether t is within the window around the sale, bounds included.
func (e *washSaleEvaluator) inWindow(sale, t time.Time) bool {
	return !t.Before(sale.Add(-e.window)) && !t.After(sale.Add(e.window))
}

func (e *washSaleEvaluator) apply(r *MatchResult) {
	var matched Quantity
	for _, buy := range e.buys[r.Instrument] {
		if !matched.LessThan(r.QuantitySold) {
			break
		}
		if buy.Time.Equal(r.AcquisitionDate) || !e.inWindow(r.SaleDate, buy.Time) {
			continue
		}
		available := buy.Quantity.Sub(e.inv.Consumed(buy)).Sub(e.used[buy.seq])
		if !available.IsPositive() {
			continue
		}
		n := available.Min(r.QuantitySold.Sub(matched))
		e.used[buy.seq] = e.used[buy.seq].Add(n)
		matched = matched.Add(n)
	}
	if !matched.IsPositive() {
		return
	}
	r.IsWashSale = true
	r.WashSaleDisallowedLoss = r.GrossResult.Portion(matched, r.QuantitySold)
	r.Notes = washSaleNote(matched, r.QuantitySold, int(e.window/(24*time.Hour)))
}

func washSaleNote(matched, sold Quantity, days int) string {
	kind := "Partial"
	if matched.Equal(sold) {
		kind = "Total"
	}
	pct := matched.Ratio(sold).Mul(decimal.NewFromInt(100)).Round(2).String()
	if pct == "0" {
		pct = "<0.01"
	}
	return fmt.Sprintf("%s wash sale: %s%% of the loss is disallowed, %s of %s units bought again within %d days of the sale.",
		kind, pct, matched, sold, days)
}
