package fiscal

import (
	"fmt"

	"github.com/etnz/fiscal/date"
	"github.com/phuslu/log"
	"github.com/shopspring/decimal"
)

// matcher replays operations and matches sells against open lots, oldest first.
type matcher struct {
	inventory    *inventory
	results      []*MatchResult
	degradations []Degradation
	logger       *log.Logger
}

func newMatcher(logger *log.Logger) *matcher {
	return &matcher{inventory: newInventory(), logger: logger}
}

// process applies one operation. Operations must be processed in order.
func (m *matcher) process(op *Operation) {
	switch op.Kind {
	case Buy:
		m.inventory.open(op)
	case Sell:
		m.sell(op)
	}
}

func (m *matcher) sell(op *Operation) {
	want := op.Quantity
	for want.IsPositive() {
		lot, n := m.inventory.take(op.Instrument, want)
		if lot == nil {
			break
		}
		m.results = append(m.results, newMatchResult(op, lot.Buy, n))
		want = want.Sub(n)
	}
	if want.IsPositive() {
		m.logger.Warn().Str("operation", op.ref()).Str("instrument", op.Instrument).Stringer("unmatched", want).Msg("sell exceeds open lots")
		m.degradations = append(m.degradations, Degradation{
			Kind:       UnmatchedSell,
			Operation:  op.ID,
			Instrument: op.Instrument,
			Date:       op.Date(),
			Quantity:   want,
			Detail:     fmt.Sprintf("sold %s but only %s were held", op.Quantity, op.Quantity.Sub(want)),
		})
	}
}

// impliedRate is the rate of the sale: its reporting price over its price,
// or 1 for a zero price.
func impliedRate(sale *Operation) decimal.Decimal {
	switch {
	case sale.Price.IsZero():
		return decimal.NewFromInt(1)
	case !sale.Rate.IsZero():
		return sale.Rate
	}
	return sale.ReportingPrice.Ratio(sale.Price)
}

// share returns the part of fees attributed to n units out of total.
func share(fees Money, n, total Quantity) Money {
	return fees.Portion(n, total)
}

// newMatchResult computes the result of n units of sale matched with buy.
//
// Reporting values of each leg use its own converted price, but the gross
// result is the original currency result converted at the sale's rate.
func newMatchResult(sale, buy *Operation, n Quantity) *MatchResult {
	rate := impliedRate(sale)
	reporting := sale.ReportingPrice.Currency()

	saleFees := share(sale.Fees, n, sale.Quantity)
	saleValue := sale.Price.Mul(n).Sub(saleFees)
	saleFeesR := share(sale.ReportingFees, n, sale.Quantity)
	buyFees := share(buy.Fees, n, buy.Quantity)
	buyValue := buy.Price.Mul(n).Add(buyFees)
	buyFeesR := share(buy.ReportingFees, n, buy.Quantity)
	gross := saleValue.Sub(buyValue)

	return &MatchResult{
		Instrument:   sale.Instrument,
		Symbol:       sale.Symbol,
		Currency:     sale.Currency,
		QuantitySold: n,

		SaleDate:          sale.Time,
		SalePrice:         sale.ReportingPrice,
		SaleFees:          saleFeesR,
		SaleValue:         sale.ReportingPrice.Mul(n).Sub(saleFeesR),
		SalePriceOriginal: sale.Price,
		SaleFeesOriginal:  saleFees,
		SaleValueOriginal: saleValue,

		AcquisitionDate:          buy.Time,
		AcquisitionPrice:         buy.ReportingPrice,
		AcquisitionFees:          buyFeesR,
		AcquisitionValue:         buy.ReportingPrice.Mul(n).Add(buyFeesR),
		AcquisitionPriceOriginal: buy.Price,
		AcquisitionFeesOriginal:  buyFees,
		AcquisitionValueOriginal: buyValue,

		GrossResult:         gross.Convert(rate, reporting),
		GrossResultOriginal: gross,
		ExchangeRateUsed:    rate,
		DaysHeld:            date.Of(sale.Time).DaysSince(date.Of(buy.Time)),

		WashSaleDisallowedLoss: M(0, reporting),

		sale:        sale,
		acquisition: buy,
	}
}
