package fiscal

import (
	"time"

	"github.com/etnz/fiscal/date"
	"github.com/shopspring/decimal"
)

// Operation is a single buy or sell of an instrument.
//
// Price and Fees are expressed in the instrument's Currency. ReportingPrice,
// ReportingFees and Rate are populated by Normalize.
type Operation struct {
	ID         string
	Time       time.Time
	Kind       Kind
	Instrument string
	Symbol     string
	Currency   string
	Quantity   Quantity
	Price      Money // per unit
	Fees       Money // total for the operation

	ReportingPrice Money
	ReportingFees  Money
	Rate           decimal.Decimal // from Currency to the reporting currency
	RateMissing    bool

	seq int // position in the feed, breaks ties on Time
}

// NewBuy returns a buy operation of quantity units at price, fees included.
func NewBuy(on time.Time, instrument string, quantity Quantity, price, fees Money) Operation {
	return newOperation(Buy, on, instrument, quantity, price, fees)
}

// NewSell returns a sell operation of quantity units at price, fees included.
func NewSell(on time.Time, instrument string, quantity Quantity, price, fees Money) Operation {
	return newOperation(Sell, on, instrument, quantity, price, fees)
}

func newOperation(kind Kind, on time.Time, instrument string, quantity Quantity, price, fees Money) Operation {
	cur := price.Currency()
	if cur == "" {
		cur = fees.Currency()
	}
	return Operation{
		Time:       on,
		Kind:       kind,
		Instrument: instrument,
		Currency:   cur,
		Quantity:   quantity,
		Price:      M(price.Decimal(), cur),
		Fees:       M(fees.Decimal(), cur),
	}
}

// Date returns the calendar day of the operation in its own location.
func (o Operation) Date() date.Date { return date.Of(o.Time) }

// Label returns the display name of the instrument.
func (o Operation) Label() string {
	if o.Symbol != "" {
		return o.Symbol
	}
	return o.Instrument
}

// normalized reports whether the reporting fields have been set.
func (o Operation) normalized() bool { return o.ReportingPrice.Currency() != "" }

// before is the total order used to replay operations.
func (o *Operation) before(p *Operation) bool {
	if !o.Time.Equal(p.Time) {
		return o.Time.Before(p.Time)
	}
	return o.seq < p.seq
}
