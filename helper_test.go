package fiscal

import (
	"io"
	"time"

	"github.com/phuslu/log"
	"github.com/shopspring/decimal"
)

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// dec parses an exact decimal, for expected values.
func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// day returns noon UTC of a day, so that days held are whole days.
func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.Add(12 * time.Hour)
}

func buy(on, instrument string, qty, price, fees float64) Operation {
	return NewBuy(day(on), instrument, Q(qty), EUR(price), EUR(fees))
}

func sell(on, instrument string, qty, price, fees float64) Operation {
	return NewSell(day(on), instrument, Q(qty), EUR(price), EUR(fees))
}

// inUSD changes the currency of an operation.
func inUSD(op Operation) Operation {
	op.Currency = "USD"
	op.Price = M(op.Price.Decimal(), "USD")
	op.Fees = M(op.Fees.Decimal(), "USD")
	return op
}

var quiet = &log.Logger{Writer: &log.IOWriter{Writer: io.Discard}}

var testNow = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// calculator returns a Calculator that logs nothing and has a fixed clock.
func calculator() *Calculator {
	return &Calculator{Logger: quiet, Now: func() time.Time { return testNow }}
}
