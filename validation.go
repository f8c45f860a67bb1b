package fiscal

import (
	"errors"
	"fmt"
)

// ErrInvalidOperation is the root of all operation validation errors.
var ErrInvalidOperation = errors.New("invalid operation")

// Validate returns an error joining every problem found in the operation.
func (o Operation) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w %s: %s", ErrInvalidOperation, o.ref(), fmt.Sprintf(format, args...)))
	}
	if o.Kind != Buy && o.Kind != Sell {
		fail("type must be 'buy' or 'sell'")
	}
	if o.Time.IsZero() {
		fail("date is required")
	}
	if o.Instrument == "" {
		fail("instrument is required")
	}
	if o.Currency == "" {
		fail("currency is required")
	} else if !knownCurrency(o.Currency) {
		fail("unknown currency %q", o.Currency)
	}
	if !o.Quantity.IsPositive() {
		fail("quantity must be positive, got %s", o.Quantity)
	}
	if o.Price.IsNegative() {
		fail("price cannot be negative, got %s", o.Price.Decimal())
	}
	if o.Fees.IsNegative() {
		fail("fees cannot be negative, got %s", o.Fees.Decimal())
	}
	if c := o.Price.Currency(); c != "" && c != o.Currency {
		fail("price currency %q does not match %q", c, o.Currency)
	}
	if c := o.Fees.Currency(); c != "" && c != o.Currency {
		fail("fees currency %q does not match %q", c, o.Currency)
	}
	return errors.Join(errs...)
}

// ref identifies the operation in error messages.
func (o Operation) ref() string {
	if o.ID != "" {
		return o.ID
	}
	return fmt.Sprintf("#%d (%s %s on %s)", o.seq+1, o.Kind, o.Label(), o.Time.Format("2006-01-02"))
}

// ValidateOperations validates every operation, and that each instrument is
// always priced in the same currency.
func ValidateOperations(ops []Operation) error {
	var errs []error
	currencies := make(map[string]string)
	for i := range ops {
		op := ops[i]
		op.seq = i
		if err := op.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if c, ok := currencies[op.Instrument]; ok && c != op.Currency {
			errs = append(errs, fmt.Errorf("%w %s: instrument %q is priced in %s and %s", ErrInvalidOperation, op.ref(), op.Instrument, c, op.Currency))
			continue
		}
		currencies[op.Instrument] = op.Currency
	}
	return errors.Join(errs...)
}
