package fiscal

import (
	"fmt"

	"github.com/etnz/fiscal/date"
)

// DegradationKind names the reason a calculation went on with a fallback.
type DegradationKind int

const (
	// MissingRate means no exchange rate was found for an operation, its
	// amounts were converted 1:1.
	MissingRate DegradationKind = iota + 1
	// UnmatchedSell means a sell exceeded the open lots of its instrument,
	// the excess quantity produced no result.
	UnmatchedSell
)

func (k DegradationKind) String() string {
	switch k {
	case MissingRate:
		return "missing_rate"
	case UnmatchedSell:
		return "unmatched_sell"
	default:
		return fmt.Sprintf("DegradationKind(%d)", int(k))
	}
}

func (k DegradationKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Degradation records an operation processed with a fallback. Degradations
// never abort a calculation.
type Degradation struct {
	Kind       DegradationKind
	Operation  string // operation ID, if any
	Instrument string
	Date       date.Date
	Quantity   Quantity // the unmatched quantity, for UnmatchedSell
	Detail     string
}

func (d Degradation) String() string {
	return fmt.Sprintf("%s: %s %s: %s", d.Date, d.Kind, d.Instrument, d.Detail)
}

func (d Degradation) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("kind", d.Kind)
	w.Optional("operation", d.Operation)
	w.Append("instrument", d.Instrument)
	w.Append("date", d.Date)
	if d.Kind == UnmatchedSell {
		w.Append("quantity", d.Quantity)
	}
	w.Optional("detail", d.Detail)
	return w.MarshalJSON()
}
