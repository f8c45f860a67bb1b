package fiscal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/etnz/fiscal/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// operationCmd is the JSON form of an operation in a feed.
type operationCmd struct {
	ID         string          `json:"id"`
	Date       string          `json:"date"`
	Type       Kind            `json:"type"`
	Instrument string          `json:"instrument"`
	Symbol     string          `json:"symbol"`
	Currency   string          `json:"currency"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Fees       decimal.Decimal `json:"fees"`
}

// ParseTime parses an operation date, either RFC 3339 or a plain day at
// midnight UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	d, err := date.Parse(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want RFC 3339 or YYYY-MM-DD", s)
	}
	return d.Time(), nil
}

// formatTime is the inverse of ParseTime.
func formatTime(t time.Time) string {
	if t.Location() == time.UTC && t.Equal(date.Of(t).Time()) {
		return date.Of(t).String()
	}
	return t.Format(time.RFC3339Nano)
}

// DecodeOperations reads a feed of operations, one JSON object per line, in
// feed order. Empty lines are skipped.
func DecodeOperations(r io.Reader) ([]Operation, error) {
	var ops []Operation
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(strings.TrimSpace(string(lineBytes))) == 0 {
			continue
		}
		var cmd operationCmd
		if err := json.Unmarshal(lineBytes, &cmd); err != nil {
			return nil, fmt.Errorf("line %d: cannot decode operation: %w", line, err)
		}
		on, err := ParseTime(cmd.Date)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ops = append(ops, Operation{
			ID:         cmd.ID,
			Time:       on,
			Kind:       cmd.Type,
			Instrument: cmd.Instrument,
			Symbol:     cmd.Symbol,
			Currency:   strings.ToUpper(cmd.Currency),
			Quantity:   Q(cmd.Quantity),
			Price:      M(cmd.Price, strings.ToUpper(cmd.Currency)),
			Fees:       M(cmd.Fees, strings.ToUpper(cmd.Currency)),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return ops, nil
}

// MarshalJSON writes the operation in its feed form.
func (o Operation) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("id", o.ID)
	w.Append("date", formatTime(o.Time))
	w.Append("type", o.Kind)
	w.Append("instrument", o.Instrument)
	w.Optional("symbol", o.Symbol)
	w.Append("currency", o.Currency)
	w.Append("quantity", o.Quantity)
	w.Append("price", o.Price.Decimal())
	w.Append("fees", o.Fees.Decimal())
	return w.MarshalJSON()
}

// EncodeOperations writes operations as a feed, one JSON object per line.
func EncodeOperations(w io.Writer, ops []Operation) error {
	for _, op := range ops {
		b, err := json.Marshal(op)
		if err != nil {
			return fmt.Errorf("cannot encode operation %s: %w", op.ref(), err)
		}
		b = append(b, '\n')
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

// EncodeReport writes the report as indented JSON.
func EncodeReport(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
