package rates

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/etnz/fiscal/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// quoteLine is a line of a rates file.
type quoteLine struct {
	On   date.Date       `json:"on"`
	Pair string          `json:"pair"`
	Rate decimal.Decimal `json:"rate"`
}

// DecodeTable reads quotes, one JSON object per line, like
//
//	{"on":"2024-01-02","pair":"USDEUR","rate":0.9123}
func DecodeTable(r io.Reader) (*Table, error) {
	t := NewTable()
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue
		}
		var q quoteLine
		if err := json.Unmarshal(lineBytes, &q); err != nil {
			return nil, fmt.Errorf("line %d: cannot decode quote: %w", line, err)
		}
		p, err := ParsePair(q.Pair)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if !q.Rate.IsPositive() {
			return nil, fmt.Errorf("line %d: rate must be positive, got %s", line, q.Rate)
		}
		t.Add(p, q.On, q.Rate)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return t, nil
}

// Encode writes every quote, sorted by pair then day.
func (t *Table) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, p := range t.Pairs() {
		for day, v := range t.series[p].Values() {
			if err := enc.Encode(quoteLine{On: day, Pair: p.String(), Rate: v}); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadTable reads a rates file. A missing file is an empty table.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewTable(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open rates file: %w", err)
	}
	defer f.Close()
	t, err := DecodeTable(f)
	if err != nil {
		return nil, fmt.Errorf("cannot read rates file %q: %w", path, err)
	}
	return t, nil
}

// SaveTable writes a rates file.
func SaveTable(path string, t *Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create rates file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(f)
	if err := t.Encode(w); err != nil {
		return fmt.Errorf("cannot write rates file %q: %w", path, err)
	}
	return w.Flush()
}
