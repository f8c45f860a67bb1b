package fiscal

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeOperations(t *testing.T) {
	input := `{"id":"b1","date":"2023-01-01","type":"buy","instrument":"isin:FR0000120271","symbol":"TTE","currency":"eur","quantity":100,"price":"10","fees":1.5}

{"id":"s1","date":"2023-02-01T15:04:05+01:00","type":"SELL","instrument":"isin:FR0000120271","currency":"EUR","quantity":"100","price":8,"fees":0}
`
	ops, err := DecodeOperations(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeOperations() unexpected error: %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("got %d operations, want 2", len(ops))
	}
	b := ops[0]
	if b.Kind != Buy || b.Currency != "EUR" || b.Label() != "TTE" {
		t.Errorf("first operation = %+v", b)
	}
	if !b.Time.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Time = %v, want 2023-01-01 UTC", b.Time)
	}
	if !b.Fees.Equal(EUR(1.5)) || !b.Price.Equal(EUR(10)) || !b.Quantity.Equal(Q(100)) {
		t.Errorf("amounts = %v %v %v", b.Quantity, b.Price, b.Fees)
	}
	s := ops[1]
	if s.Kind != Sell || s.Label() != "isin:FR0000120271" {
		t.Errorf("second operation = %+v", s)
	}
	if !s.Time.Equal(time.Date(2023, 2, 1, 14, 4, 5, 0, time.UTC)) {
		t.Errorf("Time = %v", s.Time)
	}
}

func TestDecodeOperationsErrors(t *testing.T) {
	tests := map[string]string{
		"bad json": "{",
		"bad date": `{"date":"yesterday","type":"buy"}`,
		"bad type": `{"date":"2023-01-01","type":"dividend"}`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeOperations(strings.NewReader(input))
			if err == nil || !strings.Contains(err.Error(), "line 1") {
				t.Errorf("DecodeOperations(%q) error = %v, want a line 1 error", input, err)
			}
		})
	}
}

func TestEncodeOperations(t *testing.T) {
	op := buy("2023-01-01", "ACME", 10, 9.5, 0.25)
	op.Time = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	op.ID = "b1"
	op2 := inUSD(sell("2023-02-01", "ACME", 10, 12, 0))
	op2.Symbol = "AC"

	var b bytes.Buffer
	if err := EncodeOperations(&b, []Operation{op, op2}); err != nil {
		t.Fatalf("EncodeOperations() unexpected error: %v", err)
	}
	want := `{"id":"b1","date":"2023-01-01","type":"buy","instrument":"ACME","currency":"EUR","quantity":10,"price":9.5,"fees":0.25}
{"date":"2023-02-01T12:00:00Z","type":"sell","instrument":"ACME","symbol":"AC","currency":"USD","quantity":10,"price":12,"fees":0}
`
	if diff := cmp.Diff(want, b.String()); diff != "" {
		t.Errorf("EncodeOperations() mismatch (-want +got):\n%s", diff)
	}

	back, err := DecodeOperations(&b)
	if err != nil {
		t.Fatalf("DecodeOperations() unexpected error: %v", err)
	}
	if !back[1].Time.Equal(op2.Time) || !back[0].Fees.Equal(op.Fees) {
		t.Errorf("DecodeOperations(EncodeOperations()) = %+v", back)
	}
}

func TestEncodeReport(t *testing.T) {
	c := calculator()
	report, err := c.Calculate(t.Context(), "p1", []Operation{
		buy("2023-01-01", "ACME", 100, 10, 0),
		sell("2023-02-01", "ACME", 100, 8, 0),
		buy("2023-02-10", "ACME", 10, 9, 0),
	})
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := EncodeReport(&b, report); err != nil {
		t.Fatalf("EncodeReport() unexpected error: %v", err)
	}

	var got struct {
		Portfolio   string    `json:"portfolio_id"`
		GeneratedAt time.Time `json:"generated_at"`
		Years       []struct {
			Year        int `json:"year"`
			TotalLosses struct {
				Amount   json.Number `json:"amount"`
				Currency string      `json:"currency"`
			} `json:"total_losses"`
			Items []struct {
				IsWashSale bool `json:"is_wash_sale"`
				Disallowed struct {
					Amount json.Number `json:"amount"`
				} `json:"wash_sale_disallowed_loss"`
				DaysHeld int `json:"days_held"`
			} `json:"items"`
			WashSales []json.RawMessage `json:"pending_wash_sales"`
		} `json:"years"`
	}
	if err := json.Unmarshal(b.Bytes(), &got); err != nil {
		t.Fatalf("report is not valid JSON: %v\n%s", err, b.String())
	}
	if got.Portfolio != "p1" || !got.GeneratedAt.Equal(testNow) {
		t.Errorf("header = %q %v", got.Portfolio, got.GeneratedAt)
	}
	if len(got.Years) != 1 {
		t.Fatalf("got %d years, want 1", len(got.Years))
	}
	y := got.Years[0]
	if y.Year != 2023 || y.TotalLosses.Amount != "-180" || y.TotalLosses.Currency != "EUR" {
		t.Errorf("year = %+v", y)
	}
	if len(y.Items) != 1 || !y.Items[0].IsWashSale || y.Items[0].Disallowed.Amount != "-20" || y.Items[0].DaysHeld != 31 {
		t.Errorf("items = %+v", y.Items)
	}
	if len(y.WashSales) != 1 {
		t.Errorf("got %d pending wash sales, want 1", len(y.WashSales))
	}
}
