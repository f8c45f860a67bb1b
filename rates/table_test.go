package rates

import (
	"context"
	"testing"

	"github.com/etnz/fiscal/date"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParsePair(t *testing.T) {
	tests := []struct {
		in      string
		want    Pair
		wantErr bool
	}{
		{in: "USDEUR", want: Pair{"USD", "EUR"}},
		{in: "usd/eur", want: Pair{"USD", "EUR"}},
		{in: "GBPUSD=X", want: Pair{"GBP", "USD"}},
		{in: "USD", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePair(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePair(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePair(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTableRate(t *testing.T) {
	ctx := context.Background()
	table := NewTable()
	usdeur := Pair{"USD", "EUR"}
	table.Add(usdeur, date.New(2024, 1, 2), d("0.9"))
	table.Add(usdeur, date.New(2024, 1, 10), d("0.8"))

	tests := []struct {
		name     string
		from, to string
		on       date.Date
		want     string
		wantOK   bool
	}{
		{name: "same currency", from: "EUR", to: "EUR", on: date.New(2024, 1, 2), want: "1", wantOK: true},
		{name: "exact day", from: "USD", to: "EUR", on: date.New(2024, 1, 2), want: "0.9", wantOK: true},
		{name: "lookback", from: "USD", to: "EUR", on: date.New(2024, 1, 9), want: "0.9", wantOK: true},
		{name: "lookback too old", from: "USD", to: "EUR", on: date.New(2024, 1, 20), wantOK: false},
		{name: "before any quote", from: "USD", to: "EUR", on: date.New(2023, 12, 31), wantOK: false},
		{name: "inverse", from: "EUR", to: "USD", on: date.New(2024, 1, 10), want: "1.25", wantOK: true},
		{name: "unknown pair", from: "JPY", to: "EUR", on: date.New(2024, 1, 2), wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := table.Rate(ctx, tt.from, tt.to, tt.on)
			if err != nil {
				t.Fatalf("Rate() unexpected error: %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("Rate() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !got.Equal(d(tt.want)) {
				t.Errorf("Rate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTableFetch(t *testing.T) {
	ctx := context.Background()
	table := NewTable()
	eurusd := Pair{"EUR", "USD"}
	table.Add(eurusd, date.New(2024, 1, 2), d("1.25"))
	table.Add(eurusd, date.New(2024, 1, 3), d("2"))
	table.Add(eurusd, date.New(2024, 2, 1), d("4"))

	r := date.Range{From: date.New(2024, 1, 1), To: date.New(2024, 1, 31)}
	h, err := table.Fetch(ctx, eurusd.Inverse(), r)
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if h.Len() != 2 {
		t.Fatalf("Fetch() returned %d quotes, want 2", h.Len())
	}
	if v, _ := h.Get(date.New(2024, 1, 3)); !v.Equal(d("0.5")) {
		t.Errorf("inverse quote = %v, want 0.5", v)
	}

	h, err = table.Fetch(ctx, Pair{"JPY", "EUR"}, r)
	if err != nil || h.Len() != 0 {
		t.Errorf("Fetch(unknown) = %d quotes, %v, want empty", h.Len(), err)
	}
}
