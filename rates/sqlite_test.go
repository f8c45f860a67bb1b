package rates

import (
	"context"
	"testing"
	"time"

	"github.com/etnz/fiscal/date"
	"github.com/shopspring/decimal"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := OpenSQL(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("OpenSQL() unexpected error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLStore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	usdeur := Pair{"USD", "EUR"}

	h := new(date.History[decimal.Decimal])
	h.Append(date.New(2024, 1, 2), d("0.91"))
	h.Append(date.New(2024, 1, 5), d("0.5"))
	if err := s.Save(ctx, usdeur, h); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}
	// saving again replaces quotes and keeps the asset.
	h2 := new(date.History[decimal.Decimal])
	h2.Append(date.New(2024, 1, 2), d("0.9"))
	if err := s.Save(ctx, usdeur, h2); err != nil {
		t.Fatalf("Save() again unexpected error: %v", err)
	}

	r := date.Range{From: date.New(2024, 1, 1), To: date.New(2024, 1, 31)}
	got, err := s.Fetch(ctx, usdeur, r)
	if err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("Fetch() returned %d quotes, want 2", got.Len())
	}
	if v, _ := got.Get(date.New(2024, 1, 2)); !v.Equal(d("0.9")) {
		t.Errorf("quote on 2024-01-02 = %v, want 0.9", v)
	}

	inv, err := s.Fetch(ctx, usdeur.Inverse(), r)
	if err != nil {
		t.Fatalf("Fetch(inverse) unexpected error: %v", err)
	}
	if v, _ := inv.Get(date.New(2024, 1, 5)); !v.Equal(d("2")) {
		t.Errorf("inverse quote on 2024-01-05 = %v, want 2", v)
	}

	none, err := s.Fetch(ctx, Pair{"JPY", "EUR"}, r)
	if err != nil || none.Len() != 0 {
		t.Errorf("Fetch(unknown) = %d quotes, %v, want empty", none.Len(), err)
	}
}

func TestSQLStoreWithCache(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	h := new(date.History[decimal.Decimal])
	h.Append(date.New(2024, 2, 9), d("0.93")) // a friday
	if err := s.Save(ctx, Pair{"USD", "EUR"}, h); err != nil {
		t.Fatal(err)
	}

	c := NewCache(s, time.Hour, quiet)
	got, ok, err := c.Rate(ctx, "USD", "EUR", date.New(2024, 2, 11))
	if err != nil || !ok {
		t.Fatalf("Rate() = %v, %v, %v, want a rate", got, ok, err)
	}
	if !got.Equal(d("0.93")) {
		t.Errorf("Rate() on sunday = %v, want friday's 0.93", got)
	}
}
