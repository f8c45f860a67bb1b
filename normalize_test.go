package fiscal

import (
	"context"
	"testing"

	"github.com/etnz/fiscal/date"
)

func TestNormalize(t *testing.T) {
	ops := []Operation{
		inUSD(buy("2023-01-02", "ACME", 10, 100, 5)),
		buy("2023-01-03", "LOCAL", 1, 50, 1),
		inUSD(buy("2023-08-20", "ACME", 10, 100, 0)), // no quote within 7 days
	}
	degradations, err := Normalize(context.Background(), ops, "EUR", usdRates())
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}

	converted := ops[0]
	assertMoney(t, "ReportingPrice", converted.ReportingPrice, "90")
	assertMoney(t, "ReportingFees", converted.ReportingFees, "4.5")
	assertMoney(t, "Price", converted.Price, "100")
	if converted.ReportingPrice.Currency() != "EUR" || converted.Price.Currency() != "USD" {
		t.Errorf("currencies = %s, %s", converted.ReportingPrice.Currency(), converted.Price.Currency())
	}
	if !converted.Quantity.Equal(Q(10)) {
		t.Errorf("Quantity = %v, want 10", converted.Quantity)
	}

	local := ops[1]
	if !local.Rate.Equal(dec("1")) || !local.ReportingPrice.Equal(EUR(50)) || local.RateMissing {
		t.Errorf("local operation = %+v", local)
	}

	missing := ops[2]
	if !missing.RateMissing || !missing.ReportingPrice.Equal(EUR(100)) {
		t.Errorf("missing rate operation = %+v", missing)
	}
	if len(degradations) != 1 {
		t.Fatalf("got %d degradations, want 1", len(degradations))
	}
	if d := degradations[0]; d.Kind != MissingRate || d.Date != date.New(2023, 8, 20) || d.Instrument != "ACME" {
		t.Errorf("degradation = %v", d)
	}
}
