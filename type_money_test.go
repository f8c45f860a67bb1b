package fiscal

import (
	"encoding/json"
	"testing"
)

func TestMoneyString(t *testing.T) {
	tests := []struct {
		m    Money
		want string
	}{
		{m: EUR(1234.5), want: "€1,234.50"},
		{m: USD(-20), want: "-$20.00"},
		{m: M(dec("0.125"), "USD"), want: "$0.13"},
		{m: M(1500, "JPY"), want: "¥1,500"},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", tt.m.Decimal(), got, tt.want)
		}
	}
	if got := EUR(0).SignedString(); got != "-" {
		t.Errorf("SignedString(0) = %q, want -", got)
	}
	if got := USD(3).SignedString(); got != "+$3.00" {
		t.Errorf("SignedString(3) = %q, want +$3.00", got)
	}
}

func TestMoneyArithmetic(t *testing.T) {
	if got := USD(120).Convert(dec("0.8"), "EUR"); !got.Equal(EUR(96)) {
		t.Errorf("Convert() = %v, want 96 EUR", got)
	}
	if got := EUR(96).Ratio(USD(120)); !got.Equal(dec("0.8")) {
		t.Errorf("Ratio() = %v, want 0.8", got)
	}
	if got := EUR(2).Mul(Q(4)).Div(Q(10)); !got.Equal(EUR(0.8)) {
		t.Errorf("Mul().Div() = %v, want 0.8", got)
	}
	if got := EUR(-2).Portion(Q(dec("1e-17")), Q(1)); !got.Decimal().Equal(dec("-2e-17")) {
		t.Errorf("Portion() = %v, want -2e-17", got.Decimal())
	}
	if got := Q(dec("1e-20")).Ratio(Q(3)); got.IsZero() {
		t.Error("Ratio() of a tiny quantity is zero")
	}
	if got := (Money{}).Add(EUR(3)); got.Currency() != "EUR" {
		t.Errorf("zero Money is not weak: %q", got.Currency())
	}
	defer func() {
		if recover() == nil {
			t.Error("adding EUR and USD did not panic")
		}
	}()
	EUR(1).Add(USD(1))
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(M(dec("-20.000"), "EUR"))
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"currency":"EUR","amount":-20}`; string(b) != want {
		t.Errorf("json.Marshal() = %s, want %s", b, want)
	}
	b, _ = json.Marshal(M(dec("0.333333333333"), "EUR"))
	if want := `{"currency":"EUR","amount":0.333333333333}`; string(b) != want {
		t.Errorf("json.Marshal() = %s, want all digits %s", b, want)
	}
}

func TestKind(t *testing.T) {
	for _, s := range []string{"buy", "BUY", " Buy "} {
		if k, err := ParseKind(s); err != nil || k != Buy {
			t.Errorf("ParseKind(%q) = %v, %v, want buy", s, k, err)
		}
	}
	if _, err := ParseKind("short"); err == nil {
		t.Error("ParseKind(short) succeeded")
	}
	b, err := json.Marshal(Sell)
	if err != nil || string(b) != `"sell"` {
		t.Errorf("json.Marshal(Sell) = %s, %v", b, err)
	}
	if _, err := json.Marshal(Kind(0)); err == nil {
		t.Error("json.Marshal(Kind(0)) succeeded")
	}
}
