package date

import (
	"testing"
	"time"
)

func TestNewRange(t *testing.T) {
	testCases := []struct {
		name   string
		in     Date
		period Period
		want   Range
	}{
		{
			name:   "day",
			in:     New(2025, time.September, 8),
			period: Daily,
			want:   Range{From: New(2025, time.September, 8), To: New(2025, time.September, 8)},
		},
		{
			name:   "A leap year",
			in:     New(2024, time.February, 15),
			period: Monthly,
			want:   Range{From: New(2024, time.February, 1), To: New(2024, time.February, 29)},
		},
		{
			name:   "December",
			in:     New(2023, time.December, 31),
			period: Monthly,
			want:   Range{From: New(2023, time.December, 1), To: New(2023, time.December, 31)},
		},
		{
			name:   "year",
			in:     New(2023, time.June, 6),
			period: Yearly,
			want:   Range{From: New(2023, time.January, 1), To: New(2023, time.December, 31)},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewRange(tc.in, tc.period); got != tc.want {
				t.Errorf("NewRange() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRangeIdentifier(t *testing.T) {
	testCases := []struct {
		r    Range
		want string
	}{
		{Monthly.Range(New(2024, time.February, 15)), "2024-02"},
		{Yearly.Range(New(2024, time.February, 15)), "2024"},
		{Daily.Range(New(2024, time.February, 15)), "2024-02-15"},
		{Range{New(2024, time.February, 15), New(2024, time.March, 2)}, "2024-02-15_2024-03-02"},
	}
	for _, tc := range testCases {
		if got := tc.r.Identifier(); got != tc.want {
			t.Errorf("%v.Identifier() = %q, want %q", tc.r, got, tc.want)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]Period{"day": Daily, "Monthly": Monthly, "year": Yearly} {
		got, err := ParsePeriod(in)
		if err != nil {
			t.Errorf("ParsePeriod(%q) unexpected error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParsePeriod(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParsePeriod("weekly"); err == nil {
		t.Error("ParsePeriod(\"weekly\") expected an error")
	}
}
