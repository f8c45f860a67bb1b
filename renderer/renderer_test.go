package renderer

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/etnz/fiscal"
	"github.com/phuslu/log"
)

func eur(v float64) fiscal.Money { return fiscal.M(v, "EUR") }

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func washSaleReport(t *testing.T) *fiscal.Report {
	t.Helper()
	c := &fiscal.Calculator{
		Logger: &log.Logger{Writer: &log.IOWriter{Writer: io.Discard}},
		Now:    func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
	report, err := c.Calculate(context.Background(), "main", []fiscal.Operation{
		fiscal.NewBuy(day("2023-01-01"), "ACME", fiscal.Q(100), eur(10), eur(0)),
		fiscal.NewSell(day("2023-02-01"), "ACME", fiscal.Q(100), eur(8), eur(0)),
		fiscal.NewBuy(day("2023-02-10"), "ACME", fiscal.Q(10), eur(9), eur(0)),
		fiscal.NewSell(day("2023-03-01"), "OTHER", fiscal.Q(1), eur(9), eur(0)),
	})
	if err != nil {
		t.Fatal(err)
	}
	return report
}

func TestRenderReport(t *testing.T) {
	got := RenderReport(washSaleReport(t), ReportRenderOptions{})
	for _, want := range []string{
		"# Fiscal Report\n",
		"* **Portfolio**: main\n",
		"* **Generated**: 2024-01-01T00:00:00Z\n",
		"| 2023 | €0.00 | -€180.00 | -€180.00 | 1 |\n",
		"\n## 2023\n",
		"| 2023-02-01 | ACME | 100 | 2023-01-01 | 31 | €800.00 | €1,000.00 | -€200.00 | -€20.00 |\n",
		"### Wash Sales",
		"Partial wash sale: 10% of the loss is disallowed",
		"## Warnings",
		"unmatched_sell OTHER",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderReport() does not contain %q, got:\n%s", want, got)
		}
	}
	if strings.Contains(got, "error") {
		t.Errorf("RenderReport() failed:\n%s", got)
	}
}

func TestRenderReportSkipItems(t *testing.T) {
	got := RenderReport(washSaleReport(t), ReportRenderOptions{SkipItems: true})
	if strings.Contains(got, "| Sale |") {
		t.Errorf("RenderReport(SkipItems) rendered the items:\n%s", got)
	}
	if !strings.Contains(got, "### Wash Sales") {
		t.Errorf("RenderReport(SkipItems) did not render the wash sales:\n%s", got)
	}
}

func TestRenderEmptyReport(t *testing.T) {
	got := RenderReport(&fiscal.Report{Portfolio: "empty", ReportingCurrency: "EUR"}, ReportRenderOptions{})
	if !strings.Contains(got, "No realized gains or losses.") {
		t.Errorf("RenderReport(empty) = \n%s", got)
	}
	if strings.Contains(got, "## Warnings") {
		t.Errorf("RenderReport(empty) has warnings:\n%s", got)
	}
}
