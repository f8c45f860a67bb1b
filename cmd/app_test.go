package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etnz/fiscal"
	"github.com/etnz/fiscal/date"
	"github.com/etnz/fiscal/rates"
	"github.com/google/uuid"
	"github.com/phuslu/log"
	"github.com/shopspring/decimal"
)

const feed = `{"date":"2023-01-02","type":"buy","instrument":"ACME","currency":"USD","quantity":10,"price":100,"fees":0}
{"date":"2023-06-01","type":"sell","instrument":"ACME","currency":"USD","quantity":10,"price":110,"fees":0}
`

func quiet() *log.Logger { return &log.Logger{Writer: &log.IOWriter{Writer: io.Discard}} }

// workspace writes the feed and a rates file in a temporary directory and
// returns the configuration using them.
func workspace(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Feed = filepath.Join(dir, "operations.jsonl")
	cfg.RatesFile = filepath.Join(dir, "rates.jsonl")
	cfg.Database = filepath.Join(dir, "quotes.db")
	if err := os.WriteFile(cfg.Feed, []byte(feed), 0o644); err != nil {
		t.Fatal(err)
	}
	table := rates.NewTable()
	p := rates.Pair{From: "USD", To: "EUR"}
	table.Add(p, date.New(2023, 1, 2), decimal.RequireFromString("0.9"))
	table.Add(p, date.New(2023, 6, 1), decimal.RequireFromString("0.8"))
	if err := rates.SaveTable(cfg.RatesFile, table); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestPortfolioID(t *testing.T) {
	id := "1b4e28ba-2fa1-11d2-883f-0016d3cca427"
	if got, err := portfolioID(id, "x"); err != nil || got != id {
		t.Errorf("portfolioID(%q) = %q, %v", id, got, err)
	}
	if _, err := portfolioID("not-a-uuid", "x"); err == nil {
		t.Error("portfolioID(not-a-uuid) succeeded, want an error")
	}
	a, err := portfolioID("", "operations.jsonl")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := portfolioID("", "./operations.jsonl")
	if a != b {
		t.Errorf("portfolioID of the same feed differ: %s and %s", a, b)
	}
	if u := uuid.MustParse(a); u.Version() != 5 {
		t.Errorf("portfolioID() version = %d, want 5", u.Version())
	}
}

func TestCalculate(t *testing.T) {
	cfg := workspace(t)
	t.Setenv(EnvTestingNow, "2024-01-01 00:00:00")

	report, err := calculate(t.Context(), cfg, quiet(), "")
	if err != nil {
		t.Fatalf("calculate() failed: %v", err)
	}
	y, ok := report.Year(2023)
	if !ok {
		t.Fatalf("report has no 2023: %v", report.Years)
	}
	if want := fiscal.M(80, "EUR"); !y.NetResult.Equal(want) {
		t.Errorf("net result = %v, want %v", y.NetResult, want)
	}
	if want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC); !report.GeneratedAt.Equal(want) {
		t.Errorf("generated at = %v, want %v", report.GeneratedAt, want)
	}

	var b bytes.Buffer
	if err := fiscal.EncodeReport(&b, report); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), `"net_result"`) {
		t.Errorf("EncodeReport() = %s", b.String())
	}
}

func TestCalculateSQLite(t *testing.T) {
	cfg := workspace(t)
	table, err := rates.LoadTable(cfg.RatesFile)
	if err != nil {
		t.Fatal(err)
	}
	if err := storeRates(t.Context(), SourceSQLite, cfg, table); err != nil {
		t.Fatalf("storeRates() failed: %v", err)
	}
	cfg.Source = SourceSQLite

	report, err := calculate(t.Context(), cfg, quiet(), "")
	if err != nil {
		t.Fatalf("calculate() failed: %v", err)
	}
	if len(report.Degradations) != 0 {
		t.Errorf("degradations = %v, want none", report.Degradations)
	}
	y, _ := report.Year(2023)
	if want := fiscal.M(80, "EUR"); !y.NetResult.Equal(want) {
		t.Errorf("net result = %v, want %v", y.NetResult, want)
	}
}

func TestCalculateWithoutRates(t *testing.T) {
	cfg := workspace(t)
	cfg.Source = SourceNone

	report, err := calculate(t.Context(), cfg, quiet(), "")
	if err != nil {
		t.Fatalf("calculate() failed: %v", err)
	}
	if got := len(report.Degraded(fiscal.MissingRate)); got != 2 {
		t.Errorf("missing rates = %d, want 2", got)
	}
}

func TestRateProviderEODHDNeedsKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source = SourceEODHD
	if _, _, err := rateProvider(t.Context(), cfg, quiet()); err == nil {
		t.Error("rateProvider(eodhd) without key succeeded, want an error")
	}
}
