package renderer

import (
	"time"

	"github.com/etnz/fiscal"
)

// ReportRenderOptions holds configuration for rendering a fiscal report.
type ReportRenderOptions struct {
	SkipItems bool // Only render the yearly totals and the wash sales.
}

// Report is the view of a fiscal.Report, with all values formatted.
type Report struct {
	Portfolio    string
	GeneratedAt  string
	Currency     string
	Years        []Year
	Degradations []string
}

// Year is the view of a fiscal.YearSummary.
type Year struct {
	Year      int
	Gains     string
	Losses    string
	Net       string
	Items     []Item
	WashSales []Item
}

// Item is the view of a fiscal.MatchResult.
type Item struct {
	Instrument       string
	Quantity         string
	SaleDate         string
	AcquisitionDate  string
	DaysHeld         int
	SaleValue        string
	AcquisitionValue string
	Result           string
	Disallowed       string
	Rate             string
	Notes            string
}

func newItem(r *fiscal.MatchResult) Item {
	disallowed := ""
	if r.IsWashSale {
		disallowed = r.WashSaleDisallowedLoss.String()
	}
	return Item{
		Instrument:       r.Label(),
		Quantity:         r.QuantitySold.String(),
		SaleDate:         r.SaleDate.Format(time.DateOnly),
		AcquisitionDate:  r.AcquisitionDate.Format(time.DateOnly),
		DaysHeld:         r.DaysHeld,
		SaleValue:        r.SaleValue.String(),
		AcquisitionValue: r.AcquisitionValue.String(),
		Result:           r.GrossResult.SignedString(),
		Disallowed:       disallowed,
		Rate:             r.ExchangeRateUsed.String(),
		Notes:            r.Notes,
	}
}

// NewReport builds the view of a report.
func NewReport(r *fiscal.Report) *Report {
	v := &Report{
		Portfolio:   r.Portfolio,
		GeneratedAt: r.GeneratedAt.Format(time.RFC3339),
		Currency:    r.ReportingCurrency,
	}
	for _, y := range r.Years {
		year := Year{
			Year:   y.Year,
			Gains:  y.TotalGains.String(),
			Losses: y.TotalLosses.String(),
			Net:    y.NetResult.SignedString(),
		}
		for _, item := range y.Items {
			year.Items = append(year.Items, newItem(item))
		}
		for _, item := range y.WashSales {
			year.WashSales = append(year.WashSales, newItem(item))
		}
		v.Years = append(v.Years, year)
	}
	for _, d := range r.Degradations {
		v.Degradations = append(v.Degradations, d.String())
	}
	return v
}

// RenderReport renders a fiscal report to a markdown string.
func RenderReport(r *fiscal.Report, opts ReportRenderOptions) string {
	partials := map[string]string{
		"report_title":        "report_title.md",
		"report_summary":      "report_summary.md",
		"report_year":         "report_year.md",
		"report_wash_sales":   "report_wash_sales.md",
		"report_degradations": "report_degradations.md",
	}
	// An empty file name results in an empty template.
	if !opts.SkipItems {
		partials["report_items"] = "report_items.md"
	} else {
		partials["report_items"] = ""
	}
	return renderTemplate("report", "report.md", partials, NewReport(r))
}
