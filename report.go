package fiscal

import (
	"iter"
	"slices"
	"time"
)

// YearSummary aggregates the results of the sales of one calendar year.
type YearSummary struct {
	Year        int
	TotalGains  Money // sum of the positive results that are not wash sales
	TotalLosses Money // sum of the deductible part of the negative results
	NetResult   Money
	Items       []*MatchResult
	WashSales   []*MatchResult
}

func (y *YearSummary) MarshalJSON() ([]byte, error) {
	items := y.Items
	if items == nil {
		items = []*MatchResult{}
	}
	wash := y.WashSales
	if wash == nil {
		wash = []*MatchResult{}
	}
	var w jsonObjectWriter
	w.Append("year", y.Year)
	w.Append("total_gains", y.TotalGains)
	w.Append("total_losses", y.TotalLosses)
	w.Append("net_result", y.NetResult)
	w.Append("items", items)
	w.Append("pending_wash_sales", wash)
	return w.MarshalJSON()
}

// add accounts for one result of the year.
func (y *YearSummary) add(r *MatchResult) {
	y.Items = append(y.Items, r)
	switch {
	case r.IsWashSale:
		if d := r.Deductible(); d.IsNegative() {
			y.TotalLosses = y.TotalLosses.Add(d)
		}
		y.WashSales = append(y.WashSales, r)
	case r.GrossResult.IsNegative():
		y.TotalLosses = y.TotalLosses.Add(r.GrossResult)
	default:
		y.TotalGains = y.TotalGains.Add(r.GrossResult)
	}
	y.NetResult = y.TotalGains.Add(y.TotalLosses)
}

// Report is the realized gains and losses of a portfolio, per year.
type Report struct {
	Portfolio         string
	GeneratedAt       time.Time
	ReportingCurrency string
	Years             []*YearSummary // ascending
	Degradations      []Degradation
}

// aggregate groups results by year of sale, years in ascending order.
func aggregate(results []*MatchResult, reporting string) []*YearSummary {
	byYear := make(map[int]*YearSummary)
	for _, r := range results {
		year := r.SaleDate.Year()
		y, ok := byYear[year]
		if !ok {
			zero := M(0, reporting)
			y = &YearSummary{Year: year, TotalGains: zero, TotalLosses: zero, NetResult: zero}
			byYear[year] = y
		}
		y.add(r)
	}
	years := make([]*YearSummary, 0, len(byYear))
	for _, y := range byYear {
		years = append(years, y)
	}
	slices.SortFunc(years, func(a, b *YearSummary) int { return a.Year - b.Year })
	return years
}

// Year returns the summary of year, if any sale happened that year.
func (r *Report) Year(year int) (*YearSummary, bool) {
	for _, y := range r.Years {
		if y.Year == year {
			return y, true
		}
	}
	return nil, false
}

// Filter returns a copy of the report restricted to one year. Degradations
// are kept when they happened that year.
func (r *Report) Filter(year int) *Report {
	f := *r
	f.Years = nil
	if y, ok := r.Year(year); ok {
		f.Years = []*YearSummary{y}
	}
	f.Degradations = nil
	for _, d := range r.Degradations {
		if d.Date.Year() == year {
			f.Degradations = append(f.Degradations, d)
		}
	}
	return &f
}

// Results iterates over every result of the report, in year order.
func (r *Report) Results() iter.Seq[*MatchResult] {
	return func(yield func(*MatchResult) bool) {
		for _, y := range r.Years {
			for _, item := range y.Items {
				if !yield(item) {
					return
				}
			}
		}
	}
}

// Degraded returns the degradations of the given kind.
func (r *Report) Degraded(kind DegradationKind) []Degradation {
	var out []Degradation
	for _, d := range r.Degradations {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

func (r *Report) MarshalJSON() ([]byte, error) {
	years := r.Years
	if years == nil {
		years = []*YearSummary{}
	}
	var w jsonObjectWriter
	w.Append("portfolio_id", r.Portfolio)
	w.Append("generated_at", r.GeneratedAt)
	w.Append("reporting_currency", r.ReportingCurrency)
	w.Append("years", years)
	if len(r.Degradations) > 0 {
		w.Append("degradations", r.Degradations)
	}
	return w.MarshalJSON()
}
