package fiscal

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchResult is the realized result of a quantity of a sale matched
// against a single lot.
//
// Reporting amounts are in the reporting currency, Original amounts are in
// the instrument's currency.
type MatchResult struct {
	Instrument   string
	Symbol       string
	Currency     string
	QuantitySold Quantity

	SaleDate          time.Time
	SalePrice         Money
	SaleFees          Money // share of the sale fees
	SaleValue         Money // QuantitySold × SalePrice - SaleFees
	SalePriceOriginal Money
	SaleFeesOriginal  Money
	SaleValueOriginal Money

	AcquisitionDate          time.Time
	AcquisitionPrice         Money
	AcquisitionFees          Money // share of the acquisition fees
	AcquisitionValue         Money // QuantitySold × AcquisitionPrice + AcquisitionFees
	AcquisitionPriceOriginal Money
	AcquisitionFeesOriginal  Money
	AcquisitionValueOriginal Money

	GrossResult         Money
	GrossResultOriginal Money
	ExchangeRateUsed    decimal.Decimal // the sale's rate, used for both legs
	DaysHeld            int

	IsWashSale             bool
	WashSaleDisallowedLoss Money // zero or of the sign of GrossResult
	Notes                  string

	sale        *Operation
	acquisition *Operation
}

// Deductible is the part of the gross result that is not disallowed.
func (r *MatchResult) Deductible() Money {
	return r.GrossResult.Sub(r.WashSaleDisallowedLoss)
}

// Label returns the display name of the instrument.
func (r *MatchResult) Label() string {
	if r.Symbol != "" {
		return r.Symbol
	}
	return r.Instrument
}

func (r *MatchResult) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("instrument", r.Instrument)
	w.Optional("symbol", r.Symbol)
	w.Append("currency", r.Currency)
	w.Append("quantity_sold", r.QuantitySold)
	w.Append("sale_date", r.SaleDate)
	w.Append("sale_price", r.SalePrice)
	w.Append("sale_fees", r.SaleFees)
	w.Append("sale_value", r.SaleValue)
	w.Append("sale_price_original", r.SalePriceOriginal)
	w.Append("sale_fees_original", r.SaleFeesOriginal)
	w.Append("sale_value_original", r.SaleValueOriginal)
	w.Append("acquisition_date", r.AcquisitionDate)
	w.Append("acquisition_price", r.AcquisitionPrice)
	w.Append("acquisition_fees", r.AcquisitionFees)
	w.Append("acquisition_value", r.AcquisitionValue)
	w.Append("acquisition_price_original", r.AcquisitionPriceOriginal)
	w.Append("acquisition_fees_original", r.AcquisitionFeesOriginal)
	w.Append("acquisition_value_original", r.AcquisitionValueOriginal)
	w.Append("gross_result", r.GrossResult)
	w.Append("gross_result_original", r.GrossResultOriginal)
	w.Append("exchange_rate_used", r.ExchangeRateUsed)
	w.Append("days_held", r.DaysHeld)
	w.Append("is_wash_sale", r.IsWashSale)
	w.Append("wash_sale_disallowed_loss", r.WashSaleDisallowedLoss)
	w.Optional("notes", r.Notes)
	return w.MarshalJSON()
}
