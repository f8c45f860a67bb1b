// Package eodhd fetches daily forex quotes from the eodhd.com API.
//
// Client is a rates.Source. Responses are cached on disk for the day.
package eodhd

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/etnz/fiscal/date"
	"github.com/etnz/fiscal/rates"
	"github.com/phuslu/log"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the eodhd API root.
const DefaultBaseURL = "https://eodhd.com/api"

// Client fetches quotes from eodhd.
type Client struct {
	APIKey  string
	BaseURL string // defaults to DefaultBaseURL
	HTTP    *http.Client
}

// New returns a client using a daily disk cache in the temporary directory.
func New(apiKey string, logger *log.Logger) *Client {
	if logger == nil {
		logger = &log.DefaultLogger
	}
	return &Client{
		APIKey: apiKey,
		HTTP:   newCachingClient(date.Daily, "", logger),
	}
}

func (c *Client) baseURL() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return c.BaseURL
}

func (c *Client) client() *http.Client {
	if c.HTTP == nil {
		return http.DefaultClient
	}
	return c.HTTP
}

// Ticker returns the eodhd ticker of a currency pair.
func Ticker(p rates.Pair) string { return fmt.Sprintf("%s%s.FOREX", p.From, p.To) }

// eodPrice is an item of the eod endpoint.
type eodPrice struct {
	Date  date.Date       `json:"date"`
	Open  decimal.Decimal `json:"open"`
	Close decimal.Decimal `json:"close"`
}

// fetchPrices returns the daily prices of a ticker, bounds included.
func (c *Client) fetchPrices(ctx context.Context, ticker string, from, to date.Date) ([]eodPrice, error) {
	// https://eodhd.com/api/eod/USDEUR.FOREX?api_token=demo&fmt=json&from=2024-01-01&to=2024-01-31
	// [
	//	{
	//		"date": "2024-01-02",
	//		"open": 0.9038,
	//		"high": 0.9142,
	//		"low": 0.9035,
	//		"close": 0.9038,
	//		"adjusted_close": 0.9038,
	//		"volume": 0
	//	},
	q := url.Values{}
	q.Set("fmt", "json")
	q.Set("api_token", c.APIKey)
	q.Set("from", from.String())
	q.Set("to", to.String())
	addr := fmt.Sprintf("%s/eod/%s?%s", c.baseURL(), url.PathEscape(ticker), q.Encode())

	content := make([]eodPrice, 0)
	if err := jwget(ctx, c.client(), addr, &content); err != nil {
		return nil, fmt.Errorf("cannot fetch %s prices: %w", ticker, err)
	}
	return content, nil
}

// Fetch returns the daily rates of the pair within r.
//
// eodhd forex close values are mostly equal to the open, the open of the
// next day is closer to the truth, so the rate of a day is the open of the
// next one.
func (c *Client) Fetch(ctx context.Context, p rates.Pair, r date.Range) (*date.History[decimal.Decimal], error) {
	h := new(date.History[decimal.Decimal])
	if r.IsEmpty() {
		return h, nil
	}
	prices, err := c.fetchPrices(ctx, Ticker(p), r.From.Add(1), r.To.Add(1))
	if err != nil {
		return nil, err
	}
	for _, price := range prices {
		on := price.Date.Add(-1)
		if r.Contains(on) && price.Open.IsPositive() {
			h.Append(on, price.Open)
		}
	}
	return h, nil
}
