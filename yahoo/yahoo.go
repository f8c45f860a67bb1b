// Package yahoo fetches forex quotes from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/fiscal/date"
	"github.com/etnz/fiscal/rates"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the Yahoo Finance chart API root.
const DefaultBaseURL = "https://query2.finance.yahoo.com"

// Client is a rates.Source of daily closes, and a source of live quotes.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a client with a short timeout.
func New() *Client {
	return &Client{HTTP: &http.Client{Timeout: 8 * time.Second}}
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

// Symbol returns the Yahoo symbol of a currency pair, like "USDEUR=X".
func Symbol(p rates.Pair) string { return p.String() + "=X" }

// chart gets the chart of a pair as a generic JSON object.
func (c *Client) chart(ctx context.Context, p rates.Pair, q url.Values) (any, error) {
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL(), url.PathEscape(Symbol(p)), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "fiscal/1.0")
	resp, err := c.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http GET %v%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}
	var jobj any
	if err := json.NewDecoder(resp.Body).Decode(&jobj); err != nil {
		return nil, fmt.Errorf("cannot decode %s chart: %w", Symbol(p), err)
	}
	return jobj, nil
}

// get evaluates a JSON path, keeping the first answer when jsonpath returns a list.
func get(path string, jobj any) (any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", path, err)
	}
	return jval, nil
}

func getList(path string, jobj any) ([]any, error) {
	jval, err := get(path, jobj)
	if err != nil {
		return nil, err
	}
	list, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("error parsing %q: not a list: %v", path, jval)
	}
	return list, nil
}

func getFloat(path string, jobj any) (float64, error) {
	jval, err := get(path, jobj)
	if err != nil {
		return 0, err
	}
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return 0, fmt.Errorf("error parsing %q: not a number: %v", path, jval)
	}
	return val, nil
}

// Fetch returns the daily closes of the pair within r.
func (c *Client) Fetch(ctx context.Context, p rates.Pair, r date.Range) (*date.History[decimal.Decimal], error) {
	h := new(date.History[decimal.Decimal])
	if r.IsEmpty() {
		return h, nil
	}
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("period1", fmt.Sprint(r.From.Time().Unix()))
	q.Set("period2", fmt.Sprint(r.To.Add(1).Time().Unix()))
	jobj, err := c.chart(ctx, p, q)
	if err != nil {
		return nil, err
	}
	timestamps, err := getList("$.chart.result[0].timestamp", jobj)
	if err != nil {
		// no quotes in the range
		return h, nil
	}
	closes, err := getList("$.chart.result[0].indicators.quote[0].close", jobj)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s closes: %w", Symbol(p), err)
	}
	if len(closes) != len(timestamps) {
		return nil, fmt.Errorf("%s chart has %d timestamps and %d closes", Symbol(p), len(timestamps), len(closes))
	}
	for i, ts := range timestamps {
		sec, ok := ts.(float64)
		v, vok := closes[i].(float64) // null on holidays
		if !ok || !vok || v <= 0 {
			continue
		}
		on := date.Of(time.Unix(int64(sec), 0).UTC())
		if r.Contains(on) {
			h.Append(on, decimal.NewFromFloat(v))
		}
	}
	return h, nil
}

// Latest returns the current market price of the pair, and its day.
func (c *Client) Latest(ctx context.Context, p rates.Pair) (date.Date, decimal.Decimal, error) {
	q := url.Values{}
	q.Set("interval", "1h")
	q.Set("range", "1d")
	jobj, err := c.chart(ctx, p, q)
	if err != nil {
		return date.Date{}, decimal.Decimal{}, err
	}
	price, err := getFloat("$.chart.result[0].meta.regularMarketPrice", jobj)
	if err != nil {
		return date.Date{}, decimal.Decimal{}, fmt.Errorf("%s rate not found: %w", Symbol(p), err)
	}
	if price <= 0 {
		return date.Date{}, decimal.Decimal{}, fmt.Errorf("invalid %s rate %v", Symbol(p), price)
	}
	on := date.Today()
	if sec, err := getFloat("$.chart.result[0].meta.regularMarketTime", jobj); err == nil && sec > 0 {
		on = date.Of(time.Unix(int64(sec), 0).UTC())
	}
	return on, decimal.NewFromFloat(price), nil
}
