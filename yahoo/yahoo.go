// Package yahoo fetches latest market prices from Yahoo Finance.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/tradebook/remote"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client implements tradebook.PriceProvider.
type Client struct {
	remote  *remote.Client
	baseURL string
	log     zerolog.Logger
}

// New returns a client querying baseURL, DefaultBaseURL when empty.
func New(r *remote.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		remote:  r,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		log:     r.Log.With().Str("provider", "yahoo").Logger(),
	}
}

/*
	{
	    "quoteResponse": {
	        "result": [
	            {"symbol": "AAPL", "currency": "USD", "regularMarketPrice": 170.5},
	            ...
	        ],
	        "error": null
	    }
	}
*/

// Quotes fetches the latest price of tickers in one request. Tickers without
// a price are omitted.
func (c *Client) Quotes(ctx context.Context, tickers []string) (map[string]decimal.Decimal, error) {
	addr := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", c.baseURL, url.QueryEscape(strings.Join(tickers, ",")))
	var jobj any
	if err := c.remote.GetJSON(ctx, addr, &jobj); err != nil {
		return nil, fmt.Errorf("error in batch quote of %d tickers: %w", len(tickers), err)
	}
	path := "$.quoteResponse.result[*]"
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing batch quote: %q %w", path, err)
	}
	results, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("error parsing batch quote: %q is not a list", path)
	}

	prices := make(map[string]decimal.Decimal, len(results))
	for _, r := range results {
		q, ok := r.(map[string]any)
		if !ok {
			continue
		}
		symbol, _ := q["symbol"].(string)
		price, ok := q["regularMarketPrice"].(float64)
		if symbol == "" || !ok || price <= 0 {
			continue
		}
		prices[symbol] = decimal.NewFromFloat(price)
	}
	if len(prices) < len(tickers) {
		c.log.Debug().Int("requested", len(tickers)).Int("priced", len(prices)).Msg("batch quote is incomplete")
	}
	return prices, nil
}

/*
	{
	    "chart": {
	        "result": [{
	            "meta": {"symbol": "AAPL", "regularMarketPrice": 170.5},
	            "timestamp": [...],
	            "indicators": {"quote": [{"close": [168.2, null, 170.5]}]}
	        }],
	        "error": null
	    }
	}
*/

// Quote fetches the latest price of one ticker from its daily chart: the market
// price if any, or the last close.
func (c *Client) Quote(ctx context.Context, ticker string) (decimal.Decimal, error) {
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?range=5d&interval=1d", c.baseURL, url.PathEscape(ticker))
	var jobj any
	if err := c.remote.GetJSON(ctx, addr, &jobj); err != nil {
		return decimal.Zero, fmt.Errorf("error retrieving %q: %w", ticker, err)
	}

	if price, err := first[float64]("$.chart.result[0].meta.regularMarketPrice", jobj); err == nil && price > 0 {
		return decimal.NewFromFloat(price), nil
	}

	closes, err := first[[]any]("$.chart.result[0].indicators.quote[0].close", jobj)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error parsing %q: %w", ticker, err)
	}
	for i := len(closes) - 1; i >= 0; i-- {
		// closes are null on days without trades
		if v, ok := closes[i].(float64); ok && v > 0 {
			return decimal.NewFromFloat(v), nil
		}
	}
	return decimal.Zero, fmt.Errorf("no close price for %q", ticker)
}

var errType = errors.New("unexpected type")

// first evaluates path and returns its value as a T.
func first[T any](path string, jobj any) (T, error) {
	var zero T
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return zero, fmt.Errorf("%q: %w", path, err)
	}
	v, ok := jval.(T)
	if !ok {
		return zero, fmt.Errorf("%q: %w %T", path, errType, jval)
	}
	return v, nil
}
