// Package frankfurter fetches ECB reference exchange rates from the
// Frankfurter API.
package frankfurter

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/etnz/tradebook/date"
	"github.com/etnz/tradebook/remote"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "https://api.frankfurter.app"

// Client implements tradebook.RateProvider.
type Client struct {
	remote  *remote.Client
	baseURL string
	today   func() date.Date
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
		today:   date.Today,
		log:     r.Log.With().Str("provider", "frankfurter").Logger(),
	}
}

type response struct {
	Amount float64                    `json:"amount"`
	Base   string                     `json:"base"`
	Date   string                     `json:"date"`
	Rates  map[string]decimal.Decimal `json:"rates"`
}

// Rate returns how many units of currency one unit of home was worth on 'on'.
//
// Days without fixing (weekends, holidays) get the previous fixing. Today and
// future dates get the latest one.
func (c *Client) Rate(ctx context.Context, home, currency string, on date.Date) (decimal.Decimal, error) {
	day := "latest"
	if !on.IsZero() && on.Before(c.today()) {
		day = on.String()
	}
	rate, err := c.fetch(ctx, home, currency, day)
	if err != nil {
		c.log.Warn().Err(err).Str("pair", home+"/"+currency).Str("day", day).Msg("rate unavailable")
		return decimal.Zero, err
	}
	c.log.Debug().Str("pair", home+"/"+currency).Str("day", day).Str("rate", rate.String()).Msg("rate fetched")
	return rate, nil
}

func (c *Client) fetch(ctx context.Context, home, currency, day string) (decimal.Decimal, error) {
	q := url.Values{"from": {home}, "to": {currency}}
	addr := fmt.Sprintf("%s/%s?%s", c.baseURL, day, q.Encode())

	var resp response
	if err := c.remote.GetJSON(ctx, addr, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("error retrieving %s/%s on %s: %w", home, currency, day, err)
	}
	rate, ok := resp.Rates[currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("no %s/%s rate on %s in response", home, currency, day)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("invalid %s/%s rate %s on %s", home, currency, rate, day)
	}
	return rate, nil
}
