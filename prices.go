package tradebook

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/etnz/tradebook/cache"
	"github.com/etnz/tradebook/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PriceProvider fetches the latest traded price of tickers.
type PriceProvider interface {
	// Quotes fetches several tickers at once. Tickers without data are omitted.
	Quotes(ctx context.Context, tickers []string) (map[string]decimal.Decimal, error)
	// Quote fetches a single ticker.
	Quote(ctx context.Context, ticker string) (decimal.Decimal, error)
}

// Quotes is the result of a price resolution.
type Quotes struct {
	Prices   map[string]decimal.Decimal `json:"prices"`
	Unpriced []*PriceError              `json:"-"` // sorted by ticker
}

// Price returns the price of ticker, if it was resolved.
func (q Quotes) Price(ticker string) (decimal.Decimal, bool) {
	p, ok := q.Prices[ticker]
	return p, ok
}

// UnpricedTickers returns the tickers that could not be priced.
func (q Quotes) UnpricedTickers() []string {
	res := make([]string, 0, len(q.Unpriced))
	for _, e := range q.Unpriced {
		res = append(res, e.Ticker)
	}
	return res
}

// Err joins the unpriced ticker errors, nil when every ticker was priced.
func (q Quotes) Err() error {
	errs := make([]error, 0, len(q.Unpriced))
	for _, e := range q.Unpriced {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

// Resolver resolves the price of open positions, memoizing results for a trading day.
type Resolver struct {
	provider PriceProvider
	cache    *cache.TTL[map[string]decimal.Decimal]
	today    func() date.Date
	log      zerolog.Logger
}

// NewResolver returns a resolver over p. Results are kept in c, which may be nil.
func NewResolver(p PriceProvider, c *cache.TTL[map[string]decimal.Decimal], log zerolog.Logger) *Resolver {
	return &Resolver{
		provider: p,
		cache:    c,
		today:    date.Today,
		log:      log.With().Str("component", "prices").Logger(),
	}
}

// WithToday replaces the trading day used in cache keys.
func (r *Resolver) WithToday(today func() date.Date) *Resolver {
	r.today = today
	return r
}

// Resolve returns the latest price of each ticker.
//
// Tickers are fetched in one batch first, and one by one when the batch fails
// as a whole. A ticker without data is reported in Quotes.Unpriced, never
// priced at zero. The returned error is Quotes.Err(), or the context error.
func (r *Resolver) Resolve(ctx context.Context, tickers []string) (Quotes, error) {
	tickers = distinct(tickers)
	q := Quotes{Prices: make(map[string]decimal.Decimal, len(tickers))}
	if len(tickers) == 0 {
		return q, nil
	}

	key, err := cache.Fingerprint(r.today().String(), tickers)
	if err != nil {
		r.log.Warn().Err(err).Msg("prices will not be cached")
		key = ""
	}
	if cached, ok := r.cache.Get(key); ok && key != "" {
		r.log.Debug().Strs("tickers", tickers).Msg("prices served from cache")
		q.Prices = maps.Clone(cached)
		return q, nil
	}

	prices, err := r.provider.Quotes(ctx, tickers)
	if err != nil {
		if ctx.Err() != nil {
			return q, ctx.Err()
		}
		r.log.Warn().Err(err).Int("tickers", len(tickers)).Msg("batch quote failed, fetching tickers one by one")
		prices = make(map[string]decimal.Decimal, len(tickers))
		for _, t := range tickers {
			p, err := r.provider.Quote(ctx, t)
			if err != nil {
				if ctx.Err() != nil {
					return q, ctx.Err()
				}
				q.Unpriced = append(q.Unpriced, &PriceError{Ticker: t, Err: err})
				continue
			}
			prices[t] = p
		}
	}

	for _, t := range tickers {
		if slices.ContainsFunc(q.Unpriced, func(e *PriceError) bool { return e.Ticker == t }) {
			continue
		}
		p, ok := prices[t]
		if !ok || !p.IsPositive() {
			q.Unpriced = append(q.Unpriced, &PriceError{Ticker: t})
			continue
		}
		q.Prices[t] = p
	}
	slices.SortFunc(q.Unpriced, func(a, b *PriceError) int { return strings.Compare(a.Ticker, b.Ticker) })

	if len(q.Unpriced) == 0 && key != "" {
		r.cache.Put(key, maps.Clone(q.Prices))
	}
	r.log.Debug().Int("priced", len(q.Prices)).Strs("unpriced", q.UnpricedTickers()).Msg("prices resolved")
	return q, q.Err()
}

// distinct returns the sorted non empty distinct values.
func distinct(values []string) []string {
	res := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			res = append(res, v)
		}
	}
	slices.Sort(res)
	return slices.Compact(res)
}
