package tradebook

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/etnz/tradebook/cache"
	"github.com/etnz/tradebook/date"
	"github.com/shopspring/decimal"
)

// RateProvider fetches exchange rates keyed by date and currency.
type RateProvider interface {
	// Rate returns how many units of currency one unit of home was worth on 'on'.
	Rate(ctx context.Context, home, currency string, on date.Date) (decimal.Decimal, error)
}

// Converter gives the rate to convert an amount dated 'on' into the home currency.
//
// Rates are expressed in units of currency per one unit of home currency, so
// that amount_in_home = amount / rate.
type Converter interface {
	Home() string
	Rate(ctx context.Context, currency string, on date.Date) (decimal.Decimal, error)
}

// Normalize converts amount into the home currency of conv.
//
// Amounts already in the home currency are returned rounded to 2 decimals.
// Otherwise the amount is divided by the rate, and rounded to 2 decimals.
// A missing rate is a *RateError, never an unconverted amount.
func Normalize(ctx context.Context, conv Converter, amount Money, on date.Date) (Money, error) {
	home := conv.Home()
	if amount.In(home) {
		return amount.Round(2), nil
	}
	rate, err := conv.Rate(ctx, amount.Currency(), on)
	if err == nil && !rate.IsPositive() {
		err = fmt.Errorf("invalid rate %s", rate)
	}
	if err != nil {
		var rerr *RateError
		if !errors.As(err, &rerr) {
			err = &RateError{Currency: amount.Currency(), On: on, Err: err}
		}
		return Money{}, err
	}
	return M(amount.Decimal().Div(rate).Round(2), home), nil
}

// Snapshot holds the rates fetched once for a pass, and applies them whatever
// the date of the amount.
type Snapshot struct {
	home  string
	on    date.Date
	rates map[string]decimal.Decimal
}

// NewSnapshot returns a snapshot of rates (units of currency per home unit) taken on 'on'.
func NewSnapshot(home string, on date.Date, rates map[string]decimal.Decimal) *Snapshot {
	s := &Snapshot{home: home, on: on, rates: make(map[string]decimal.Decimal, len(rates))}
	for cur, r := range rates {
		s.rates[strings.ToUpper(cur)] = r
	}
	return s
}

// FetchSnapshot fetches today's rate of every currency from p.
//
// Failed currencies are left out of the snapshot and reported in the joined
// error, the snapshot is always usable for the others.
func FetchSnapshot(ctx context.Context, p RateProvider, home string, on date.Date, currencies ...string) (*Snapshot, error) {
	s := NewSnapshot(home, on, nil)
	var errs []error
	for _, cur := range currencies {
		cur = strings.ToUpper(cur)
		if cur == home {
			continue
		}
		rate, err := p.Rate(ctx, home, cur, on)
		if err == nil && !rate.IsPositive() {
			err = fmt.Errorf("invalid rate %s", rate)
		}
		if err != nil {
			errs = append(errs, &RateError{Currency: cur, On: on, Err: err})
			continue
		}
		s.rates[cur] = rate
	}
	return s, errors.Join(errs...)
}

func (s *Snapshot) Home() string  { return s.home }
func (s *Snapshot) On() date.Date { return s.on }

// Rates returns a copy of the snapshot rates.
func (s *Snapshot) Rates() map[string]decimal.Decimal { return maps.Clone(s.rates) }

// Rate returns the snapshot rate of currency, 'on' is ignored.
func (s *Snapshot) Rate(_ context.Context, currency string, _ date.Date) (decimal.Decimal, error) {
	if currency == s.home {
		return decimal.NewFromInt(1), nil
	}
	rate, ok := s.rates[currency]
	if !ok {
		return decimal.Zero, &RateError{Currency: currency, On: s.on, Err: errors.New("not in the daily snapshot")}
	}
	return rate, nil
}

// Export converts a home currency amount into currency, for display.
func (s *Snapshot) Export(m Money, currency string) (Money, error) {
	if !m.In(s.home) {
		return Money{}, fmt.Errorf("cannot export %s: not in home currency %s", m, s.home)
	}
	if currency == s.home {
		return m, nil
	}
	rate, err := s.Rate(context.Background(), currency, s.on)
	if err != nil {
		return Money{}, err
	}
	return M(m.Decimal().Mul(rate).Round(2), currency), nil
}

// Historical converts amounts with the rate of their own date.
//
// Each distinct (currency, date) pair is fetched once and kept in its cache.
type Historical struct {
	home     string
	provider RateProvider
	cache    *cache.TTL[decimal.Decimal]
}

// NewHistorical returns a date keyed converter. A nil cache is replaced by a
// private one keeping rates for a day.
func NewHistorical(home string, p RateProvider, c *cache.TTL[decimal.Decimal]) *Historical {
	if c == nil {
		c = cache.New[decimal.Decimal](24 * time.Hour)
	}
	return &Historical{home: home, provider: p, cache: c}
}

func (h *Historical) Home() string { return h.home }

// Rate returns the rate of currency on 'on'.
func (h *Historical) Rate(ctx context.Context, currency string, on date.Date) (decimal.Decimal, error) {
	if currency == h.home {
		return decimal.NewFromInt(1), nil
	}
	key, err := cache.Fingerprint(h.home, currency, on.String())
	if err != nil {
		return decimal.Zero, &RateError{Currency: currency, On: on, Err: err}
	}
	if rate, ok := h.cache.Get(key); ok {
		return rate, nil
	}
	rate, err := h.provider.Rate(ctx, h.home, currency, on)
	if err == nil && !rate.IsPositive() {
		err = fmt.Errorf("invalid rate %s", rate)
	}
	if err != nil {
		return decimal.Zero, &RateError{Currency: currency, On: on, Err: err}
	}
	h.cache.Put(key, rate)
	return rate, nil
}

// RateSource selects which rates convert dated amounts in a pass.
type RateSource int

const (
	// SnapshotRates converts every amount with the daily snapshot.
	SnapshotRates RateSource = iota
	// HistoricalRates converts every amount with the rate of its own date.
	HistoricalRates
)

func (s RateSource) String() string {
	if s == HistoricalRates {
		return "historical"
	}
	return "snapshot"
}

func (s RateSource) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *RateSource) UnmarshalText(b []byte) (err error) {
	*s, err = ParseRateSource(string(b))
	return err
}

func ParseRateSource(s string) (RateSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "snapshot", "daily":
		return SnapshotRates, nil
	case "historical", "history":
		return HistoricalRates, nil
	default:
		return SnapshotRates, fmt.Errorf("unknown rate source %q, want snapshot or historical", s)
	}
}

// Rates is the conversion context of one analysis pass.
type Rates struct {
	Snapshot   *Snapshot
	Historical *Historical // required with HistoricalRates
	Source     RateSource
}

func (r Rates) Home() string { return r.Snapshot.Home() }

// Dated returns the converter for amounts dated by a transaction, per the pass policy.
func (r Rates) Dated() Converter {
	if r.Source == HistoricalRates {
		return r.Historical
	}
	return r.Snapshot
}

// Live returns the converter for open positions valued today: always the snapshot.
func (r Rates) Live() Converter { return r.Snapshot }
