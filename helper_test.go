package tradebook

import (
	"context"
	"fmt"
	"sync"

	"github.com/etnz/tradebook/date"
	"github.com/shopspring/decimal"
)

func EUR(v float64) Money { return M(v, "EUR") }
func USD(v float64) Money { return M(v, "USD") }
func D(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func day(s string) date.Date { return date.MustParse(s) }

// buy returns an open transaction.
func buy(id int64, owner, ticker, cur string, qty, price float64, on string) Transaction {
	return Transaction{
		ID:          id,
		Owner:       owner,
		Stock:       ticker,
		Ticker:      ticker,
		Currency:    cur,
		PriceBuy:    D(price),
		QuantityBuy: D(qty),
		DateBuy:     day(on),
	}
}

// sold closes t on 'on' for the whole quantity.
func sold(t Transaction, price float64, on string, dividends float64) Transaction {
	t.DateSell = day(on)
	t.PriceSell = decimal.NewNullDecimal(D(price))
	t.QuantitySell = decimal.NewNullDecimal(t.QuantityBuy)
	t.Dividends = D(dividends)
	return t
}

// fakeRates is a RateProvider serving fixed rates, by currency or by currency and date.
type fakeRates struct {
	mu     sync.Mutex
	rates  map[string]float64 // "USD" or "USD@2024-03-01"
	calls  int
	failed error
}

func (f *fakeRates) Rate(_ context.Context, home, currency string, on date.Date) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failed != nil {
		return decimal.Zero, f.failed
	}
	if r, ok := f.rates[currency+"@"+on.String()]; ok {
		return D(r), nil
	}
	if r, ok := f.rates[currency]; ok {
		return D(r), nil
	}
	return decimal.Zero, fmt.Errorf("no %s/%s", home, currency)
}

// fakePrices is a PriceProvider serving fixed quotes.
type fakePrices struct {
	mu         sync.Mutex
	prices     map[string]float64
	batchErr   error
	batchCalls int
	quoteCalls int
}

func (f *fakePrices) Quotes(_ context.Context, tickers []string) (map[string]decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	res := make(map[string]decimal.Decimal)
	for _, t := range tickers {
		if p, ok := f.prices[t]; ok {
			res[t] = D(p)
		}
	}
	return res, nil
}

func (f *fakePrices) Quote(_ context.Context, ticker string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quoteCalls++
	if p, ok := f.prices[ticker]; ok {
		return D(p), nil
	}
	return decimal.Zero, fmt.Errorf("unknown symbol %s", ticker)
}

// snapshotUSD is the daily snapshot used by the end to end scenario.
func snapshotUSD() *Snapshot {
	return NewSnapshot("EUR", day("2024-03-10"), map[string]decimal.Decimal{"USD": D(1.10), "PLN": D(4.30)})
}
