package tradebook

import (
	"context"
	"testing"
	"time"

	"github.com/etnz/tradebook/cache"
	"github.com/etnz/tradebook/date"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer(rates map[string]float64, prices map[string]float64) *Analyzer {
	var resolver *Resolver
	if prices != nil {
		resolver = newTestResolver(&fakePrices{prices: prices})
	}
	p := &fakeRates{rates: rates}
	return &Analyzer{
		Rates:      p,
		Prices:     resolver,
		Historical: NewHistorical("EUR", p, nil),
		Home:       "EUR",
		Currencies: []string{"USD", "PLN"},
		Log:        zerolog.Nop(),
	}
}

func endToEnd() []Transaction {
	return []Transaction{
		sold(buy(1, "ann", "ASML", "EUR", 10, 100, "2024-01-01"), 120, "2024-02-01", 0),
		sold(buy(2, "ann", "XOM", "USD", 5, 50, "2024-01-15"), 40, "2024-03-01", 5),
	}
}

func TestAnalyzer_EndToEnd(t *testing.T) {
	a := newTestAnalyzer(map[string]float64{"USD": 1.10, "PLN": 4.30}, nil)
	opts := DefaultOptions(day("2024-03-10"))

	r, err := a.Run(context.Background(), endToEnd(), opts)
	require.NoError(t, err)
	require.NoError(t, r.Err())

	require.Len(t, r.Rows, 2)
	assert.True(t, r.Rows[0].Earning.Equal(EUR(200)))
	assert.True(t, r.Rows[1].TotalBuy.Equal(D(250)))
	assert.True(t, r.Rows[1].TotalSell.Equal(D(205)))
	assert.True(t, r.Rows[1].Gain.Equal(D(-45)))
	assert.True(t, r.Rows[1].Earning.Equal(EUR(-40.91)))

	ann := r.Owners["ann"]
	assert.True(t, ann.TotalEarnings.Equal(EUR(159.09)), "got %v", ann.TotalEarnings)
	assert.True(t, ann.WinRate.Equal(50))
	assert.True(t, r.Earnings.Equal(EUR(159.09)))

	// 1000 + 250/1.1 = 1227.27 bought before any sale
	assert.Equal(t, int64(1227), r.Capital.Amount)
	assert.True(t, r.Return.Equal(12.97), "got %v", r.Return)
	assert.True(t, r.Tax.Due.Equal(EUR(30.23)))

	require.Len(t, r.Curve, 2)
	assert.Equal(t, 200.0, r.Curve[0].Y)
	assert.InDelta(t, 159.09, r.Curve[1].Y, 1e-9)
	assert.Len(t, r.Positive, 1)
	assert.Empty(t, r.Negative)
	assert.NotEqual(t, uuid.Nil, r.ID)
}

func TestAnalyzer_OpenPositions(t *testing.T) {
	txs := append(endToEnd(),
		buy(3, "ann", "AAPL", "USD", 2, 100, "2024-03-01"),
		buy(4, "ann", "GONE", "USD", 1, 10, "2024-03-01"),
	)
	a := newTestAnalyzer(map[string]float64{"USD": 1.10, "PLN": 4.30}, map[string]float64{"AAPL": 155})

	opts := DefaultOptions(day("2024-03-10"))
	opts.IncludeOpen = true
	r, err := a.Run(context.Background(), txs, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"GONE"}, r.Unpriced)
	assert.ErrorIs(t, r.Err(), ErrPriceUnavailable)
	assert.Equal(t, ValuedToday, r.Rows[2].State)
	assert.True(t, r.Rows[2].Earning.Equal(EUR(100)), "got %v", r.Rows[2].Earning)
	assert.Equal(t, Open, r.Rows[3].State)

	ann := r.Owners["ann"]
	assert.Equal(t, 2, ann.TotalTransactions, "valued rows are not closed trades")
	assert.Equal(t, 2, ann.OpenPositions)
	assert.True(t, r.Earnings.Equal(EUR(159.09)), "got %v", r.Earnings)
	assert.True(t, r.Unrealized.Equal(EUR(100)), "got %v", r.Unrealized)
	// Return and tax ignore unrealized earnings.
	assert.True(t, r.Return.Equal(12.97), "got %v", r.Return)
	assert.True(t, r.Tax.Due.Equal(EUR(30.23)), "got %v", r.Tax.Due)

	opts.IncludeOpen = false
	r, err = a.Run(context.Background(), txs, opts)
	require.NoError(t, err)
	assert.Equal(t, Open, r.Rows[2].State)
	assert.True(t, r.Earnings.Equal(EUR(159.09)))
	assert.True(t, r.Unrealized.IsZero())
}

func TestAnalyzer_SnapshotCache(t *testing.T) {
	a := newTestAnalyzer(map[string]float64{"USD": 1.10, "PLN": 4.30}, nil)
	a.Snapshots = cache.New[*Snapshot](10 * time.Minute)
	p := a.Rates.(*fakeRates)
	opts := DefaultOptions(day("2024-03-10"))

	for range 3 {
		r, err := a.Run(context.Background(), endToEnd(), opts)
		require.NoError(t, err)
		assert.True(t, r.Earnings.Equal(EUR(159.09)))
	}
	assert.Equal(t, 2, p.calls, "one call per snapshot currency")

	opts.Today = day("2024-03-11")
	_, err := a.Run(context.Background(), endToEnd(), opts)
	require.NoError(t, err)
	assert.Equal(t, 4, p.calls, "a new day fetches a new snapshot")
}

func TestAnalyzer_SnapshotCacheSkipsFailures(t *testing.T) {
	a := newTestAnalyzer(map[string]float64{"PLN": 4.30}, nil)
	a.Snapshots = cache.New[*Snapshot](10 * time.Minute)
	p := a.Rates.(*fakeRates)
	opts := DefaultOptions(day("2024-03-10"))

	for range 2 {
		r, err := a.Run(context.Background(), endToEnd(), opts)
		require.NoError(t, err)
		assert.ErrorIs(t, r.Err(), ErrRateUnavailable)
	}
	assert.Equal(t, 4, p.calls, "incomplete snapshots are fetched again")
	assert.Equal(t, 0, a.Snapshots.Len())
}

func TestAnalyzer_MissingRate(t *testing.T) {
	a := newTestAnalyzer(map[string]float64{"PLN": 4.30}, nil)
	opts := DefaultOptions(day("2024-03-10"))

	r, err := a.Run(context.Background(), endToEnd(), opts)
	require.NoError(t, err, "a missing rate is a partial result")
	assert.ErrorIs(t, r.Err(), ErrRateUnavailable)
	assert.NotEmpty(t, r.Errors)
	assert.True(t, r.Earnings.Equal(EUR(200)))
	assert.Equal(t, []int64{2}, r.Capital.Skipped)

	opts.Strict = true
	_, err = a.Run(context.Background(), endToEnd(), opts)
	assert.ErrorIs(t, err, ErrRateUnavailable)
}

func TestAnalyzer_RejectsInvalid(t *testing.T) {
	txs := endToEnd()
	txs[1].QuantitySell.Valid = false
	_, err := newTestAnalyzer(map[string]float64{"USD": 1.1}, nil).Run(context.Background(), txs, DefaultOptions(day("2024-03-10")))
	assert.ErrorIs(t, err, ErrInvalidTransaction)
}

func TestAnalyzer_OwnerAndRange(t *testing.T) {
	txs := append(endToEnd(),
		sold(buy(3, "bob", "SAP", "EUR", 1, 100, "2023-01-01"), 150, "2023-06-01", 0),
		sold(buy(4, "bob", "SAP", "EUR", 1, 100, "2024-01-01"), 90, "2024-01-10", 0),
		sold(buy(5, "ann", StockSalary, "PLN", 1, 4300, "2024-02-29"), 8600, "2024-02-29", 0),
	)
	a := newTestAnalyzer(map[string]float64{"USD": 1.10, "PLN": 4.30}, nil)
	opts := DefaultOptions(day("2024-03-10"))
	opts.Owner = "bob"

	r, err := a.Run(context.Background(), txs, opts)
	require.NoError(t, err)
	require.Len(t, r.Rows, 1, "bob's 2023 trade is out of the YTD range")
	assert.True(t, r.Earnings.Equal(EUR(-10)))
	assert.Len(t, r.Negative, 1)
	assert.Empty(t, r.Income.Months)

	opts.Owner, opts.Range = "ann", date.All
	r, err = a.Run(context.Background(), txs, opts)
	require.NoError(t, err)
	assert.Len(t, r.Rows, 2, "salary rows are not investments")
	assert.True(t, r.Income.TotalIncome.Equal(EUR(2000)))
}
