package tradebook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotRates() Rates { return Rates{Snapshot: snapshotUSD()} }

func TestCompute_GainIsExact(t *testing.T) {
	tests := []struct {
		name      string
		tx        Transaction
		dividends bool
		buy, sell float64
	}{
		{"eur gain", sold(buy(1, "ann", "ASML", "EUR", 10, 100, "2024-01-01"), 120, "2024-02-01", 0), true, 1000, 1200},
		{"usd loss with dividends", sold(buy(2, "ann", "XOM", "USD", 5, 50, "2024-01-15"), 40, "2024-03-01", 5), true, 250, 205},
		{"usd loss without dividends", sold(buy(2, "ann", "XOM", "USD", 5, 50, "2024-01-15"), 40, "2024-03-01", 5), false, 250, 200},
		{"fractional", sold(buy(3, "ann", "BTC", "USD", 0.0137, 43127.19, "2024-01-15"), 61011.07, "2024-03-01", 0), true, 590.8425, 835.8517},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions(day("2024-03-10"))
			opts.IncludeDividends = tt.dividends

			rows, err := Compute(context.Background(), Priced([]Transaction{tt.tx}), opts, snapshotRates())
			require.NoError(t, err)
			r := rows[0]
			assert.True(t, r.Gain.Equal(r.TotalSell.Sub(r.TotalBuy)))
			assert.True(t, r.TotalBuy.Round(4).Equal(D(tt.buy)), "total_buy = %v", r.TotalBuy)
			assert.True(t, r.TotalSell.Round(4).Equal(D(tt.sell)), "total_sell = %v", r.TotalSell)
		})
	}
}

func TestCompute_EndToEndRow(t *testing.T) {
	txs := []Transaction{
		sold(buy(1, "ann", "ASML", "EUR", 10, 100, "2024-01-01"), 120, "2024-02-01", 0),
		sold(buy(2, "ann", "XOM", "USD", 5, 50, "2024-01-15"), 40, "2024-03-01", 5),
	}
	rows, err := Compute(context.Background(), Priced(txs), DefaultOptions(day("2024-03-10")), snapshotRates())
	require.NoError(t, err)

	assert.True(t, rows[0].Earning.Equal(EUR(200)), "got %v", rows[0].Earning)
	assert.True(t, rows[1].Gain.Equal(D(-45)))
	assert.True(t, rows[1].Earning.Equal(EUR(-40.91)), "got %v", rows[1].Earning)
}

func TestCompute_HistoricalPolicy(t *testing.T) {
	txs := []Transaction{sold(buy(2, "ann", "XOM", "USD", 5, 50, "2024-01-15"), 40, "2024-03-01", 5)}
	p := &fakeRates{rates: map[string]float64{"USD@2024-03-01": 1.125}}
	rates := Rates{Snapshot: snapshotUSD(), Historical: NewHistorical("EUR", p, nil), Source: HistoricalRates}

	rows, err := Compute(context.Background(), Priced(txs), DefaultOptions(day("2024-03-10")), rates)
	require.NoError(t, err)
	assert.True(t, rows[0].Earning.Equal(EUR(-40)), "got %v", rows[0].Earning)

	_, err = Compute(context.Background(), Priced(txs), DefaultOptions(day("2024-03-10")), Rates{Snapshot: snapshotUSD(), Source: HistoricalRates})
	assert.Error(t, err)
}

func TestCompute_ValuedRowsUseSnapshot(t *testing.T) {
	rows := Priced([]Transaction{buy(1, "ann", "AAPL", "USD", 4, 150, "2024-01-10")})
	rows[0].State = ValuedToday
	rows[0].ValuedOn = day("2024-03-10")
	rows[0].TotalBuy = D(600)
	rows[0].TotalSell = D(710)
	rows[0].Gain = D(110)

	p := &fakeRates{rates: map[string]float64{"USD": 2}}
	rates := Rates{Snapshot: snapshotUSD(), Historical: NewHistorical("EUR", p, nil), Source: HistoricalRates}
	got, err := Compute(context.Background(), rows, DefaultOptions(day("2024-03-10")), rates)
	require.NoError(t, err)
	assert.True(t, got[0].Earning.Equal(EUR(100)), "got %v", got[0].Earning)
	assert.Equal(t, 0, p.calls)
}

func TestCompute_UnconvertedRows(t *testing.T) {
	txs := []Transaction{
		sold(buy(1, "ann", "ASML", "EUR", 10, 100, "2024-01-01"), 120, "2024-02-01", 0),
		sold(buy(2, "ann", "NESN", "CHF", 1, 100, "2024-01-01"), 110, "2024-02-01", 0),
	}
	rows, err := Compute(context.Background(), Priced(txs), DefaultOptions(day("2024-03-10")), snapshotRates())
	assert.ErrorIs(t, err, ErrRateUnavailable)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].HasEarning())
	assert.False(t, rows[1].HasEarning())
	assert.ErrorIs(t, rows[1].Err, ErrRateUnavailable)

	opts := DefaultOptions(day("2024-03-10"))
	opts.Strict = true
	rows, err = Compute(context.Background(), Priced(txs), opts, snapshotRates())
	assert.ErrorIs(t, err, ErrRateUnavailable)
	assert.Nil(t, rows)
}
