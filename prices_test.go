package tradebook

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/etnz/tradebook/cache"
	"github.com/etnz/tradebook/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(p PriceProvider) *Resolver {
	c := cache.New[map[string]decimal.Decimal](24 * time.Hour)
	return NewResolver(p, c, zerolog.Nop()).WithToday(func() date.Date { return day("2024-03-10") })
}

func TestResolver_Batch(t *testing.T) {
	p := &fakePrices{prices: map[string]float64{"AAPL": 170.5, "MSFT": 410}}
	r := newTestResolver(p)

	q, err := r.Resolve(context.Background(), []string{"MSFT", "AAPL", "MSFT", ""})
	require.NoError(t, err)
	assert.Equal(t, 1, p.batchCalls)
	assert.Equal(t, 0, p.quoteCalls)
	assert.Len(t, q.Prices, 2)
	price, ok := q.Price("AAPL")
	assert.True(t, ok)
	assert.True(t, price.Equal(D(170.5)))
	assert.Empty(t, q.Unpriced)
}

func TestResolver_CachesPerTradingDay(t *testing.T) {
	p := &fakePrices{prices: map[string]float64{"AAPL": 170.5, "MSFT": 410}}
	r := newTestResolver(p)
	ctx := context.Background()

	_, err := r.Resolve(ctx, []string{"AAPL", "MSFT"})
	require.NoError(t, err)
	_, err = r.Resolve(ctx, []string{"MSFT", "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, 1, p.batchCalls, "same ticker set on the same day is served from cache")

	r.WithToday(func() date.Date { return day("2024-03-11") })
	_, err = r.Resolve(ctx, []string{"AAPL", "MSFT"})
	require.NoError(t, err)
	assert.Equal(t, 2, p.batchCalls, "a new trading day fetches again")
}

func TestResolver_FallbackAndUnpriced(t *testing.T) {
	p := &fakePrices{
		prices:   map[string]float64{"AAPL": 170.5},
		batchErr: errors.New("429 too many requests"),
	}
	r := newTestResolver(p)
	ctx := context.Background()

	q, err := r.Resolve(ctx, []string{"AAPL", "DELISTED"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPriceUnavailable)
	assert.Equal(t, 1, p.batchCalls)
	assert.Equal(t, 2, p.quoteCalls)
	assert.Equal(t, []string{"DELISTED"}, q.UnpricedTickers())
	_, ok := q.Price("DELISTED")
	assert.False(t, ok, "an unpriced ticker is never defaulted to zero")

	_, _ = r.Resolve(ctx, []string{"AAPL", "DELISTED"})
	assert.Equal(t, 2, p.batchCalls, "partial results are not cached")
}

func TestResolver_MissingFromBatch(t *testing.T) {
	p := &fakePrices{prices: map[string]float64{"AAPL": 170.5}}
	q, err := newTestResolver(p).Resolve(context.Background(), []string{"AAPL", "ZZZZ"})

	assert.ErrorIs(t, err, ErrPriceUnavailable)
	assert.Equal(t, []string{"ZZZZ"}, q.UnpricedTickers())
	assert.Equal(t, 0, p.quoteCalls)
}

func TestResolver_Empty(t *testing.T) {
	p := &fakePrices{}
	q, err := newTestResolver(p).Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, q.Prices)
	assert.Equal(t, 0, p.batchCalls)
}
