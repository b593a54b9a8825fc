package tradebook

import (
	"context"
	"testing"
	"time"

	"github.com/etnz/tradebook/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func computed(t *testing.T, txs ...Transaction) []PricedTransaction {
	t.Helper()
	rows, err := Compute(context.Background(), Priced(txs), DefaultOptions(day("2024-03-10")), snapshotRates())
	require.NoError(t, err)
	return rows
}

func stocks(rows []PricedTransaction) []string {
	var res []string
	for _, r := range rows {
		res = append(res, r.Stock)
	}
	return res
}

func TestBestWorst(t *testing.T) {
	rows := computed(t,
		sold(buy(1, "ann", "A", "EUR", 1, 100, "2024-01-01"), 150, "2024-02-01", 0),
		sold(buy(2, "ann", "B", "EUR", 1, 100, "2024-01-01"), 80, "2024-02-01", 0),
		sold(buy(3, "ann", "C", "EUR", 1, 100, "2024-01-01"), 110, "2024-01-15", 0),
		sold(buy(4, "ann", "D", "EUR", 1, 100, "2024-01-01"), 190, "2024-01-15", 0),
		sold(buy(5, "ann", "E", "EUR", 1, 100, "2024-01-01"), 99, "2024-01-15", 0),
		sold(buy(6, "ann", "F", "EUR", 1, 100, "2024-01-01"), 100, "2024-01-15", 0),
		buy(7, "ann", "G", "EUR", 1, 100, "2024-01-01"),
	)

	assert.Equal(t, []string{"D", "A", "C"}, stocks(Best(rows, 3)))
	assert.Equal(t, []string{"B", "E"}, stocks(Worst(rows, 3)))
	assert.Empty(t, Best(nil, 3))
}

func TestByStock(t *testing.T) {
	rows := computed(t,
		sold(buy(1, "ann", "A", "EUR", 1, 100, "2024-01-01"), 150, "2024-02-01", 0),
		sold(buy(2, "ann", "A", "EUR", 1, 100, "2024-01-01"), 120, "2024-02-01", 0),
		sold(buy(3, "ann", "B", "EUR", 1, 100, "2024-01-01"), 160, "2024-01-15", 0),
		sold(buy(4, "ann", "C", "EUR", 1, 100, "2024-01-01"), 140, "2024-01-15", 0),
		sold(buy(5, "ann", "D", "EUR", 1, 100, "2024-01-01"), 130, "2024-01-15", 0),
		sold(buy(6, "ann", "E", "EUR", 1, 100, "2024-01-01"), 105, "2024-01-15", 0),
		sold(buy(7, "ann", "F", "EUR", 1, 100, "2024-01-01"), 102, "2024-01-15", 0),
	)

	got := ByStock(rows, 4)
	require.Len(t, got, 5)
	assert.Equal(t, "A", got[0].Stock)
	assert.True(t, got[0].Earning.Equal(EUR(70)))
	assert.Equal(t, Others, got[4].Stock)
	assert.True(t, got[4].Earning.Equal(EUR(7)))

	losing := computed(t,
		sold(buy(1, "ann", "A", "EUR", 1, 100, "2024-01-01"), 150, "2024-02-01", 0),
		sold(buy(2, "ann", "B", "EUR", 1, 100, "2024-01-01"), 90, "2024-02-01", 0),
	)
	got = ByStock(losing, 1)
	assert.Len(t, got, 1, "a negative remainder is not shown")
}

func TestHeatmap(t *testing.T) {
	daily := []DailyEarning{
		{Owner: "ann", Date: day("2024-01-29"), Earning: D(10)}, // Monday W05
		{Owner: "bob", Date: day("2024-01-29"), Earning: D(-3)},
		{Owner: "ann", Date: day("2024-02-02"), Earning: D(5)}, // Friday W05
		{Owner: "ann", Date: day("2024-02-03"), Earning: D(99)}, // Saturday
		{Owner: "ann", Date: day("2024-01-02"), Earning: D(1)}, // Tuesday W01
	}
	cells := Heatmap(daily)
	require.Len(t, cells, 3)

	assert.Equal(t, day("2024-01-01"), cells[0].Week)
	assert.Equal(t, time.Tuesday, cells[0].Weekday)
	assert.Equal(t, "W01", cells[0].WeekLabel())

	assert.Equal(t, time.Monday, cells[1].Weekday)
	assert.True(t, cells[1].Earning.Equal(D(7)))
	assert.Equal(t, "W05", cells[1].WeekLabel())
	assert.Equal(t, time.Friday, cells[2].Weekday)
}

func TestFilterRange(t *testing.T) {
	txs := []Transaction{
		sold(buy(1, "ann", "A", "EUR", 1, 100, "2023-01-01"), 150, "2023-12-31", 0),
		sold(buy(2, "ann", "B", "EUR", 1, 100, "2023-01-01"), 150, "2024-01-01", 0),
		sold(buy(3, "ann", "C", "EUR", 1, 100, "2023-01-01"), 150, "2024-02-20", 0),
		buy(4, "ann", "D", "EUR", 1, 100, "2020-01-01"),
	}
	today := day("2024-03-10")
	ids := func(txs []Transaction) []int64 {
		var res []int64
		for _, t := range txs {
			res = append(res, t.ID)
		}
		return res
	}

	assert.Equal(t, []int64{2, 3, 4}, ids(FilterRange(txs, date.YearToDate, today)))
	assert.Equal(t, []int64{3, 4}, ids(FilterRange(txs, date.OneMonth, today)))
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(FilterRange(txs, date.OneYear, today)))
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(FilterRange(txs, date.All, today)))
}

func TestInvestmentsAndSalaries(t *testing.T) {
	txs := []Transaction{
		buy(1, "ann", StockSalary, "EUR", 1, 100, "2024-01-01"),
		buy(2, "ann", StockSavings, "EUR", 1, 100, "2024-01-01"),
		buy(3, "ann", "ASML", "EUR", 1, 100, "2024-01-01"),
	}
	assert.Len(t, Investments(txs), 1)
	assert.Equal(t, int64(3), Investments(txs)[0].ID)
	assert.Len(t, Salaries(txs), 1)
	assert.Equal(t, int64(1), Salaries(txs)[0].ID)
	assert.Equal(t, []string{"ann"}, Owners(txs))
}
