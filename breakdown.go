package tradebook

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/etnz/tradebook/date"
	"github.com/shopspring/decimal"
)

// Best returns up to n closed rows with a positive earning, best first.
func Best(rows []PricedTransaction, n int) []PricedTransaction {
	res := closedWith(rows, func(e Money) bool { return e.IsPositive() })
	slices.SortStableFunc(res, func(a, b PricedTransaction) int {
		return cmp.Or(b.Earning.Decimal().Cmp(a.Earning.Decimal()), cmp.Compare(a.ID, b.ID))
	})
	return res[:min(n, len(res))]
}

// Worst returns up to n closed rows with a negative earning, worst first.
func Worst(rows []PricedTransaction, n int) []PricedTransaction {
	res := closedWith(rows, func(e Money) bool { return e.IsNegative() })
	slices.SortStableFunc(res, func(a, b PricedTransaction) int {
		return cmp.Or(a.Earning.Decimal().Cmp(b.Earning.Decimal()), cmp.Compare(a.ID, b.ID))
	})
	return res[:min(n, len(res))]
}

func closedWith(rows []PricedTransaction, keep func(Money) bool) []PricedTransaction {
	var res []PricedTransaction
	for _, r := range rows {
		if r.State == Closed && r.HasEarning() && keep(r.Earning) {
			res = append(res, r)
		}
	}
	return res
}

// Others labels the remainder of a stock breakdown.
const Others = "Others"

// StockEarning is the total earning of the closed trades of a stock.
type StockEarning struct {
	Stock   string `json:"stock"`
	Earning Money  `json:"earning"`
}

// ByStock sums closed earnings per stock and keeps the n largest. The sum of
// the remaining stocks is appended as Others when it is positive.
func ByStock(rows []PricedTransaction, n int) []StockEarning {
	sums := make(map[string]Money)
	for _, r := range rows {
		if r.State == Closed && r.HasEarning() {
			sums[r.Stock] = sums[r.Stock].Add(r.Earning)
		}
	}
	all := make([]StockEarning, 0, len(sums))
	for stock, e := range sums {
		all = append(all, StockEarning{Stock: stock, Earning: e})
	}
	slices.SortFunc(all, func(a, b StockEarning) int {
		return cmp.Or(b.Earning.Decimal().Cmp(a.Earning.Decimal()), strings.Compare(a.Stock, b.Stock))
	})
	if len(all) <= n {
		return all
	}
	res := all[:n:n]
	var others Money
	for _, s := range all[n:] {
		others = others.Add(s.Earning)
	}
	if others.IsPositive() {
		res = append(res, StockEarning{Stock: Others, Earning: others})
	}
	return res
}

// HeatCell is the earning of one weekday of one week.
type HeatCell struct {
	Week    date.Date       `json:"week"` // Monday of the week
	Weekday time.Weekday    `json:"weekday"`
	Earning decimal.Decimal `json:"earning"`
}

// WeekLabel returns the ISO week of the cell, like "W05".
func (c HeatCell) WeekLabel() string {
	_, w := c.Week.ISOWeek()
	return fmt.Sprintf("W%02d", w)
}

// Heatmap sums daily earnings per week and weekday, Monday to Friday only.
// Cells are sorted by week then weekday.
func Heatmap(daily []DailyEarning) []HeatCell {
	type key struct {
		week date.Date
		wd   time.Weekday
	}
	sums := make(map[key]decimal.Decimal)
	for _, d := range daily {
		wd := d.Date.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			continue
		}
		k := key{d.Date.StartOf(date.Weekly), wd}
		sums[k] = sums[k].Add(d.Earning)
	}
	res := make([]HeatCell, 0, len(sums))
	for k, v := range sums {
		res = append(res, HeatCell{Week: k.week, Weekday: k.wd, Earning: v})
	}
	slices.SortFunc(res, func(a, b HeatCell) int {
		return cmp.Or(a.Week.Time().Compare(b.Week.Time()), cmp.Compare(a.Weekday, b.Weekday))
	})
	return res
}
