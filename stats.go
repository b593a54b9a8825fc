package tradebook

import (
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// OwnerStats summarizes the closed trades of one owner.
//
// Every field is zero for an owner without closed transactions.
type OwnerStats struct {
	TotalEarnings     Money   `json:"total_earnings"`
	AvgHoldingDays    float64 `json:"avg_holding_days"`
	TotalTransactions int     `json:"total_transactions"` // Closed transactions.
	OpenPositions     int     `json:"open_positions"`
	WinRate           Percent `json:"win_rate"`
	BestTrade         Money   `json:"best_trade"`
	WorstTrade        Money   `json:"worst_trade"`
}

// Aggregate computes the statistics of every owner in rows.
//
// Only closed rows with an earning count as trades. ValuedToday and Open rows
// count as open positions. Closed rows that could not be converted are left
// out.
func Aggregate(rows []PricedTransaction) map[string]OwnerStats {
	type acc struct {
		earnings    []decimal.Decimal
		holdingDays []float64
		open        int
		currency    string
	}
	accs := make(map[string]*acc)
	for _, r := range rows {
		a, ok := accs[r.Owner]
		if !ok {
			a = &acc{}
			accs[r.Owner] = a
		}
		switch {
		case r.State != Closed:
			a.open++
		case r.HasEarning():
			a.earnings = append(a.earnings, r.Earning.Decimal())
			a.holdingDays = append(a.holdingDays, float64(r.DateSell.DaysSince(r.DateBuy)))
			a.currency = r.Earning.Currency()
		}
	}

	res := make(map[string]OwnerStats, len(accs))
	for owner, a := range accs {
		s := OwnerStats{OpenPositions: a.open, TotalTransactions: len(a.earnings)}
		if len(a.earnings) == 0 {
			res[owner] = s
			continue
		}
		total, best, worst := decimal.Zero, a.earnings[0], a.earnings[0]
		wins := 0
		for _, e := range a.earnings {
			total = total.Add(e)
			best = decimal.Max(best, e)
			worst = decimal.Min(worst, e)
			if e.IsPositive() {
				wins++
			}
		}
		s.TotalEarnings = M(total, a.currency)
		s.BestTrade = M(best, a.currency)
		s.WorstTrade = M(worst, a.currency)
		s.AvgHoldingDays = stat.Mean(a.holdingDays, nil)
		s.WinRate = PercentOf(decimal.NewFromInt(int64(wins)), decimal.NewFromInt(int64(len(a.earnings))))
		res[owner] = s
	}
	return res
}

// Stats returns the statistics of owner, zero stats if owner has no rows.
func Stats(rows []PricedTransaction, owner string) OwnerStats {
	return Aggregate(rows)[owner]
}
