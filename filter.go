package tradebook

import "github.com/etnz/tradebook/date"

// FilterRange keeps the transactions sold within the preset range ending
// today, and every open transaction. ALL keeps everything.
func FilterRange(txs []Transaction, preset date.Preset, today date.Date) []Transaction {
	r := preset.Range(today)
	var res []Transaction
	for _, t := range txs {
		if t.IsOpen() || preset == date.All || r.Contains(t.DateSell) {
			res = append(res, t)
		}
	}
	return res
}

// Investments drops the salary and savings pseudo stocks.
func Investments(txs []Transaction) []Transaction {
	var res []Transaction
	for _, t := range txs {
		if t.Stock != StockSalary && t.Stock != StockSavings {
			res = append(res, t)
		}
	}
	return res
}

// Salaries keeps only the salary rows.
func Salaries(txs []Transaction) []Transaction {
	var res []Transaction
	for _, t := range txs {
		if t.Stock == StockSalary {
			res = append(res, t)
		}
	}
	return res
}

// Owners returns the distinct owners of txs, sorted.
func Owners(txs []Transaction) []string {
	owners := make([]string, 0, len(txs))
	for _, t := range txs {
		owners = append(owners, t.Owner)
	}
	return distinct(owners)
}
