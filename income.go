package tradebook

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/tradebook/date"
	"github.com/shopspring/decimal"
)

// IncomeMonth is one salary row: price_sell is the income, price_buy the expenses.
type IncomeMonth struct {
	Date     date.Date `json:"date"`
	Income   Money     `json:"income"`
	Expenses Money     `json:"expenses"`
	Savings  Money     `json:"savings"`
}

// IncomeSummary totals salary rows in the home currency.
type IncomeSummary struct {
	Months         []IncomeMonth `json:"months"`
	TotalIncome    Money         `json:"total_income"`
	MonthlyAverage Money         `json:"monthly_average"`
	Expenses       Money         `json:"expenses"`
	Savings        Money         `json:"savings"`
}

// Income converts salary rows with conv and totals them.
//
// Rows that cannot be converted are left out and reported in the joined error.
func Income(ctx context.Context, salaries []Transaction, conv Converter) (IncomeSummary, error) {
	zero := M(0, conv.Home())
	s := IncomeSummary{TotalIncome: zero, MonthlyAverage: zero, Expenses: zero, Savings: zero}
	var errs []error
	for _, t := range salaries {
		income, err := Normalize(ctx, conv, M(t.PriceSell.Decimal, t.Currency), t.DateBuy)
		if err != nil {
			errs = append(errs, fmt.Errorf("salary #%d: %w", t.ID, err))
			continue
		}
		expenses, err := Normalize(ctx, conv, M(t.PriceBuy, t.Currency), t.DateBuy)
		if err != nil {
			errs = append(errs, fmt.Errorf("salary #%d: %w", t.ID, err))
			continue
		}
		s.Months = append(s.Months, IncomeMonth{Date: t.DateBuy, Income: income, Expenses: expenses, Savings: income.Sub(expenses)})
		s.TotalIncome = s.TotalIncome.Add(income)
		s.Expenses = s.Expenses.Add(expenses)
	}
	s.Savings = s.TotalIncome.Sub(s.Expenses)
	if n := len(s.Months); n > 0 {
		s.MonthlyAverage = s.TotalIncome.WithValue(s.TotalIncome.Decimal().Div(decimal.NewFromInt(int64(n))).Round(2))
	}
	return s, errors.Join(errs...)
}

// TaxSummary is a flat rate approximation of the tax due on earnings.
type TaxSummary struct {
	Rate     Percent `json:"rate"`
	Earnings Money   `json:"earnings"`
	Due      Money   `json:"due"`
	Net      Money   `json:"net"`
}

// Tax returns earnings*rate/100 as due, and the remaining net balance.
func Tax(earnings Money, rate Percent) TaxSummary {
	due := earnings.Mul(rate.Decimal()).Mul(decimal.New(1, -2)).Round(2)
	return TaxSummary{Rate: rate, Earnings: earnings, Due: due, Net: earnings.Sub(due)}
}
