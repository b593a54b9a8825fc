package tradebook

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/etnz/tradebook/date"
	"github.com/shopspring/decimal"
)

// FlowKind tells whether a cash flow takes money out of the pocket or puts it back.
type FlowKind int

const (
	BuyFlow FlowKind = iota
	SellFlow
)

func (k FlowKind) String() string {
	if k == SellFlow {
		return "sell"
	}
	return "buy"
}

func (k FlowKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// CashFlowEvent is a buy or sell amount in the home currency.
type CashFlowEvent struct {
	Date   date.Date       `json:"date"`
	Kind   FlowKind        `json:"kind"`
	Amount decimal.Decimal `json:"amount"` // never negative
	ID     int64           `json:"id"`     // source transaction
}

// Capital is the money actually injected to fund the purchases.
type Capital struct {
	Amount  int64           `json:"amount"`
	Events  []CashFlowEvent `json:"events"`  // in replay order
	Skipped []int64         `json:"skipped"` // transactions that could not be converted
}

// CapitalDeployed replays the cash flows of rows to compute the new money that
// had to be added because no earlier sale proceeds could fund a purchase.
//
// Every row buys at DateBuy. Closed rows sell at DateSell for
// |price_sell*quantity_sell + dividends|, valued rows sell at ValuedOn for
// |TotalSell|. Events are ordered by date, buys before sells on the same
// date, then by transaction id.
//
// Rows whose amounts cannot be converted are skipped and reported.
func CapitalDeployed(ctx context.Context, rows []PricedTransaction, rates Rates) (Capital, error) {
	if err := rates.validate(); err != nil {
		return Capital{}, err
	}
	var (
		c    Capital
		errs []error
	)
	for _, r := range rows {
		events, err := flows(ctx, r, rates)
		if err != nil {
			c.Skipped = append(c.Skipped, r.ID)
			errs = append(errs, fmt.Errorf("transaction #%d: %w", r.ID, err))
			continue
		}
		c.Events = append(c.Events, events...)
	}
	slices.SortStableFunc(c.Events, func(a, b CashFlowEvent) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case a.Date.After(b.Date):
			return 1
		}
		return cmp.Or(cmp.Compare(a.Kind, b.Kind), cmp.Compare(a.ID, b.ID))
	})

	capital, available := decimal.Zero, decimal.Zero
	for _, e := range c.Events {
		switch e.Kind {
		case BuyFlow:
			if available.LessThan(e.Amount) {
				capital = capital.Add(e.Amount.Sub(available))
				available = decimal.Zero
			} else {
				available = available.Sub(e.Amount)
			}
		case SellFlow:
			available = available.Add(e.Amount)
		}
	}
	c.Amount = capital.Round(0).IntPart()
	return c, errors.Join(errs...)
}

// flows returns the cash flow events of a row, converted to the home currency.
func flows(ctx context.Context, r PricedTransaction, rates Rates) ([]CashFlowEvent, error) {
	bought, err := Normalize(ctx, rates.Dated(), M(r.Cost().Abs(), r.Currency), r.DateBuy)
	if err != nil {
		return nil, err
	}
	events := []CashFlowEvent{{Date: r.DateBuy, Kind: BuyFlow, Amount: bought.Decimal(), ID: r.ID}}

	var (
		proceeds Money
		conv     Converter
	)
	switch r.State {
	case Closed:
		proceeds, conv = M(r.Proceeds(true).Abs(), r.Currency), rates.Dated()
	case ValuedToday:
		proceeds, conv = M(r.TotalSell.Abs(), r.Currency), rates.Live()
	default:
		return events, nil
	}
	on, _ := r.Settlement()
	sold, err := Normalize(ctx, conv, proceeds, on)
	if err != nil {
		return nil, err
	}
	return append(events, CashFlowEvent{Date: on, Kind: SellFlow, Amount: sold.Decimal(), ID: r.ID}), nil
}

// Return is earnings as a percentage of capital, 0 when capital is 0.
func Return(earnings Money, capital int64) Percent {
	return PercentOf(earnings.Decimal(), decimal.NewFromInt(capital))
}
