package tradebook

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/tradebook/date"
	"github.com/shopspring/decimal"
)

// State is the settlement state of a priced transaction.
type State int

const (
	// Closed rows have been sold.
	Closed State = iota
	// Open rows are held and have no market value.
	Open
	// ValuedToday rows are held and valued at today's market price.
	// They are not closed: win rate and holding time ignore them.
	ValuedToday
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case ValuedToday:
		return "valued"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// PricedTransaction is a transaction with its derived totals for one analysis pass.
type PricedTransaction struct {
	Transaction
	State     State           `json:"state"`
	Market    decimal.Decimal `json:"market,omitzero"`    // Market price of a ValuedToday row.
	ValuedOn  date.Date       `json:"valued_on,omitzero"` // Day of the market price.
	TotalBuy  decimal.Decimal `json:"total_buy"`
	TotalSell decimal.Decimal `json:"total_sell"`
	Gain      decimal.Decimal `json:"gain"` // TotalSell - TotalBuy in the transaction currency.
	Earning   Money           `json:"earning"`
	Err       error           `json:"-"` // Conversion failure, the row has no earning.
}

// Settlement returns the date the row contributes to time series: the sale
// date of a closed row, the valuation day of a valued row. Open rows have none.
func (p PricedTransaction) Settlement() (date.Date, bool) {
	switch p.State {
	case Closed:
		return p.DateSell, true
	case ValuedToday:
		return p.ValuedOn, true
	default:
		return date.Date{}, false
	}
}

// HasEarning reports whether the row has a home currency earning.
func (p PricedTransaction) HasEarning() bool {
	return p.State != Open && p.Err == nil && p.Earning.Currency() != ""
}

// Priced wraps transactions without valuation: closed rows are Closed, others Open.
func Priced(txs []Transaction) []PricedTransaction {
	rows := make([]PricedTransaction, len(txs))
	for i, t := range txs {
		rows[i] = PricedTransaction{Transaction: t, State: Open}
		if !t.IsOpen() {
			rows[i].State = Closed
		}
	}
	return rows
}

// ResolveOpen values open positions at today's market price.
//
// Open rows whose ticker is priced become ValuedToday with TotalSell =
// price * quantity_buy. Unpriced rows stay Open and are reported in the
// returned Quotes and error. A nil resolver leaves every open row Open.
func ResolveOpen(ctx context.Context, txs []Transaction, resolver *Resolver, today date.Date) ([]PricedTransaction, Quotes, error) {
	rows := Priced(txs)
	if resolver == nil {
		return rows, Quotes{}, nil
	}

	var tickers []string
	for _, r := range rows {
		if r.State == Open {
			tickers = append(tickers, r.Ticker)
		}
	}
	if len(tickers) == 0 {
		return rows, Quotes{}, nil
	}

	q, err := resolver.Resolve(ctx, tickers)
	if err != nil && !errors.Is(err, ErrPriceUnavailable) {
		return rows, q, fmt.Errorf("cannot resolve open positions: %w", err)
	}

	for i, r := range rows {
		if r.State != Open {
			continue
		}
		price, ok := q.Price(r.Ticker)
		if !ok {
			continue
		}
		r.State = ValuedToday
		r.Market = price
		r.ValuedOn = today
		r.TotalBuy = r.Cost()
		r.TotalSell = price.Mul(r.QuantityBuy)
		r.Gain = r.TotalSell.Sub(r.TotalBuy)
		rows[i] = r
	}
	return rows, q, err
}

// WithoutValuations returns a copy of rows where ValuedToday rows are Open again.
func WithoutValuations(rows []PricedTransaction) []PricedTransaction {
	res := make([]PricedTransaction, len(rows))
	for i, r := range rows {
		if r.State == ValuedToday {
			r = PricedTransaction{Transaction: r.Transaction, State: Open}
		}
		res[i] = r
	}
	return res
}
