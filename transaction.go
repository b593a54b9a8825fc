package tradebook

import (
	"errors"
	"strings"

	"github.com/etnz/tradebook/date"
	"github.com/shopspring/decimal"
)

// Pseudo stocks recorded in the same table as trades.
const (
	StockSalary  = "Salary"
	StockSavings = "Savings"
)

// Transaction is a buy, optionally followed by the sell that closed it.
//
// A zero DateSell marks an open position. Transactions are immutable inputs:
// every stage of an analysis returns new values instead of updating them.
type Transaction struct {
	ID           int64               `json:"id"`
	Owner        string              `json:"owner"`
	Stock        string              `json:"stock"`    // Stock is the display label.
	Ticker       string              `json:"ticker"`   // Ticker is the market symbol.
	Currency     string              `json:"currency"` // Currency of prices and dividends.
	PriceBuy     decimal.Decimal     `json:"price_buy"`
	QuantityBuy  decimal.Decimal     `json:"quantity_buy"`
	DateBuy      date.Date           `json:"date_buy"`
	PriceSell    decimal.NullDecimal `json:"price_sell"`
	QuantitySell decimal.NullDecimal `json:"quantity_sell"`
	DateSell     date.Date           `json:"date_sell"`
	Dividends    decimal.Decimal     `json:"dividends"`
}

// IsOpen reports whether the position has not been sold yet.
func (t Transaction) IsOpen() bool { return t.DateSell.IsZero() }

// Cost returns price_buy * quantity_buy in the transaction currency.
func (t Transaction) Cost() decimal.Decimal { return t.PriceBuy.Mul(t.QuantityBuy) }

// Proceeds returns price_sell * quantity_sell, plus dividends when asked to,
// in the transaction currency. It is zero for an open position.
func (t Transaction) Proceeds(withDividends bool) decimal.Decimal {
	if t.IsOpen() {
		return decimal.Zero
	}
	p := t.PriceSell.Decimal.Mul(t.QuantitySell.Decimal)
	if withDividends {
		p = p.Add(t.Dividends)
	}
	return p
}

// Close returns a copy of an open transaction sold on 'on'.
// A zero quantity sells the whole position.
func (t Transaction) Close(on date.Date, price, quantity, dividends decimal.Decimal) (Transaction, error) {
	if !t.IsOpen() {
		return t, &ValidationError{ID: t.ID, Field: "date_sell", Reason: "is already set, position " + t.DateSell.String() + " is closed"}
	}
	if quantity.IsZero() {
		quantity = t.QuantityBuy
	}
	t.DateSell = on
	t.PriceSell = decimal.NewNullDecimal(price)
	t.QuantitySell = decimal.NewNullDecimal(quantity)
	t.Dividends = dividends
	return t, t.Validate()
}

// Validate checks that the transaction has every field its state requires.
func (t Transaction) Validate() error {
	invalid := func(field, reason string) error {
		return &ValidationError{ID: t.ID, Field: field, Reason: reason}
	}
	switch {
	case strings.TrimSpace(t.Owner) == "":
		return invalid("owner", "is missing")
	case strings.TrimSpace(t.Stock) == "" && strings.TrimSpace(t.Ticker) == "":
		return invalid("stock", "and ticker are missing")
	case !KnownCurrency(t.Currency):
		return invalid("currency", "'"+t.Currency+"' is not an ISO 4217 code")
	case t.DateBuy.IsZero():
		return invalid("date_buy", "is missing")
	case !t.QuantityBuy.IsPositive():
		return invalid("quantity_buy", "must be positive, got "+t.QuantityBuy.String())
	case t.PriceBuy.IsNegative():
		return invalid("price_buy", "must not be negative, got "+t.PriceBuy.String())
	}
	if t.IsOpen() {
		return nil
	}
	switch {
	case !t.PriceSell.Valid:
		return invalid("price_sell", "is required when date_sell is set")
	case !t.QuantitySell.Valid:
		return invalid("quantity_sell", "is required when date_sell is set")
	case t.DateSell.Before(t.DateBuy):
		return invalid("date_sell", "is before date_buy "+t.DateBuy.String())
	}
	return nil
}

// ValidateAll validates every transaction and joins all failures.
func ValidateAll(txs []Transaction) error {
	var errs []error
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
