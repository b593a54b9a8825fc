// Package store reads and writes transactions in a SQL table, on PostgreSQL
// or SQLite.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/date"
	"github.com/shopspring/decimal"
)

// Source is a table of transactions.
type Source interface {
	// Transactions returns every transaction ordered by id. They are validated.
	Transactions(ctx context.Context) ([]tradebook.Transaction, error)
	// Add inserts t and returns its id.
	Add(ctx context.Context, t tradebook.Transaction) (int64, error)
	// Close records the sale of the open transaction id.
	Close(ctx context.Context, id int64, on date.Date, price, quantity, dividends decimal.Decimal) (tradebook.Transaction, error)
	// Shutdown releases the connection.
	Shutdown() error
}

// ErrNotFound is returned when a transaction id does not exist.
var ErrNotFound = errors.New("transaction not found")

const columns = `id, owner, stock, ticker, currency, price_buy, quantity_buy, date_buy,
	price_sell, quantity_sell, date_sell, dividends`

// Open connects to driver ("sqlite" or "postgres") with dsn.
func Open(ctx context.Context, driver, dsn string) (Source, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3", "":
		s, err := OpenSQLite(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres", "postgresql", "pgx":
		p, err := OpenPostgres(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q, want sqlite or postgres", driver)
	}
}

// --- scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

func scanTransaction(row scannable) (tradebook.Transaction, error) {
	var (
		t         tradebook.Transaction
		ticker    *string
		dividends decimal.NullDecimal
	)
	err := row.Scan(&t.ID, &t.Owner, &t.Stock, &ticker, &t.Currency,
		&t.PriceBuy, &t.QuantityBuy, &t.DateBuy,
		&t.PriceSell, &t.QuantitySell, &t.DateSell, &dividends)
	if err != nil {
		return t, err
	}
	if ticker != nil {
		t.Ticker = *ticker
	}
	if t.Ticker == "" {
		t.Ticker = t.Stock
	}
	t.Currency = strings.ToUpper(strings.TrimSpace(t.Currency))
	t.Dividends = dividends.Decimal // NULL is no dividend
	return t, nil
}

// collect scans every row and validates the result.
func collect(rows interface {
	scannable
	Next() bool
	Err() error
}) ([]tradebook.Transaction, error) {
	var txs []tradebook.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := tradebook.ValidateAll(txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func args(t tradebook.Transaction) []any {
	return []any{t.Owner, t.Stock, t.Ticker, t.Currency, t.PriceBuy, t.QuantityBuy, t.DateBuy,
		t.PriceSell, t.QuantitySell, t.DateSell, t.Dividends}
}
