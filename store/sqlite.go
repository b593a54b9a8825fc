package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/date"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Decimals are stored as TEXT to keep them exact.
const sqliteSchema = `CREATE TABLE IF NOT EXISTS transactions (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	owner         TEXT NOT NULL,
	stock         TEXT NOT NULL,
	ticker        TEXT,
	currency      TEXT NOT NULL,
	price_buy     TEXT NOT NULL,
	quantity_buy  TEXT NOT NULL,
	date_buy      TEXT NOT NULL,
	price_sell    TEXT,
	quantity_sell TEXT,
	date_sell     TEXT,
	dividends     TEXT DEFAULT '0'
)`

// SQLite is a transaction table in a local SQLite file.
type SQLite struct {
	conn *sql.DB
	path string
}

// OpenSQLite opens (and creates if needed) the database file at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLite{conn: conn, path: path}, nil
}

func (s *SQLite) Shutdown() error { return s.conn.Close() }

func (s *SQLite) Transactions(ctx context.Context) ([]tradebook.Transaction, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT `+columns+` FROM transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("cannot read transactions: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

func (s *SQLite) Add(ctx context.Context, t tradebook.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	var id int64
	err := s.conn.QueryRowContext(ctx,
		`INSERT INTO transactions (owner, stock, ticker, currency, price_buy, quantity_buy, date_buy,
			price_sell, quantity_sell, date_sell, dividends)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		args(t)...,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("cannot add transaction: %w", err)
	}
	return id, nil
}

func (s *SQLite) Close(ctx context.Context, id int64, on date.Date, price, quantity, dividends decimal.Decimal) (tradebook.Transaction, error) {
	t, err := scanTransaction(s.conn.QueryRowContext(ctx, `SELECT `+columns+` FROM transactions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return t, fmt.Errorf("#%d: %w", id, ErrNotFound)
	}
	if err != nil {
		return t, err
	}
	t, err = t.Close(on, price, quantity, dividends)
	if err != nil {
		return t, err
	}
	_, err = s.conn.ExecContext(ctx,
		`UPDATE transactions SET price_sell = ?, quantity_sell = ?, date_sell = ?, dividends = ? WHERE id = ?`,
		t.PriceSell, t.QuantitySell, t.DateSell, t.Dividends, id)
	if err != nil {
		return t, fmt.Errorf("cannot close transaction #%d: %w", id, err)
	}
	return t, nil
}
