package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/date"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS transactions (
	id            BIGSERIAL PRIMARY KEY,
	owner         TEXT NOT NULL,
	stock         TEXT NOT NULL,
	ticker        TEXT,
	currency      TEXT NOT NULL,
	price_buy     NUMERIC NOT NULL,
	quantity_buy  NUMERIC NOT NULL,
	date_buy      DATE NOT NULL,
	price_sell    NUMERIC,
	quantity_sell NUMERIC,
	date_sell     DATE,
	dividends     NUMERIC DEFAULT 0
)`

// Postgres is a transaction table in a PostgreSQL database.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn and creates the table if it does not exist.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Shutdown() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) Transactions(ctx context.Context) ([]tradebook.Transaction, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+columns+` FROM transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("cannot read transactions: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

func (p *Postgres) Add(ctx context.Context, t tradebook.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	var id int64
	err := p.pool.QueryRow(ctx,
		`INSERT INTO transactions (owner, stock, ticker, currency, price_buy, quantity_buy, date_buy,
			price_sell, quantity_sell, date_sell, dividends)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`,
		args(t)...,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("cannot add transaction: %w", err)
	}
	return id, nil
}

func (p *Postgres) Close(ctx context.Context, id int64, on date.Date, price, quantity, dividends decimal.Decimal) (tradebook.Transaction, error) {
	t, err := scanTransaction(p.pool.QueryRow(ctx, `SELECT `+columns+` FROM transactions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return t, fmt.Errorf("#%d: %w", id, ErrNotFound)
	}
	if err != nil {
		return t, err
	}
	t, err = t.Close(on, price, quantity, dividends)
	if err != nil {
		return t, err
	}
	_, err = p.pool.Exec(ctx,
		`UPDATE transactions SET price_sell = $1, quantity_sell = $2, date_sell = $3, dividends = $4 WHERE id = $5`,
		t.PriceSell, t.QuantitySell, t.DateSell, t.Dividends, id)
	if err != nil {
		return t, fmt.Errorf("cannot close transaction #%d: %w", id, err)
	}
	return t, nil
}
