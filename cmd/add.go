package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/date"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// addCmd records a new purchase.
type addCmd struct {
	owner    string
	stock    string
	ticker   string
	currency string
	price    string
	quantity string
	date     string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a purchase" }
func (*addCmd) Usage() string {
	return `tbk add -owner <name> -s <stock> -c <currency> -p <price> -q <quantity> [-t <ticker>] [-d <date>]

  Records an open position. Use 'tbk close' once it is sold.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.owner, "owner", "", "Owner of the position.")
	f.StringVar(&c.stock, "s", "", "Stock label, e.g. ASML.")
	f.StringVar(&c.ticker, "t", "", "Market ticker, e.g. ASML.AS. Defaults to the stock label.")
	f.StringVar(&c.currency, "c", "", "Currency of the price.")
	f.StringVar(&c.price, "p", "", "Unit purchase price.")
	f.StringVar(&c.quantity, "q", "", "Quantity bought.")
	f.StringVar(&c.date, "d", date.Today().String(), "Purchase date.")
}

func (c *addCmd) transaction() (tradebook.Transaction, error) {
	on, err := date.Parse(c.date)
	if err != nil {
		return tradebook.Transaction{}, fmt.Errorf("invalid date %q: %w", c.date, err)
	}
	price, err := decimal.NewFromString(c.price)
	if err != nil {
		return tradebook.Transaction{}, fmt.Errorf("invalid price %q: %w", c.price, err)
	}
	quantity, err := decimal.NewFromString(c.quantity)
	if err != nil {
		return tradebook.Transaction{}, fmt.Errorf("invalid quantity %q: %w", c.quantity, err)
	}
	ticker := c.ticker
	if ticker == "" {
		ticker = c.stock
	}
	t := tradebook.Transaction{
		Owner:       c.owner,
		Stock:       c.stock,
		Ticker:      ticker,
		Currency:    strings.ToUpper(c.currency),
		PriceBuy:    price,
		QuantityBuy: quantity,
		DateBuy:     on,
	}
	return t, t.Validate()
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	t, err := c.transaction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	id, err := a.source.Add(ctx, t)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error adding transaction: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(output, "Added transaction #%d: %s %s %s at %s %s\n", id, t.Owner, t.QuantityBuy, t.Stock, t.PriceBuy, t.Currency)
	return subcommands.ExitSuccess
}

// closeCmd records the sale of an open position.
type closeCmd struct {
	id        int64
	price     string
	quantity  string
	dividends string
	date      string
}

func (*closeCmd) Name() string     { return "close" }
func (*closeCmd) Synopsis() string { return "record the sale of an open position" }
func (*closeCmd) Usage() string {
	return `tbk close -id <id> -p <price> [-q <quantity>] [-div <dividends>] [-d <date>]

  Sets the sale of an open transaction. The quantity defaults to the quantity
  bought. Dividends are the total received while holding the position.
`
}

func (c *closeCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "Transaction id.")
	f.StringVar(&c.price, "p", "", "Unit sale price.")
	f.StringVar(&c.quantity, "q", "0", "Quantity sold, 0 for the whole position.")
	f.StringVar(&c.dividends, "div", "0", "Dividends received, in the transaction currency.")
	f.StringVar(&c.date, "d", date.Today().String(), "Sale date.")
}

func (c *closeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -id is required")
		return subcommands.ExitUsageError
	}
	on, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	var values [3]decimal.Decimal
	for i, s := range []string{c.price, c.quantity, c.dividends} {
		if values[i], err = decimal.NewFromString(s); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing %q: %v\n", s, err)
			return subcommands.ExitUsageError
		}
	}

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	t, err := a.source.Close(ctx, c.id, on, values[0], values[1], values[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error closing transaction #%d: %v\n", c.id, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(output, "Closed transaction #%d: %s %s sold at %s %s on %s\n", t.ID, t.QuantitySell.Decimal, t.Stock, t.PriceSell.Decimal, t.Currency, t.DateSell)
	return subcommands.ExitSuccess
}
