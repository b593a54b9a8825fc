package renderer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

type rates map[string]float64

func (r rates) Rate(_ context.Context, home, currency string, _ date.Date) (decimal.Decimal, error) {
	if v, ok := r[currency]; ok {
		return decimal.NewFromFloat(v), nil
	}
	return decimal.Zero, fmt.Errorf("no %s/%s", home, currency)
}

func trade(id int64, stock, cur string, qty, buy float64, bought string, sell float64, sold string, div float64) tradebook.Transaction {
	return tradebook.Transaction{
		ID:           id,
		Owner:        "ann",
		Stock:        stock,
		Ticker:       stock,
		Currency:     cur,
		PriceBuy:     decimal.NewFromFloat(buy),
		QuantityBuy:  decimal.NewFromFloat(qty),
		DateBuy:      date.MustParse(bought),
		PriceSell:    decimal.NewNullDecimal(decimal.NewFromFloat(sell)),
		QuantitySell: decimal.NewNullDecimal(decimal.NewFromFloat(qty)),
		DateSell:     date.MustParse(sold),
		Dividends:    decimal.NewFromFloat(div),
	}
}

// report runs an analysis of two trades and one salary.
func report(t *testing.T, r rates) *tradebook.Report {
	t.Helper()
	a := &tradebook.Analyzer{
		Rates:      r,
		Historical: tradebook.NewHistorical("EUR", r, nil),
		Home:       "EUR",
		Currencies: []string{"USD", "PLN"},
		Log:        zerolog.Nop(),
	}
	txs := []tradebook.Transaction{
		trade(1, "ASML", "EUR", 10, 100, "2024-01-01", 120, "2024-02-01", 0),
		trade(2, "XOM", "USD", 5, 50, "2024-01-15", 40, "2024-03-01", 5),
		trade(3, tradebook.StockSalary, "PLN", 1, 4300, "2024-02-29", 8600, "2024-02-29", 0),
	}
	rep, err := a.Run(context.Background(), txs, tradebook.DefaultOptions(date.MustParse("2024-03-10")))
	require.NoError(t, err)
	return rep
}

// document is the outline of a parsed markdown document.
type document struct {
	headings []string
	tables   [][][]string // rows of cells, header included
}

func parse(t *testing.T, md string) document {
	t.Helper()
	src := []byte(md)
	root := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser().Parse(text.NewReader(src))

	var doc document
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			doc.headings = append(doc.headings, content(n, src))
			return ast.WalkSkipChildren, nil
		case *east.Table:
			var tbl [][]string
			for r := n.FirstChild(); r != nil; r = r.NextSibling() {
				var cells []string
				for c := r.FirstChild(); c != nil; c = c.NextSibling() {
					cells = append(cells, content(c, src))
				}
				tbl = append(tbl, cells)
			}
			doc.tables = append(doc.tables, tbl)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	require.NoError(t, err)
	return doc
}

// content concatenates the text under n.
func content(n ast.Node, src []byte) string {
	var b strings.Builder
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := c.(*ast.Text); ok && entering {
			b.Write(t.Segment.Value(src))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func TestSummaryMarkdown(t *testing.T) {
	r := report(t, rates{"USD": 1.10, "PLN": 4.30})
	doc := parse(t, SummaryMarkdown(r, ""))

	assert.Equal(t, []string{"Trading Summary on 2024-03-10", "Totals", "Owners", "Rates on 2024-03-10"}, doc.headings)
	require.Len(t, doc.tables, 3)

	totals := doc.tables[0]
	require.Len(t, totals, 6)
	assert.Equal(t, []string{"Metric", "Value"}, totals[0])
	assert.Equal(t, "Return", totals[3][0])
	assert.Equal(t, "+12.97%", totals[3][1])

	owners := doc.tables[1]
	require.Len(t, owners, 2)
	assert.Equal(t, "ann", owners[1][0])
	assert.Equal(t, "2", owners[1][2])
	assert.Equal(t, "50.00%", owners[1][4])

	assert.Equal(t, []string{"PLN", "4.3"}, doc.tables[2][1])
	assert.Equal(t, []string{"USD", "1.1"}, doc.tables[2][2])
}

func TestSummaryMarkdown_Export(t *testing.T) {
	r := report(t, rates{"USD": 1.10, "PLN": 4.30})
	doc := parse(t, SummaryMarkdown(r, "PLN"))

	// 159.09 EUR * 4.3
	assert.Contains(t, doc.tables[0][1][1], "684")
	assert.NotContains(t, doc.tables[0][3][1], "(", "percentages are not exported")
}

func TestSummaryMarkdown_Unrealized(t *testing.T) {
	r := report(t, rates{"USD": 1.10, "PLN": 4.30})
	r.Options.IncludeOpen = true
	r.Unrealized = tradebook.M(100, "EUR")
	doc := parse(t, SummaryMarkdown(r, ""))

	totals := doc.tables[0]
	require.Len(t, totals, 7)
	assert.Equal(t, "Unrealized", totals[2][0])
	assert.Contains(t, totals[2][1], "100.00")
	assert.Equal(t, "+12.97%", totals[4][1], "return is unchanged")
}

func TestSummaryMarkdown_Warnings(t *testing.T) {
	r := report(t, rates{"PLN": 4.30})
	md := SummaryMarkdown(r, "")
	doc := parse(t, md)

	assert.Contains(t, doc.headings, "Warnings")
	assert.Contains(t, md, "transaction #2")
}

func TestCapitalMarkdown(t *testing.T) {
	r := report(t, rates{"USD": 1.10, "PLN": 4.30})
	doc := parse(t, CapitalMarkdown(r))

	require.Len(t, doc.tables, 1)
	events := doc.tables[0]
	require.Len(t, events, 5)
	assert.Equal(t, []string{"2024-01-01", "buy", "#1", "1000.00", "0.00", "1000.00"}, events[1])
	assert.Equal(t, []string{"2024-01-15", "buy", "#2", "227.27", "0.00", "227.27"}, events[2])
	assert.Equal(t, []string{"2024-02-01", "sell", "#1", "1200.00", "1200.00", "0.00"}, events[3])
	assert.Equal(t, []string{"2024-03-01", "sell", "#2", "186.36", "1386.36", "0.00"}, events[4])
}

func TestCurveMarkdown(t *testing.T) {
	r := report(t, rates{"USD": 1.10, "PLN": 4.30})
	doc := parse(t, CurveMarkdown(r))

	assert.Equal(t, []string{"Cumulative Earnings (EUR)", "Daily", "Above Zero"}, doc.headings)
	daily := doc.tables[0]
	require.Len(t, daily, 3)
	assert.Equal(t, []string{"2024-02-01", "ann", "+200.00", "+200.00"}, daily[1])
	assert.Equal(t, []string{"2024-03-01", "ann", "-40.91", "+159.09"}, daily[2])

	empty := &tradebook.Report{Home: "EUR"}
	assert.Contains(t, CurveMarkdown(empty), "No settled trades")
}

func TestBreakdownMarkdown(t *testing.T) {
	r := report(t, rates{"USD": 1.10, "PLN": 4.30})
	doc := parse(t, BreakdownMarkdown(r))

	assert.Equal(t, []string{"Breakdown", "Best Trades", "Worst Trades", "Earnings per Stock", "Weekday Heatmap"}, doc.headings)
	require.Len(t, doc.tables, 4)
	assert.Equal(t, "ASML", doc.tables[0][1][2])
	assert.Equal(t, "XOM", doc.tables[1][1][2])

	heat := doc.tables[3]
	assert.Equal(t, []string{"Week", "Mon", "Tue", "Wed", "Thu", "Fri"}, heat[0])
	require.Len(t, heat, 3)
	assert.Equal(t, []string{"W05", "", "", "", "+200.00", ""}, heat[1])
	assert.Equal(t, []string{"W09", "", "", "", "", "-40.91"}, heat[2])
}

func TestIncomeMarkdown(t *testing.T) {
	r := report(t, rates{"USD": 1.10, "PLN": 4.30})
	doc := parse(t, IncomeMarkdown(r, ""))

	require.Len(t, doc.tables, 1)
	require.Len(t, doc.tables[0], 3)
	assert.Equal(t, "2024-02", doc.tables[0][1][0])
	assert.Equal(t, "Total", doc.tables[0][2][0])

	assert.Contains(t, IncomeMarkdown(&tradebook.Report{}, ""), "No salary")
}

func TestTransactionsMarkdown(t *testing.T) {
	r := report(t, rates{"USD": 1.10, "PLN": 4.30})
	doc := parse(t, TransactionsMarkdown(r.Rows))

	require.Len(t, doc.tables, 1)
	rows := doc.tables[0]
	require.Len(t, rows, 3, "salaries are not listed")
	assert.Equal(t, []string{"2", "ann", "XOM", "closed", "2024-01-15", "250.00 USD", "2024-03-01", "205.00", "-45.00"}, rows[2][:9])
}
