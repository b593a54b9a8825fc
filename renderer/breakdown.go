package renderer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/date"
	"github.com/shopspring/decimal"
)

// BreakdownMarkdown renders the best and worst trades, the earnings per stock
// and the weekday heatmap.
func BreakdownMarkdown(r *tradebook.Report) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Breakdown\n\n")

	trades(&b, "Best Trades", r.Best)
	trades(&b, "Worst Trades", r.Worst)

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Earnings per Stock\n\n")
		table(w, "lr", "Stock", "Earning")
		for _, s := range r.ByStock {
			row(w, s.Stock, s.Earning.SignedString())
		}
		fmt.Fprintln(w)
		return len(r.ByStock) > 0
	})

	ConditionalBlock(&b, func(w io.Writer) bool {
		heatmap(w, r.Heatmap)
		return len(r.Heatmap) > 0
	})
	return b.String()
}

func trades(w io.Writer, title string, rows []tradebook.PricedTransaction) {
	ConditionalBlock(w, func(w io.Writer) bool {
		fmt.Fprintf(w, "## %s\n\n", title)
		table(w, "llllr", "#", "Owner", "Stock", "Sold", "Earning")
		for _, t := range rows {
			row(w, fmt.Sprint(t.ID), t.Owner, t.Stock, t.DateSell.String(), earning(t))
		}
		fmt.Fprintln(w)
		return len(rows) > 0
	})
}

var weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

// heatmap writes one line per week and one column per weekday.
func heatmap(w io.Writer, cells []tradebook.HeatCell) {
	fmt.Fprint(w, "## Weekday Heatmap\n\n")
	headers := []string{"Week"}
	for _, d := range weekdays {
		headers = append(headers, d.String()[:3])
	}
	table(w, "lrrrrr", headers...)

	var (
		week  date.Date
		label string
		line  map[time.Weekday]decimal.Decimal
	)
	flush := func() {
		if line == nil {
			return
		}
		cells := []string{label}
		for _, d := range weekdays {
			v, ok := line[d]
			if !ok {
				cells = append(cells, "")
				continue
			}
			cells = append(cells, amount(v))
		}
		row(w, cells...)
	}
	for _, c := range cells {
		if line == nil || c.Week != week {
			flush()
			week, label, line = c.Week, c.WeekLabel(), make(map[time.Weekday]decimal.Decimal)
		}
		line[c.Weekday] = c.Earning
	}
	flush()
	fmt.Fprintln(w)
}
