package renderer

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/etnz/tradebook"
)

// SummaryMarkdown renders the headline figures of a report: per owner
// statistics, earnings, capital, return and tax.
//
// When export is a snapshot currency, money totals are also shown in it.
func SummaryMarkdown(r *tradebook.Report, export string) string {
	var b strings.Builder
	o := r.Options

	title := "Trading Summary"
	if o.Owner != "" {
		title = fmt.Sprintf("Trading Summary for %s", o.Owner)
	}
	fmt.Fprintf(&b, "# %s on %s\n\n", title, o.Today)
	fmt.Fprintf(&b, "Range: %s, conversion: %s, home currency: %s\n\n", o.Range, o.Conversion, r.Home)

	fmt.Fprint(&b, "## Totals\n\n")
	table(&b, "lr", "Metric", "Value")
	row(&b, "Earnings", exported(r.Snapshot, r.Earnings, export))
	if o.IncludeOpen {
		row(&b, "Unrealized", exported(r.Snapshot, r.Unrealized, export))
	}
	row(&b, "Capital Deployed", exported(r.Snapshot, tradebook.M(r.Capital.Amount, r.Home), export))
	row(&b, "Return", r.Return.SignedString())
	row(&b, fmt.Sprintf("Tax (%s)", r.Tax.Rate), exported(r.Snapshot, r.Tax.Due, export))
	row(&b, "Net", exported(r.Snapshot, r.Tax.Net, export))
	fmt.Fprintln(&b)

	ConditionalBlock(&b, func(w io.Writer) bool {
		fmt.Fprint(w, "## Owners\n\n")
		table(w, "lrrrrrrr", "Owner", "Earnings", "Trades", "Open", "Win Rate", "Avg Days", "Best", "Worst")
		owners := slices.Sorted(maps.Keys(r.Owners))
		for _, name := range owners {
			s := r.Owners[name]
			row(w, name,
				s.TotalEarnings.SignedString(),
				fmt.Sprint(s.TotalTransactions),
				fmt.Sprint(s.OpenPositions),
				s.WinRate.String(),
				fmt.Sprintf("%.1f", s.AvgHoldingDays),
				s.BestTrade.SignedString(),
				s.WorstTrade.SignedString(),
			)
		}
		fmt.Fprintln(w)
		return len(owners) > 0
	})

	if len(r.Rates) > 0 {
		fmt.Fprintf(&b, "## Rates on %s\n\n", r.Snapshot.On())
		table(&b, "lr", "Currency", fmt.Sprintf("Per 1 %s", r.Home))
		for _, cur := range slices.Sorted(maps.Keys(r.Rates)) {
			row(&b, cur, r.Rates[cur].String())
		}
		fmt.Fprintln(&b)
	}

	WarningsMarkdown(&b, r)
	return b.String()
}

// WarningsMarkdown lists unpriced tickers and the errors of a partial report.
func WarningsMarkdown(w io.Writer, r *tradebook.Report) {
	ConditionalBlock(w, func(w io.Writer) bool {
		fmt.Fprint(w, "## Warnings\n\n")
		if len(r.Unpriced) > 0 {
			fmt.Fprintf(w, "Unpriced tickers: %s\n\n", strings.Join(r.Unpriced, ", "))
		}
		for _, e := range r.Errors {
			fmt.Fprintf(w, "- %s\n", e)
		}
		return len(r.Unpriced) > 0 || len(r.Errors) > 0
	})
}
