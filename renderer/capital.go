package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/tradebook"
	"github.com/shopspring/decimal"
)

// CapitalMarkdown renders the cash flow replay behind the capital deployed.
//
// Each event shows the cash available after it and the new money it required.
func CapitalMarkdown(r *tradebook.Report) string {
	var b strings.Builder
	c := r.Capital

	fmt.Fprintf(&b, "# Capital Deployed: %s\n\n", tradebook.M(c.Amount, r.Home))
	fmt.Fprintf(&b, "Return on capital: %s\n\n", r.Return.SignedString())

	if len(c.Events) > 0 {
		fmt.Fprint(&b, "## Cash Flows\n\n")
		table(&b, "llrrrr", "Date", "Kind", "Transaction", "Amount", "Cash", "Injected")
		var cash, injected decimal.Decimal
		for _, e := range c.Events {
			added := decimal.Zero
			switch e.Kind {
			case tradebook.BuyFlow:
				if e.Amount.GreaterThan(cash) {
					added = e.Amount.Sub(cash)
					injected = injected.Add(added)
					cash = decimal.Zero
				} else {
					cash = cash.Sub(e.Amount)
				}
			case tradebook.SellFlow:
				cash = cash.Add(e.Amount)
			}
			row(&b, e.Date.String(), e.Kind.String(), fmt.Sprintf("#%d", e.ID),
				e.Amount.StringFixed(2), cash.StringFixed(2), added.StringFixed(2))
		}
		fmt.Fprintln(&b)
	}

	if len(c.Skipped) > 0 {
		ids := make([]string, len(c.Skipped))
		for i, id := range c.Skipped {
			ids[i] = fmt.Sprintf("#%d", id)
		}
		fmt.Fprintf(&b, "Skipped transactions: %s\n", strings.Join(ids, ", "))
	}
	return b.String()
}
