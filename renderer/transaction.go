package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/tradebook"
)

// TransactionsMarkdown renders the rows of a report, one line per transaction.
func TransactionsMarkdown(rows []tradebook.PricedTransaction) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Transactions\n\n")
	table(&b, "lllllrrrrr", "#", "Owner", "Stock", "State", "Bought", "Total Buy", "Settled", "Total Sell", "Gain", "Earning")
	for _, r := range rows {
		settled := ""
		if on, ok := r.Settlement(); ok {
			settled = on.String()
		}
		totalSell := ""
		if r.State != tradebook.Open {
			totalSell = r.TotalSell.StringFixed(2)
		}
		row(&b,
			fmt.Sprint(r.ID),
			r.Owner,
			r.Stock,
			r.State.String(),
			r.DateBuy.String(),
			fmt.Sprintf("%s %s", r.TotalBuy.StringFixed(2), r.Currency),
			settled,
			totalSell,
			amount(r.Gain),
			earning(r),
		)
	}
	return b.String()
}
