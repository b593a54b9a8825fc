package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/date"
)

// IncomeMarkdown renders the salary months of a report.
func IncomeMarkdown(r *tradebook.Report, export string) string {
	var b strings.Builder
	s := r.Income
	fmt.Fprint(&b, "# Income\n\n")
	if len(s.Months) == 0 {
		fmt.Fprint(&b, "No salary recorded in range.\n")
		return b.String()
	}

	table(&b, "lrrr", "Month", "Income", "Expenses", "Savings")
	for _, m := range s.Months {
		row(&b, date.Monthly.Range(m.Date).Identifier(), m.Income.String(), m.Expenses.String(), m.Savings.SignedString())
	}
	row(&b, "**Total**", "**"+s.TotalIncome.String()+"**", "**"+s.Expenses.String()+"**", "**"+s.Savings.SignedString()+"**")
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "Monthly average: %s\n", exported(r.Snapshot, s.MonthlyAverage, export))
	return b.String()
}
