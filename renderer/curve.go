package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/tradebook"
)

// CurveMarkdown renders the daily earnings and the cumulative curve split in
// positive and negative segments.
func CurveMarkdown(r *tradebook.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Cumulative Earnings (%s)\n\n", r.Home)

	if len(r.Daily) == 0 {
		fmt.Fprint(&b, "No settled trades in range.\n")
		return b.String()
	}

	fmt.Fprint(&b, "## Daily\n\n")
	table(&b, "llrr", "Date", "Owner", "Earning", "Cumulative")
	for _, d := range r.Daily {
		row(&b, d.Date.String(), d.Owner, amount(d.Earning), amount(d.Cumulative))
	}
	fmt.Fprintln(&b)

	segments(&b, "Above Zero", r.Positive)
	segments(&b, "Below Zero", r.Negative)
	return b.String()
}

func segments(w io.Writer, title string, s []tradebook.Segment) {
	ConditionalBlock(w, func(w io.Writer) bool {
		fmt.Fprintf(w, "## %s\n\n", title)
		table(w, "llrr", "From", "To", "Start", "End")
		for _, seg := range s {
			first, last := seg[0], seg[len(seg)-1]
			row(w, first.X.Format("2006-01-02 15:04"), last.X.Format("2006-01-02 15:04"),
				fmt.Sprintf("%.2f", first.Y), fmt.Sprintf("%.2f", last.Y))
		}
		fmt.Fprintln(w)
		return len(s) > 0
	})
}
