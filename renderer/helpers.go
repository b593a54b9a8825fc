// Package renderer turns analysis reports into markdown documents.
package renderer

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/etnz/tradebook"
	"github.com/shopspring/decimal"
)

// ConditionalBlock let you fully write a block and decide at the end to print it or not.
// If the block function returns true, the content is printed to w, otherwise it is discarded.
func ConditionalBlock(w io.Writer, block func(io.Writer) bool) {
	bw := &bytes.Buffer{}
	if block(bw) {
		io.Copy(w, bw)
	}
}

// table writes a markdown table header. align holds one of 'l' or 'r' per column.
func table(w io.Writer, align string, headers ...string) {
	fmt.Fprintf(w, "| %s |\n", strings.Join(headers, " | "))
	seps := make([]string, len(headers))
	for i := range headers {
		seps[i] = ":---"
		if i < len(align) && align[i] == 'r' {
			seps[i] = "---:"
		}
	}
	fmt.Fprintf(w, "|%s|\n", strings.Join(seps, "|"))
}

func row(w io.Writer, cells ...string) {
	fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
}

// amount formats a raw decimal with two decimals and an explicit sign.
func amount(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}

// earning formats the earning of a row, or why it has none.
func earning(r tradebook.PricedTransaction) string {
	switch {
	case r.Err != nil:
		return "n/a"
	case r.State == tradebook.Open:
		return "open"
	case !r.HasEarning():
		return "-"
	}
	return r.Earning.SignedString()
}

// exported appends the value of m in currency when the snapshot can convert it.
func exported(s *tradebook.Snapshot, m tradebook.Money, currency string) string {
	if s == nil || currency == "" || m.In(currency) {
		return m.String()
	}
	x, err := s.Export(m, currency)
	if err != nil {
		return m.String()
	}
	return fmt.Sprintf("%s (%s)", m.String(), x.String())
}
