package cmd

import (
	"context"
	"flag"
	"strings"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/renderer"
	"github.com/google/subcommands"
)

type incomeCmd struct {
	analysisFlags
}

func (*incomeCmd) Name() string     { return "income" }
func (*incomeCmd) Synopsis() string { return "display salaries, expenses and savings" }
func (*incomeCmd) Usage() string {
	return `tbk income [-owner <name>] [-r <range>] [-d <date>] [-export <currency>]

  Lists the recorded salary months in the home currency. A salary row is a
  transaction on the "Salary" stock: its sell price is the income and its buy
  price the expenses of the month.
`
}

func (c *incomeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	export := strings.ToUpper(c.export)
	c.export = export
	return runReport(ctx, &c.analysisFlags, withWarnings(func(r *tradebook.Report) string {
		return renderer.IncomeMarkdown(r, export)
	}))
}
