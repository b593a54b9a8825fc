package cmd

import (
	"context"
	"flag"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/renderer"
	"github.com/google/subcommands"
)

type txCmd struct {
	analysisFlags
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list the transactions in range with their totals" }
func (*txCmd) Usage() string {
	return `tbk tx [-owner <name>] [-r <range>] [-d <date>] [-open]

  Lists every investment in range with its state, totals and earning.
`
}

func (c *txCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runReport(ctx, &c.analysisFlags, withWarnings(func(r *tradebook.Report) string {
		return renderer.TransactionsMarkdown(r.Rows)
	}))
}
