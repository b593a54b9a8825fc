package cmd

import (
	"context"
	"flag"
	"strings"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/renderer"
	"github.com/google/subcommands"
)

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	analysisFlags
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display earnings, capital, return and per owner statistics" }
func (*summaryCmd) Usage() string {
	return `tbk summary [-owner <name>] [-r <range>] [-d <date>] [-open] [-conversion <policy>] [-export <currency>]

  Displays the totals of the closed trades in range: earnings, capital deployed,
  return on capital, tax due, and the statistics of every owner.
`
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	export := strings.ToUpper(c.export)
	c.export = export
	return runReport(ctx, &c.analysisFlags, func(r *tradebook.Report) string {
		return renderer.SummaryMarkdown(r, export)
	})
}
