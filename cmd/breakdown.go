package cmd

import (
	"context"
	"flag"

	"github.com/etnz/tradebook/renderer"
	"github.com/google/subcommands"
)

type breakdownCmd struct {
	analysisFlags
}

func (*breakdownCmd) Name() string     { return "breakdown" }
func (*breakdownCmd) Synopsis() string { return "display best and worst trades, earnings per stock and per weekday" }
func (*breakdownCmd) Usage() string {
	return `tbk breakdown [-owner <name>] [-r <range>] [-d <date>]

  Shows the best and worst closed trades, the stocks that earned the most and a
  weekday heatmap of daily earnings.
`
}

func (c *breakdownCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runReport(ctx, &c.analysisFlags, withWarnings(renderer.BreakdownMarkdown))
}
