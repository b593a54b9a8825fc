package cmd

import (
	"context"
	"flag"

	"github.com/etnz/tradebook/renderer"
	"github.com/google/subcommands"
)

type curveCmd struct {
	analysisFlags
}

func (*curveCmd) Name() string     { return "curve" }
func (*curveCmd) Synopsis() string { return "display daily and cumulative earnings" }
func (*curveCmd) Usage() string {
	return `tbk curve [-owner <name>] [-r <range>] [-d <date>] [-open]

  Lists the earnings of each settlement day with their running total, and the
  periods the total spent above and below zero.
`
}

func (c *curveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runReport(ctx, &c.analysisFlags, withWarnings(renderer.CurveMarkdown))
}
