package cmd

import (
	"context"
	"flag"

	"github.com/etnz/tradebook/renderer"
	"github.com/google/subcommands"
)

// capitalCmd holds the flags for the 'capital' subcommand.
type capitalCmd struct {
	analysisFlags
}

func (*capitalCmd) Name() string     { return "capital" }
func (*capitalCmd) Synopsis() string { return "replay cash flows to show the capital actually deployed" }
func (*capitalCmd) Usage() string {
	return `tbk capital [-owner <name>] [-r <range>] [-d <date>] [-open] [-conversion <policy>]

  Replays every buy and sell in chronological order and shows how much new
  money each purchase required once earlier sale proceeds were used up.
`
}

func (c *capitalCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return runReport(ctx, &c.analysisFlags, withWarnings(renderer.CapitalMarkdown))
}
