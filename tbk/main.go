// Command tbk analyzes a book of stock trades.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/etnz/tradebook/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command line for shell completion.
// Enable it with: COMP_INSTALL=1 tbk
func completion() *complete.Command {
	ranges := predict.Set{"1M", "3M", "6M", "YTD", "1Y", "ALL"}
	report := map[string]complete.Predictor{
		"owner":      predict.Something,
		"r":          ranges,
		"d":          predict.Something,
		"conversion": predict.Set{"snapshot", "historical"},
		"tax":        predict.Something,
		"export":     predict.Set{"USD", "PLN", "EUR", "GBP", "CHF"},
		"open":       predict.Nothing,
		"dividends":  predict.Nothing,
		"strict":     predict.Nothing,
	}
	return &complete.Command{
		Sub: map[string]*complete.Command{
			"summary":   {Flags: report},
			"capital":   {Flags: report},
			"curve":     {Flags: report},
			"breakdown": {Flags: report},
			"income":    {Flags: report},
			"tx":        {Flags: report},
			"add": {Flags: map[string]complete.Predictor{
				"owner": predict.Something,
				"s":     predict.Something,
				"t":     predict.Something,
				"c":     predict.Something,
				"p":     predict.Something,
				"q":     predict.Something,
				"d":     predict.Something,
			}},
			"close": {Flags: map[string]complete.Predictor{
				"id":  predict.Something,
				"p":   predict.Something,
				"q":   predict.Something,
				"div": predict.Something,
				"d":   predict.Something,
			}},
			"serve": {Flags: map[string]complete.Predictor{
				"port": predict.Something,
				"dev":  predict.Nothing,
			}},
			"help":     {},
			"commands": {},
			"flags":    {},
		},
		Flags: map[string]complete.Predictor{
			"config": predict.Files("*.yaml"),
			"raw":    predict.Nothing,
		},
	}
}

func main() {
	completion().Complete(path.Base(os.Args[0]))

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
