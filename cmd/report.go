package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/renderer"
	"github.com/google/subcommands"
)

// runReport analyzes the configured store with the flags and prints render's markdown.
func runReport(ctx context.Context, flags *analysisFlags, render func(*tradebook.Report) string) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	opts, err := flags.options(a.cfg.Options)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if flags.export != "" && !tradebook.KnownCurrency(flags.export) {
		fmt.Fprintf(os.Stderr, "Error: -export %q is not a currency code\n", flags.export)
		return subcommands.ExitUsageError
	}

	report, err := a.analyze(ctx, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(render(report))

	if err := report.Err(); err != nil {
		a.log.Warn().Err(err).Msg("report is partial")
	}
	return subcommands.ExitSuccess
}

// withWarnings appends the warnings section to a rendered report.
func withWarnings(render func(*tradebook.Report) string) func(*tradebook.Report) string {
	return func(r *tradebook.Report) string {
		var b strings.Builder
		b.WriteString(render(r))
		b.WriteString("\n")
		renderer.WarningsMarkdown(&b, r)
		return b.String()
	}
}
