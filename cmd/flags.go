package cmd

import (
	"flag"
	"fmt"
	"strconv"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/date"
)

// optBool is a boolean flag that remembers whether it was set.
type optBool struct {
	set, value bool
}

func (b *optBool) IsBoolFlag() bool { return true }
func (b *optBool) String() string {
	if b == nil || !b.set {
		return ""
	}
	return strconv.FormatBool(b.value)
}

func (b *optBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	b.set, b.value = true, v
	return nil
}

// apply overrides dst when the flag was set.
func (b optBool) apply(dst *bool) {
	if b.set {
		*dst = b.value
	}
}

// analysisFlags are the options shared by report commands. Unset flags keep
// the configured value.
type analysisFlags struct {
	owner      string
	rng        date.Preset
	date       string
	conversion string
	taxRate    float64
	export     string
	open       optBool
	dividends  optBool
	strict     bool
}

func (a *analysisFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&a.owner, "owner", "", "Restrict the report to one owner.")
	f.Var(&a.rng, "r", "Range preset: 1M, 3M, 6M, YTD, 1Y or ALL. Defaults to the configured range.")
	f.StringVar(&a.date, "d", "", "Day the report is computed on (YYYY-MM-DD). Defaults to today.")
	f.StringVar(&a.conversion, "conversion", "", "Rate policy: snapshot (today's rates) or historical (rates of each trade date).")
	f.Float64Var(&a.taxRate, "tax", -1, "Flat tax rate in percent. Defaults to the configured rate.")
	f.StringVar(&a.export, "export", "", "Also display totals in this snapshot currency, e.g. PLN.")
	f.Var(&a.open, "open", "Value open positions at today's market price.")
	f.Var(&a.dividends, "dividends", "Include dividends in proceeds.")
	f.BoolVar(&a.strict, "strict", false, "Fail when an exchange rate is missing instead of skipping rows.")
}

// options merges the flags over the configured defaults.
func (a *analysisFlags) options(defaults func(today date.Date) tradebook.Options) (tradebook.Options, error) {
	today := date.Today()
	if a.date != "" {
		d, err := date.Parse(a.date)
		if err != nil {
			return tradebook.Options{}, fmt.Errorf("invalid date %q: %w", a.date, err)
		}
		today = d
	}
	opts := defaults(today)
	opts.Owner = a.owner
	opts.Strict = a.strict
	if a.rng != "" {
		opts.Range = a.rng
	}
	if a.conversion != "" {
		src, err := tradebook.ParseRateSource(a.conversion)
		if err != nil {
			return opts, err
		}
		opts.Conversion = src
	}
	if a.taxRate >= 0 {
		if a.taxRate > 100 {
			return opts, fmt.Errorf("invalid tax rate %v%%", a.taxRate)
		}
		opts.TaxRate = tradebook.Percent(a.taxRate)
	}
	a.open.apply(&opts.IncludeOpen)
	a.dividends.apply(&opts.IncludeDividends)
	return opts, nil
}
