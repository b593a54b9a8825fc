package tradebook

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/tradebook/date"
)

// Options configures an analysis pass.
type Options struct {
	Owner            string      `json:"owner,omitempty"` // Restricts charts to one owner, all when empty.
	Range            date.Preset `json:"range"`
	IncludeDividends bool        `json:"include_dividends"`
	IncludeOpen      bool        `json:"include_open"` // Value open positions at today's price.
	Conversion       RateSource  `json:"conversion"`
	TaxRate          Percent     `json:"tax_rate"`
	Today            date.Date   `json:"today"`
	Strict           bool        `json:"strict"` // Abort on the first unavailable rate.
}

// DefaultOptions returns the options of a pass run on today.
func DefaultOptions(today date.Date) Options {
	return Options{
		Range:            date.YearToDate,
		IncludeDividends: true,
		Conversion:       SnapshotRates,
		TaxRate:          19,
		Today:            today,
	}
}

func (r Rates) validate() error {
	if r.Snapshot == nil {
		return errors.New("no daily snapshot in the conversion context")
	}
	if r.Source == HistoricalRates && r.Historical == nil {
		return errors.New("historical conversion requested without a historical rate source")
	}
	return nil
}

// Compute derives totals and home currency earnings of rows.
//
// Closed rows get TotalBuy = price_buy*quantity_buy, TotalSell =
// price_sell*quantity_sell (plus dividends if asked) and Gain = TotalSell -
// TotalBuy. ValuedToday rows keep the totals of their valuation. The gain is
// converted with the pass conversion policy for closed rows, and with the
// daily snapshot for valued rows.
//
// Rows that cannot be converted carry their error in Err, and all failures are
// joined in the returned error. The rows are returned anyway.
func Compute(ctx context.Context, rows []PricedTransaction, opts Options, rates Rates) ([]PricedTransaction, error) {
	if err := rates.validate(); err != nil {
		return nil, err
	}
	res := make([]PricedTransaction, len(rows))
	var errs []error
	for i, r := range rows {
		r.Err, r.Earning = nil, Money{}
		var (
			conv Converter
			on   date.Date
		)
		switch r.State {
		case Closed:
			r.TotalBuy = r.Cost()
			r.TotalSell = r.Proceeds(opts.IncludeDividends)
			r.Gain = r.TotalSell.Sub(r.TotalBuy)
			conv, on = rates.Dated(), r.DateSell
		case ValuedToday:
			conv, on = rates.Live(), r.ValuedOn
		default:
			r.TotalBuy = r.Cost()
			res[i] = r
			continue
		}
		earning, err := Normalize(ctx, conv, M(r.Gain, r.Currency), on)
		if err != nil {
			r.Err = fmt.Errorf("transaction #%d: %w", r.ID, err)
			errs = append(errs, r.Err)
			if opts.Strict {
				return nil, r.Err
			}
		} else {
			r.Earning = earning
		}
		res[i] = r
	}
	return res, errors.Join(errs...)
}
