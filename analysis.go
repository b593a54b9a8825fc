package tradebook

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/tradebook/cache"
	"github.com/etnz/tradebook/date"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Sizes of the dashboard breakdowns.
const (
	TopTrades = 3
	TopStocks = 4
)

// Analyzer runs analysis passes over a set of transactions.
type Analyzer struct {
	Rates      RateProvider          // fetches the daily snapshot
	Prices     *Resolver             // values open positions, may be nil
	Historical *Historical           // required by the historical conversion policy
	Home       string
	Currencies []string              // snapshot currencies
	Snapshots  *cache.TTL[*Snapshot] // complete snapshots by day, may be nil
	Log        zerolog.Logger
}

// Report is the result of one analysis pass.
type Report struct {
	ID       uuid.UUID                  `json:"id"`
	Options  Options                    `json:"options"`
	Home     string                     `json:"home"`
	Snapshot *Snapshot                  `json:"-"`
	Rates    map[string]decimal.Decimal `json:"rates"`

	Rows       []PricedTransaction   `json:"rows"`
	Owners     map[string]OwnerStats `json:"owners"`
	Earnings   Money                 `json:"earnings"`   // realized earning of the owner scope
	Unrealized Money                 `json:"unrealized"` // earning of the positions valued today
	Capital    Capital               `json:"capital"`
	Return     Percent               `json:"return"`
	Tax        TaxSummary            `json:"tax"`
	Income     IncomeSummary         `json:"income"`

	Daily    []DailyEarning `json:"daily"`
	Curve    []Point        `json:"curve"`
	Positive []Segment      `json:"positive"`
	Negative []Segment      `json:"negative"`

	Best    []PricedTransaction `json:"best"`
	Worst   []PricedTransaction `json:"worst"`
	ByStock []StockEarning      `json:"by_stock"`
	Heatmap []HeatCell          `json:"heatmap"`

	Unpriced []string `json:"unpriced"`
	Errors   []string `json:"errors"`

	errs []error
}

// Err joins the errors of the rows skipped during the pass.
func (r *Report) Err() error { return errors.Join(r.errs...) }

func (r *Report) warn(err error) {
	if err == nil {
		return
	}
	r.errs = append(r.errs, err)
	r.Errors = append(r.Errors, err.Error())
}

// Run analyzes txs.
//
// Invalid transactions abort the pass. Unavailable prices and rates leave the
// affected rows out of the result and are listed in Report.Errors, unless
// opts.Strict is set, in which case an unavailable rate aborts the pass.
func (a *Analyzer) Run(ctx context.Context, txs []Transaction, opts Options) (*Report, error) {
	if err := ValidateAll(txs); err != nil {
		return nil, err
	}
	r := &Report{ID: uuid.New(), Options: opts, Home: a.Home}
	log := a.Log.With().Str("pass", r.ID.String()).Logger()
	log.Debug().Int("transactions", len(txs)).Str("range", opts.Range.String()).Str("conversion", opts.Conversion.String()).Msg("analysis started")

	// strict escalates rate errors, others are only reported.
	strict := func(err error) error {
		if err != nil && opts.Strict && errors.Is(err, ErrRateUnavailable) {
			return err
		}
		r.warn(err)
		return nil
	}

	snapshot, err := a.snapshot(ctx, opts.Today)
	if err := strict(err); err != nil {
		return nil, fmt.Errorf("cannot fetch the daily snapshot: %w", err)
	}
	r.Snapshot, r.Rates = snapshot, snapshot.Rates()
	rates := Rates{Snapshot: snapshot, Historical: a.Historical, Source: opts.Conversion}

	scoped := FilterRange(txs, opts.Range, opts.Today)
	if opts.Owner != "" {
		scoped = byOwner(scoped, opts.Owner)
	}

	var rows []PricedTransaction
	if opts.IncludeOpen {
		var quotes Quotes
		rows, quotes, err = ResolveOpen(ctx, Investments(scoped), a.Prices, opts.Today)
		if err != nil && !errors.Is(err, ErrPriceUnavailable) {
			return nil, err
		}
		r.warn(err)
		r.Unpriced = quotes.UnpricedTickers()
	} else {
		rows = Priced(Investments(scoped))
	}

	rows, err = Compute(ctx, rows, opts, rates)
	if rows == nil && err != nil {
		return nil, err
	}
	r.warn(err)
	r.Rows = rows
	r.Owners = Aggregate(rows)

	r.Capital, err = CapitalDeployed(ctx, rows, rates)
	if err := strict(err); err != nil {
		return nil, err
	}

	// Return and tax only apply to realized earnings.
	r.Earnings, r.Unrealized = M(0, a.Home), M(0, a.Home)
	for _, row := range rows {
		switch {
		case !row.HasEarning():
		case row.State == Closed:
			r.Earnings = r.Earnings.Add(row.Earning)
		case row.State == ValuedToday:
			r.Unrealized = r.Unrealized.Add(row.Earning)
		}
	}
	r.Return = Return(r.Earnings, r.Capital.Amount)
	r.Tax = Tax(r.Earnings, opts.TaxRate)

	r.Daily = DailyCumulative(rows)
	r.Curve = Curve(DailyCumulative(anonymous(rows)), "")
	r.Positive, r.Negative = ZeroCrossingSegments(r.Curve)
	r.Best, r.Worst = Best(rows, TopTrades), Worst(rows, TopTrades)
	r.ByStock = ByStock(rows, TopStocks)
	r.Heatmap = Heatmap(r.Daily)

	r.Income, err = Income(ctx, Salaries(scoped), rates.Dated())
	if err := strict(err); err != nil {
		return nil, err
	}

	log.Info().
		Int("rows", len(rows)).
		Str("earnings", r.Earnings.String()).
		Int64("capital", r.Capital.Amount).
		Strs("unpriced", r.Unpriced).
		Int("errors", len(r.errs)).
		Msg("analysis done")
	return r, nil
}

// snapshot returns the daily snapshot of today. Complete snapshots are kept
// in a.Snapshots.
func (a *Analyzer) snapshot(ctx context.Context, today date.Date) (*Snapshot, error) {
	if a.Snapshots == nil {
		return FetchSnapshot(ctx, a.Rates, a.Home, today, a.Currencies...)
	}
	key, err := cache.Fingerprint(a.Home, today.String(), a.Currencies)
	if err != nil {
		a.Log.Warn().Err(err).Msg("cannot fingerprint the snapshot, fetching it")
		return FetchSnapshot(ctx, a.Rates, a.Home, today, a.Currencies...)
	}
	if s, ok := a.Snapshots.Get(key); ok {
		return s, nil
	}
	s, err := FetchSnapshot(ctx, a.Rates, a.Home, today, a.Currencies...)
	if err == nil {
		a.Snapshots.Put(key, s)
	}
	return s, err
}

func byOwner(txs []Transaction, owner string) []Transaction {
	var res []Transaction
	for _, t := range txs {
		if t.Owner == owner {
			res = append(res, t)
		}
	}
	return res
}

// anonymous returns a copy of rows under a single empty owner, to chart their total.
func anonymous(rows []PricedTransaction) []PricedTransaction {
	res := make([]PricedTransaction, len(rows))
	for i, r := range rows {
		r.Owner = ""
		res[i] = r
	}
	return res
}
