// Package cmd implements the tbk CLI application.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/cache"
	"github.com/etnz/tradebook/config"
	"github.com/etnz/tradebook/frankfurter"
	"github.com/etnz/tradebook/logger"
	"github.com/etnz/tradebook/remote"
	"github.com/etnz/tradebook/store"
	"github.com/etnz/tradebook/yahoo"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&summaryCmd{}, "reports")
	c.Register(&capitalCmd{}, "reports")
	c.Register(&curveCmd{}, "reports")
	c.Register(&breakdownCmd{}, "reports")
	c.Register(&incomeCmd{}, "reports")
	c.Register(&txCmd{}, "reports")

	c.Register(&addCmd{}, "transactions")
	c.Register(&closeCmd{}, "transactions")

	c.Register(&serveCmd{}, "server")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", config.DefaultPath, "Path to the YAML configuration file")
var rawOutput = flag.Bool("raw", false, "Print plain markdown instead of rendering it for the terminal")

// output receives everything the commands print.
var output io.Writer = os.Stdout

// app holds the services built from the configuration.
type app struct {
	cfg        *config.Config
	log        zerolog.Logger
	source     store.Source
	prices     *cache.TTL[map[string]decimal.Decimal]
	rates      *cache.TTL[decimal.Decimal]
	snapshots  *cache.TTL[*tradebook.Snapshot]
	resolver   *tradebook.Resolver
	historical *tradebook.Historical
	analyzer   *tradebook.Analyzer
}

// newApp loads the configuration and opens the transaction store.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(log)

	source, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s database: %w", cfg.Database.Driver, err)
	}

	client := remote.New(cfg.Providers.Timeout, cfg.Cache.Dir, log)
	fx := frankfurter.New(client, cfg.Providers.FrankfurterURL)

	a := &app{
		cfg:       cfg,
		log:       log,
		source:    source,
		prices:    cache.New[map[string]decimal.Decimal](cfg.Cache.PricesTTL),
		rates:     cache.New[decimal.Decimal](cfg.Cache.HistoryTTL),
		snapshots: cache.New[*tradebook.Snapshot](cfg.Cache.RatesTTL),
	}
	a.resolver = tradebook.NewResolver(yahoo.New(client, cfg.Providers.YahooURL), a.prices, log)
	a.historical = tradebook.NewHistorical(cfg.HomeCurrency, fx, a.rates)
	a.analyzer = &tradebook.Analyzer{
		Rates:      fx,
		Prices:     a.resolver,
		Historical: a.historical,
		Home:       cfg.HomeCurrency,
		Currencies: cfg.SnapshotCurrencies,
		Snapshots:  a.snapshots,
		Log:        logger.Component(log, "analyzer"),
	}
	return a, nil
}

func (a *app) Close() {
	if err := a.source.Shutdown(); err != nil {
		a.log.Warn().Err(err).Msg("cannot close the database")
	}
}

// analyze loads every transaction and runs one analysis pass.
func (a *app) analyze(ctx context.Context, opts tradebook.Options) (*tradebook.Report, error) {
	txs, err := a.source.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot load transactions: %w", err)
	}
	return a.analyzer.Run(ctx, txs, opts)
}
