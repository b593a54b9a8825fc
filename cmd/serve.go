package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/tradebook"
	"github.com/etnz/tradebook/api"
	"github.com/etnz/tradebook/date"
	"github.com/etnz/tradebook/scheduler"
	"github.com/google/subcommands"
)

type serveCmd struct {
	port int
	dev  bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve reports as a JSON API" }
func (*serveCmd) Usage() string {
	return `tbk serve [-port <port>] [-dev]

  Starts the HTTP API. Market prices of open positions are refreshed in the
  background on the configured server.refresh schedule.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.port, "port", 0, "Port to listen on. Defaults to the configured port.")
	f.BoolVar(&c.dev, "dev", false, "Development mode: no response compression.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	port := a.cfg.Server.Port
	if c.port > 0 {
		port = c.port
	}

	sched := scheduler.New(a.log)
	warmer := &warmJob{app: a, timeout: time.Minute}
	if err := sched.AddJob(a.cfg.Server.Refresh, warmer); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid server.refresh %q: %v\n", a.cfg.Server.Refresh, err)
		return subcommands.ExitFailure
	}
	sched.Start()
	defer sched.Stop()

	srv := api.New(api.Config{
		Port:     port,
		Log:      a.log,
		Source:   a.source,
		Analyzer: a.analyzer,
		Defaults: a.cfg.Options(date.Today()),
		DevMode:  c.dev,
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			a.log.Error().Err(err).Msg("Server failed")
			return subcommands.ExitFailure
		}
	case <-quit:
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		a.log.Error().Err(err).Msg("Server forced to shutdown")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// warmJob drops expired cache entries and resolves the prices of every open
// position, so that requests valuing them are served from the cache.
type warmJob struct {
	app     *app
	timeout time.Duration
}

func (j *warmJob) Name() string { return "warm-prices" }

func (j *warmJob) Run() error {
	j.app.prices.Evict()
	j.app.rates.Evict()
	j.app.snapshots.Evict()

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	txs, err := j.app.source.Transactions(ctx)
	if err != nil {
		return err
	}
	var tickers []string
	for _, t := range tradebook.Investments(txs) {
		if t.IsOpen() {
			tickers = append(tickers, t.Ticker)
		}
	}
	if len(tickers) == 0 {
		return nil
	}
	quotes, err := j.app.resolver.Resolve(ctx, tickers)
	if errors.Is(err, tradebook.ErrPriceUnavailable) {
		j.app.log.Warn().Strs("unpriced", quotes.UnpricedTickers()).Msg("some open positions have no price")
		return nil
	}
	return err
}
