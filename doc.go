// Package tradebook turns trading and salary transactions into portfolio
// analytics: per owner profit and loss, win rate, holding time, capital
// actually deployed and cumulative earning curves.
//
// An analysis pass is a pipeline of pure stages, each returning a new slice:
//   - FilterRange scopes transactions with a date.Preset (1M, 3M, 6M, YTD, 1Y, ALL).
//   - ResolveOpen values open positions at today's market price (Resolver).
//   - Compute derives totals and converts earnings to the home currency
//     (Normalize with a Snapshot or Historical converter).
//   - Aggregate, CapitalDeployed, DailyCumulative and ZeroCrossingSegments
//     build owner statistics, capital and chart series.
//
// Analyzer.Run chains them with an explicit conversion context built once per
// pass, and returns a Report. Unavailable rates and prices are never defaulted:
// they are typed errors (ErrRateUnavailable, ErrPriceUnavailable) and the
// affected rows are reported as such.
//
// Transactions come from the store package, rates from frankfurter and prices
// from yahoo. The tbk command exposes reports in the terminal and over HTTP.
package tradebook
