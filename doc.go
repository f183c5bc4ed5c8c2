// Package tokenfolio turns the transaction ledger of a crypto wallet into a
// valued portfolio history and FIFO profit figures.
//
// The core functionalities include:
//   - Bucketing: points of the history are spaced by recency, from 30
//     minutes for the last day to 1 day for anything older than a month
//     (see package bucket).
//   - Price surface: sparse price quotes are fetched per bucket tier and
//     forward-filled into a dense table covering every bucket and token.
//   - Replay: the ledger is walked from the oldest transaction, tracking
//     running balances net of fees, to record the balances of each bucket.
//   - Projection: the balances are carried over every bucket and valued in
//     USD.
//   - Cost basis: acquisitions and disposals are matched first-in,
//     first-out to compute realized profits and remaining lots.
//
// All amounts are exact decimals; a quantity below Epsilon is zero.
//
// This package is the foundation of the `folio` command-line tool.
package tokenfolio
