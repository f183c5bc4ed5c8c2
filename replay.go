package tokenfolio

import (
	"fmt"
	"time"

	"github.com/etnz/tokenfolio/bucket"
)

// Replay is the outcome of replaying a ledger.
type Replay struct {
	// Buckets holds, for each bucket that contains a transaction, the
	// running balances as of the first transaction of that bucket.
	Buckets *bucket.Series[PortfolioSnapshot]
	// Balances are the running balances after the last transaction.
	Balances Balances
}

// ReplayTransactions walks the ledger from the oldest to the newest
// transaction. The feed is expected newest first, as the indexers deliver it.
//
// Balances are tracked by undoing the flows against the anchor balances:
// an inbound transfer decreases the tracked amount and an outbound one
// increases it. Fees are deducted from the fee currency. No balance ever
// goes below zero.
//
// Only the first transaction of a bucket records the bucket's snapshot; the
// following ones in the same bucket only affect later buckets.
func ReplayTransactions(ref time.Time, wallet Wallet, anchor Balances, txs []Transaction) (Replay, error) {
	running := anchor.Clone()
	snapshots := new(bucket.Series[PortfolioSnapshot])

	for i := len(txs) - 1; i >= 0; i-- {
		tx := txs[i]
		on := bucket.SnapForward(ref, tx.Timestamp)

		platform := tx.PlatformID
		if platform == 0 {
			platform = wallet.PlatformID
		}
		if _, seen := snapshots.Get(on); !seen {
			snapshots.Set(on, PortfolioSnapshot{
				DateTime:      on,
				PlatformID:    platform,
				WalletAddress: wallet.Address,
				Block:         tx.Properties.Block,
				Hash:          tx.Properties.Hash,
				Balances:      running.Clone(),
				BalancesUSD:   map[string]Money{},
			})
		}

		fee, err := tx.FeeQuantity()
		if err != nil {
			return Replay{}, fmt.Errorf("transaction %d: %w", i, err)
		}
		if tx.Currency != "" {
			running[tx.Currency] = running[tx.Currency].Sub(fee).Floor()
		}

		if !tx.Success {
			continue
		}

		for _, t := range tx.Tokens {
			value, err := t.Quantity()
			if err != nil {
				return Replay{}, fmt.Errorf("transaction %d token %s: %w", i, t.TokenID, err)
			}
			if t.In {
				running[t.TokenID] = running[t.TokenID].Sub(value).Floor()
			} else {
				running[t.TokenID] = running[t.TokenID].Add(value)
			}
		}
	}
	return Replay{Buckets: snapshots, Balances: running}, nil
}

// AggregateBalanceHistory builds the sparse bucket snapshots of a wallet
// whose feed is a series of balance samples of a single token, such as a
// bitcoin address history. The first sample of a bucket wins.
func AggregateBalanceHistory(ref time.Time, wallet Wallet, token string, samples []BalanceSample) (*bucket.Series[PortfolioSnapshot], error) {
	snapshots := new(bucket.Series[PortfolioSnapshot])
	for i, s := range samples {
		balance, err := ParseQuantity(s.Balance)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		on := bucket.SnapForward(ref, s.Timestamp)
		snapshots.SetIfAbsent(on, PortfolioSnapshot{
			DateTime:      on,
			PlatformID:    wallet.PlatformID,
			WalletAddress: wallet.Address,
			Balances:      Balances{token: balance},
			BalancesUSD:   map[string]Money{},
		})
	}
	return snapshots, nil
}
