package tokenfolio

import (
	"maps"
	"time"

	"github.com/etnz/tokenfolio/bucket"
)

// Project expands the sparse replay snapshots over every bucket date and
// values them with the price surface.
//
// A bucket without its own snapshot carries the previous one forward,
// including snapshots older than the first date. When no snapshot precedes
// the dates, the oldest one's balances are used until the first snapshot. A token whose price is zero in a bucket
// keeps its previous USD value.
//
// There is exactly one snapshot per date, in ascending order.
func Project(wallet Wallet, sparse *bucket.Series[PortfolioSnapshot], dates []time.Time, surface *PriceSurface) []PortfolioSnapshot {
	current := PortfolioSnapshot{
		PlatformID:    wallet.PlatformID,
		WalletAddress: wallet.Address,
		Balances:      Balances{},
	}
	if sparse == nil {
		sparse = new(bucket.Series[PortfolioSnapshot])
	}
	if len(dates) > 0 {
		if before, ok := sparse.ValueAsOf(dates[0]); ok {
			current = before
		} else if _, first, ok := sparse.First(); ok {
			current = first
			current.Block, current.Hash = 0, ""
		}
	}
	if surface == nil {
		surface = new(PriceSurface)
	}

	seen := make(map[string]struct{})
	lastUSD := make(map[string]Money)
	out := make([]PortfolioSnapshot, 0, len(dates))

	for _, on := range dates {
		if snap, ok := sparse.Get(on); ok {
			current = snap
		}
		for token := range current.Balances {
			seen[token] = struct{}{}
		}

		usd := make(map[string]Money, len(seen))
		for token := range seen {
			balance := current.Balances[token]
			if price := surface.Price(on, token); !price.IsZero() {
				lastUSD[token] = price.Mul(balance)
			}
			usd[token] = lastUSD[token]
		}

		snap := current
		snap.DateTime = on
		snap.Balances = maps.Clone(current.Balances)
		if snap.Balances == nil {
			snap.Balances = Balances{}
		}
		snap.BalancesUSD = usd
		out = append(out, snap)
	}
	return out
}
