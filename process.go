package tokenfolio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"slices"
	"time"

	"github.com/etnz/tokenfolio/bucket"
)

// Request holds everything needed to compute the chart of a wallet.
type Request struct {
	Wallet Wallet
	// From and To bound the chart. They are snapped onto the bucket grid.
	From, To time.Time
	// Reference is the date bucket recency is measured from, usually now.
	Reference time.Time
	// Transactions is the ledger, newest first.
	Transactions []Transaction
	// Balances are the wallet balances at the newest point of the ledger.
	Balances Balances
	// Tokens lists additional symbols to price.
	Tokens []string
	// Prices is the quote service. Without it every price is zero.
	Prices PriceProvider
	// Metadata is the previously persisted metadata of the wallet, if any.
	Metadata *WalletMetadata
	// CostBasis enables the FIFO profit computation, resuming from Lots.
	CostBasis bool
	Lots      map[string][]Lot
	// Samples replaces the transaction replay for wallets whose feed is a
	// balance history of the single token SampleToken, such as a bitcoin
	// address.
	Samples     []BalanceSample
	SampleToken string
}

// Result is the outcome of Process.
type Result struct {
	// Transactions is the accepted ledger, with USD values backfilled.
	Transactions []Transaction `json:"transactions"`
	// Snapshots has one snapshot per bucket, ascending.
	Snapshots []PortfolioSnapshot `json:"portfolioTransactions"`
	Metadata  WalletMetadata      `json:"metadata"`
	// Profits is set when the request enables the cost basis.
	Profits *Profits `json:"profits,omitempty"`
	// Prices are the quotes of the newest bucket, to mark lots to market.
	Prices Quotes `json:"prices,omitempty"`
	// Warnings are the non fatal problems met: rejected transactions and
	// unavailable price tiers.
	Warnings []error `json:"-"`
}

// Process computes the valued, bucketed history of a wallet.
//
// A range error aborts the computation. Malformed transactions are dropped
// and price failures degrade the valuation; both are reported as warnings.
func Process(ctx context.Context, req Request) (*Result, error) {
	if err := CheckRange(req.From, req.To); err != nil {
		return nil, err
	}
	ref := req.Reference
	if ref.IsZero() {
		ref = time.Now()
	}
	ref = ref.UTC()

	res := &Result{}
	txs := make([]Transaction, 0, len(req.Transactions))
	for i, tx := range req.Transactions {
		if err := tx.Validate(i); err != nil {
			log.Printf("rejected: %v", err)
			res.Warnings = append(res.Warnings, err)
			continue
		}
		txs = append(txs, tx.Clone())
	}

	from, to := bucket.Range(ref, req.From, req.To)
	buckets := bucket.Enumerate(from, to, ref)

	tokens := req.Tokens
	if len(req.Samples) > 0 {
		tokens = append(slices.Clone(tokens), req.SampleToken)
	}
	symbols := Symbols(tokens, req.Balances, txs)
	surface, warnings := BuildPriceSurface(ctx, req.Prices, buckets, symbols, ref)
	res.Warnings = append(res.Warnings, warnings...)
	log.Printf("prices: %d buckets, %d symbols, %d tiers failed", surface.Len(), len(symbols), len(warnings))

	BackfillUSD(ref, txs, surface)

	meta := NewWalletMetadata(req.Wallet)
	if req.Metadata != nil {
		meta = *req.Metadata
	}
	res.Metadata = meta.Update(txs)

	if req.CostBasis {
		profits, err := CalculateProfits(txs, nil, req.Lots)
		if err != nil {
			return nil, fmt.Errorf("cost basis of %s: %w", req.Wallet.Address, err)
		}
		res.Profits = profits
	}

	sparse, err := history(ref, req, txs)
	if err != nil {
		return nil, err
	}
	if sparse.Len() == 0 && len(req.Balances) > 0 && buckets.Len() > 0 {
		// nothing moved: the wallet held its current balances all along.
		sparse.Set(buckets.Dates[0], PortfolioSnapshot{
			DateTime:      buckets.Dates[0],
			PlatformID:    req.Wallet.PlatformID,
			WalletAddress: req.Wallet.Address,
			Balances:      req.Balances.Clone(),
			BalancesUSD:   map[string]Money{},
		})
	}
	res.Transactions = txs
	res.Snapshots = Project(req.Wallet, sparse, buckets.Dates, surface)
	res.Prices = surface.Quotes(to)
	return res, nil
}

// history returns the sparse bucket snapshots of the request: from the
// balance samples if any, else from the transaction replay.
func history(ref time.Time, req Request, txs []Transaction) (*bucket.Series[PortfolioSnapshot], error) {
	if len(req.Samples) > 0 {
		if req.SampleToken == "" {
			return nil, errors.New("balance samples need a token")
		}
		sparse, err := AggregateBalanceHistory(ref, req.Wallet, req.SampleToken, req.Samples)
		if err != nil {
			return nil, fmt.Errorf("balance history: %w", err)
		}
		return sparse, nil
	}
	replay, err := ReplayTransactions(ref, req.Wallet, req.Balances, txs)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	return replay.Buckets, nil
}

// Symbols returns the sorted set of symbols to price: the requested ones,
// the balances' and every token moved or paid as fee in the ledger.
func Symbols(tokens []string, balances Balances, txs []Transaction) []string {
	set := make(map[string]struct{})
	add := func(s string) {
		if s != "" {
			set[s] = struct{}{}
		}
	}
	for _, t := range tokens {
		add(t)
	}
	for t := range balances {
		add(t)
	}
	for _, tx := range txs {
		add(tx.Currency)
		for _, t := range tx.Tokens {
			add(t.TokenID)
		}
	}
	return slices.Sorted(maps.Keys(set))
}

// BackfillUSD sets the USD value of the transfers that have none, using the
// price of the transaction's bucket. Transfers outside of the surface are
// valued zero.
func BackfillUSD(ref time.Time, txs []Transaction, surface *PriceSurface) {
	for i := range txs {
		on := bucket.SnapForward(ref, txs[i].Timestamp)
		for j, t := range txs[i].Tokens {
			if !t.USDValue.IsZero() {
				continue
			}
			q, err := t.Quantity()
			if err != nil {
				continue
			}
			txs[i].Tokens[j].USDValue = surface.Price(on, t.TokenID).Mul(q)
		}
	}
}

// HasPriceWarnings reports whether some prices could not be fetched.
func (r *Result) HasPriceWarnings() bool {
	for _, w := range r.Warnings {
		if errors.Is(w, ErrPriceProviderUnavailable) {
			return true
		}
	}
	return false
}
