package tokenfolio

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/etnz/tokenfolio/bucket"
)

var (
	ref    = time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	wallet = Wallet{PlatformID: 1027, Address: "0xabc"}
)

// hoursAgo is a helper for test to create a date relative to ref.
func hoursAgo(h float64) time.Time { return ref.Add(-time.Duration(h * float64(time.Hour))) }

// in is a helper for test to create an inbound transfer.
func in(token, value string, usd float64) TokenTransfer {
	return TokenTransfer{TokenID: token, Value: value, USDValue: USD(usd), In: true}
}

// out is a helper for test to create an outbound transfer.
func out(token, value string, usd float64) TokenTransfer {
	return TokenTransfer{TokenID: token, Value: value, USDValue: USD(usd)}
}

// newTx is a helper for test to create a successful transaction without fee.
func newTx(on time.Time, hash string, tokens ...TokenTransfer) Transaction {
	return Transaction{
		PlatformID:    wallet.PlatformID,
		WalletAddress: wallet.Address,
		Timestamp:     on,
		Currency:      "ETH",
		Fee:           "0",
		Success:       true,
		Tokens:        tokens,
		Properties:    Properties{Hash: hash},
	}
}

// withFee is a helper for test to set a fee on a transaction.
func withFee(tx Transaction, currency, fee string, usd float64) Transaction {
	tx.Currency, tx.Fee, tx.FeeUSD = currency, fee, USD(usd)
	return tx
}

// fakeProvider is a PriceProvider serving canned quotes per tier.
type fakeProvider struct {
	mu     sync.Mutex
	quotes map[bucket.Tier][]PriceQuote
	fail   map[bucket.Tier]bool
	calls  map[bucket.Tier]int
}

func (f *fakeProvider) FetchPrices(_ context.Context, _ []string, _, _ time.Time, tier bucket.Tier) ([]PriceQuote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[bucket.Tier]int)
	}
	f.calls[tier]++
	if f.fail[tier] {
		return nil, errors.New("service down")
	}
	return f.quotes[tier], nil
}
