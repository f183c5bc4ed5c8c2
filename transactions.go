package tokenfolio

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// Transaction is one entry of a wallet's ledger, as produced by the chain
// indexers and exchange integrations.
type Transaction struct {
	PlatformID    int             `json:"platform_id"`    // blockchain platform id based on CoinMarketCap
	WalletAddress string          `json:"wallet_address"` // wallet address
	Timestamp     time.Time       `json:"timestamp"`      // block signed timestamp
	Type          string          `json:"type,omitempty"` // trade, swap, buy or sell
	Method        string          `json:"method,omitempty"`
	Currency      string          `json:"currency"` // token paying the fee
	Fee           string          `json:"fee"`      // decimal string
	FeeUSD        Money           `json:"fee_usd"`
	Success       bool            `json:"success"`
	Tokens        []TokenTransfer `json:"tokens"`
	Properties    Properties      `json:"additional_properties"`
}

// TokenTransfer is a single token movement inside a transaction.
type TokenTransfer struct {
	Address  string `json:"address,omitempty"` // sender/receiver address
	TokenID  string `json:"token_id"`
	Value    string `json:"value"`     // decimal string
	USDValue Money  `json:"usd_value"` // zero when unknown
	In       bool   `json:"in"`
}

// Properties holds chain specific transaction properties.
type Properties struct {
	Block int64  `json:"block,omitempty"`
	Hash  string `json:"transaction_hash,omitempty"`
}

// FeeQuantity returns the fee as a Quantity. An empty fee is zero.
func (tx Transaction) FeeQuantity() (Quantity, error) {
	if tx.Fee == "" {
		return Quantity{}, nil
	}
	return ParseQuantity(tx.Fee)
}

// Quantity returns the transferred value.
func (t TokenTransfer) Quantity() (Quantity, error) { return ParseQuantity(t.Value) }

// UnitPrice returns the USD value of one unit of the transfer.
func (t TokenTransfer) UnitPrice() Money {
	q, err := t.Quantity()
	if err != nil || q.IsZero() {
		return Money{}
	}
	return t.USDValue.Div(q)
}

// Clone returns a deep copy of the transaction.
func (tx Transaction) Clone() Transaction {
	tx.Tokens = slices.Clone(tx.Tokens)
	return tx
}

// Validate checks that the transaction carries everything the engine needs.
// index is the transaction position in the feed, used for reporting.
func (tx Transaction) Validate(index int) error {
	fail := func(format string, args ...any) error {
		return &MalformedTransactionError{Index: index, Hash: tx.Properties.Hash, Reason: fmt.Sprintf(format, args...)}
	}
	if tx.WalletAddress == "" {
		return fail("missing wallet address")
	}
	if tx.Timestamp.IsZero() {
		return fail("missing timestamp")
	}
	fee, err := tx.FeeQuantity()
	if err != nil {
		return fail("fee: %v", err)
	}
	if fee.IsNegative() {
		return fail("negative fee %s", fee)
	}
	if !fee.IsZero() && tx.Currency == "" {
		return fail("fee without currency")
	}
	for i, t := range tx.Tokens {
		if t.TokenID == "" {
			return fail("token %d: missing token id", i)
		}
		q, err := t.Quantity()
		if err != nil {
			return fail("token %d (%s): %v", i, t.TokenID, err)
		}
		if q.IsNegative() {
			return fail("token %d (%s): negative value %s", i, t.TokenID, q)
		}
	}
	return nil
}

// Balances maps a token id to a quantity.
type Balances map[string]Quantity

// ParseBalances converts a token to decimal string map.
func ParseBalances(raw map[string]string) (Balances, error) {
	b := make(Balances, len(raw))
	for token, s := range raw {
		q, err := ParseQuantity(s)
		if err != nil {
			return nil, fmt.Errorf("balance of %s: %w", token, err)
		}
		b[token] = q
	}
	return b, nil
}

// Clone returns a copy of the balances. A nil map clones to an empty one.
func (b Balances) Clone() Balances {
	c := make(Balances, len(b))
	maps.Copy(c, b)
	return c
}

// Tokens returns the token ids, sorted.
func (b Balances) Tokens() []string { return slices.Sorted(maps.Keys(b)) }

// Wallet identifies the wallet a computation is for.
type Wallet struct {
	PlatformID int
	Address    string
}

// PortfolioSnapshot is the state of a wallet at a bucket date.
type PortfolioSnapshot struct {
	DateTime      time.Time        `json:"dateTime"`
	PlatformID    int              `json:"platform_id"`
	WalletAddress string           `json:"wallet_address"`
	Balances      Balances         `json:"balances"`
	BalancesUSD   map[string]Money `json:"balances_usd"`
	Hash          string           `json:"hash,omitempty"`
	Block         int64            `json:"block,omitempty"`
}

// SnapshotKey is the identity the persistence layer upserts snapshots on.
type SnapshotKey struct {
	DateTime      time.Time
	PlatformID    int
	WalletAddress string
}

// Key returns the snapshot identity.
func (s PortfolioSnapshot) Key() SnapshotKey {
	return SnapshotKey{DateTime: s.DateTime.UTC().Round(0), PlatformID: s.PlatformID, WalletAddress: s.WalletAddress}
}

// TotalUSD returns the sum of all token values.
func (s PortfolioSnapshot) TotalUSD() Money {
	var total Money
	for _, token := range slices.Sorted(maps.Keys(s.BalancesUSD)) {
		total = total.Add(s.BalancesUSD[token])
	}
	return total
}

// PriceQuote is one price sample returned by the quote service.
type PriceQuote struct {
	Symbol string
	Time   time.Time
	Price  Money
}

// BalanceSample is a point of a balance history, for wallets whose feed is
// a balance series rather than a transfer ledger.
type BalanceSample struct {
	Timestamp time.Time `json:"timestamp"`
	Balance   string    `json:"balance"`
}
