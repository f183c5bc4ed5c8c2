package tokenfolio

import (
	"maps"
	"strings"
)

// AveragePrice is the running average acquisition price of a token.
type AveragePrice struct {
	Volume  Quantity `json:"volume"`
	Average Money    `json:"average"`
}

// WalletMetadata aggregates, per token, what was bought and sold by a wallet.
type WalletMetadata struct {
	PlatformID    int                     `json:"platform_id"`
	WalletAddress string                  `json:"wallet_address"`
	AveragePrice  map[string]AveragePrice `json:"average_price"`
	MoneyIn       map[string]Money        `json:"money_in"`  // USD spent on buys
	MoneyOut      map[string]Money        `json:"money_out"` // USD received from sells
}

// NewWalletMetadata returns an empty metadata for the wallet.
func NewWalletMetadata(w Wallet) WalletMetadata {
	return WalletMetadata{
		PlatformID:    w.PlatformID,
		WalletAddress: w.Address,
		AveragePrice:  map[string]AveragePrice{},
		MoneyIn:       map[string]Money{},
		MoneyOut:      map[string]Money{},
	}
}

var swapMethods = []string{"swap", "exactInput", "multicall"}

// IsSwap reports whether the transaction exchanges a token for another.
func (tx Transaction) IsSwap() bool {
	switch tx.Type {
	case "buy", "trade", "sell":
		return true
	}
	for _, prefix := range swapMethods {
		if strings.HasPrefix(tx.Method, prefix) {
			return true
		}
	}
	return false
}

// leg is the aggregate of one side of a swap.
type leg struct {
	token string
	value Quantity
	usd   Money
}

// Update returns a new metadata including the transactions, walked oldest
// first. Only successful swaps are considered; the receiver is not modified.
func (m WalletMetadata) Update(txs []Transaction) WalletMetadata {
	next := m
	next.AveragePrice = maps.Clone(m.AveragePrice)
	next.MoneyIn = maps.Clone(m.MoneyIn)
	next.MoneyOut = maps.Clone(m.MoneyOut)
	if next.AveragePrice == nil {
		next.AveragePrice = map[string]AveragePrice{}
	}
	if next.MoneyIn == nil {
		next.MoneyIn = map[string]Money{}
	}
	if next.MoneyOut == nil {
		next.MoneyOut = map[string]Money{}
	}

	for i := len(txs) - 1; i >= 0; i-- {
		tx := txs[i]
		if !tx.Success || !tx.IsSwap() || len(tx.Tokens) == 0 {
			continue
		}
		var in, out leg
		for _, t := range tx.Tokens {
			q, err := t.Quantity()
			if err != nil {
				continue
			}
			if t.In {
				in = leg{token: t.TokenID, value: in.value.Add(q), usd: in.usd.Add(t.USDValue)}
			} else {
				out = leg{token: t.TokenID, value: out.value.Add(q), usd: out.usd.Add(t.USDValue)}
			}
		}

		if tx.Type == "buy" && in.token != "" {
			next.MoneyIn[in.token] = next.MoneyIn[in.token].Add(tx.Tokens[0].USDValue)
		}
		if tx.Type == "sell" && out.token != "" {
			next.MoneyOut[out.token] = next.MoneyOut[out.token].Add(tx.Tokens[0].USDValue)
		}

		if in.token == "" {
			continue
		}
		avg := next.AveragePrice[in.token]
		volume := avg.Volume.Add(in.value)
		if volume.IsZero() {
			continue
		}
		avg.Average = avg.Average.Mul(avg.Volume).Add(in.usd).Div(volume)
		avg.Volume = volume
		next.AveragePrice[in.token] = avg
	}
	return next
}
