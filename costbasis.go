package tokenfolio

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// FIFO computes cost basis and profits by matching disposals against the
// oldest acquisition lots first.
//
// A FIFO belongs to a single wallet. Its state can be exported with Lots and
// given back to NewFIFO to resume a computation.
type FIFO struct {
	queues   map[string]lots
	realized map[string]Money
}

// NewFIFO returns a FIFO starting from previously persisted lots (optional).
func NewFIFO(initial map[string][]Lot) *FIFO {
	f := &FIFO{
		queues:   make(map[string]lots, len(initial)),
		realized: make(map[string]Money),
	}
	for token, l := range initial {
		f.queues[token] = slices.Clone(lots(l))
	}
	return f
}

// Seed adds an unpriced lot for each non-zero balance. It is used when the
// ledger does not start at the wallet creation: the cost of what was already
// held is unknown and is taken from the first disposal.
func (f *FIFO) Seed(balances Balances) {
	for _, token := range balances.Tokens() {
		q := balances[token]
		if q.IsZero() {
			continue
		}
		f.queues[token] = append(f.queues[token], Lot{Quantity: q, Unpriced: true})
	}
}

// Acquire pushes a new lot.
func (f *FIFO) Acquire(token string, on time.Time, quantity Quantity, cost Money) {
	f.queues[token] = append(f.queues[token], newLot(on, quantity, cost))
}

// Dispose matches a disposal against the lots of the token and records the
// realized profit: proceeds minus the cost basis of the consumed lots.
//
// If the lots do not cover the quantity, the state is left unchanged and a
// LotBalanceError is returned.
func (f *FIFO) Dispose(token string, on time.Time, quantity Quantity, proceeds Money) (Money, error) {
	var unitPrice Money
	if !quantity.IsZero() {
		unitPrice = proceeds.Div(quantity)
	}
	remaining, cost, missing := f.queues[token].dispose(quantity, unitPrice)
	if !missing.IsZero() {
		return Money{}, &LotBalanceError{Token: token, Missing: missing, Timestamp: on}
	}
	f.queues[token] = remaining
	profit := proceeds.Sub(cost)
	f.realized[token] = f.realized[token].Add(profit)
	return profit, nil
}

// payFee accounts a transaction fee: the fee quantity is taken from the fee
// currency's lots when there are any, and the fee value is deducted from
// that currency's profit. Without lots, only the flat deduction applies.
//
// A fee exceeding the tracked lots is a LotBalanceError, as any disposal.
func (f *FIFO) payFee(tx Transaction) error {
	if tx.Currency == "" {
		return nil
	}
	fee, err := tx.FeeQuantity()
	if err != nil {
		return err
	}
	if queue := f.queues[tx.Currency]; len(queue) > 0 && !fee.IsZero() {
		remaining, _, missing := queue.dispose(fee, tx.FeeUSD.Div(fee))
		if !missing.IsNegligible() {
			return &LotBalanceError{Token: tx.Currency, Missing: missing, Timestamp: tx.Timestamp}
		}
		f.queues[tx.Currency] = remaining
	}
	f.realized[tx.Currency] = f.realized[tx.Currency].Sub(tx.FeeUSD)
	return nil
}

// Apply processes one transaction: its fee first, then, if it succeeded,
// its transfers in order.
func (f *FIFO) Apply(tx Transaction) error {
	if err := f.payFee(tx); err != nil {
		return fmt.Errorf("fee: %w", err)
	}
	if !tx.Success {
		return nil
	}
	for _, t := range tx.Tokens {
		q, err := t.Quantity()
		if err != nil {
			return fmt.Errorf("token %s: %w", t.TokenID, err)
		}
		if t.In {
			f.Acquire(t.TokenID, tx.Timestamp, q, t.USDValue)
			continue
		}
		if _, err := f.Dispose(t.TokenID, tx.Timestamp, q, t.USDValue); err != nil {
			return err
		}
	}
	return nil
}

// Realized returns the realized profit per token.
func (f *FIFO) Realized() map[string]Money { return maps.Clone(f.realized) }

// Lots returns a copy of the lots still held, per token. Tokens without lots are omitted.
func (f *FIFO) Lots() map[string][]Lot {
	out := make(map[string][]Lot, len(f.queues))
	for token, l := range f.queues {
		if len(l) > 0 {
			out[token] = slices.Clone([]Lot(l))
		}
	}
	return out
}

// Quantity returns the quantity held in the lots of a token.
func (f *FIFO) Quantity(token string) Quantity { return f.queues[token].quantity() }

// CostBasis returns the remaining cost basis of a token.
func (f *FIFO) CostBasis(token string) Money { return f.queues[token].cost() }

// Profits is the outcome of a cost basis computation.
type Profits struct {
	Realized map[string]Money `json:"realized"`
	Lots     map[string][]Lot `json:"lots"`
}

// TotalRealized returns the realized profit over all tokens.
func (p *Profits) TotalRealized() Money {
	var total Money
	for _, token := range slices.Sorted(maps.Keys(p.Realized)) {
		total = total.Add(p.Realized[token])
	}
	return total
}

// Unrealized marks the lots still held to market: market value minus
// remaining cost basis, per token. Unpriced lots and tokens without a price
// are left out.
func (p *Profits) Unrealized(prices Quotes) map[string]Money {
	out := make(map[string]Money)
	for token, l := range p.Lots {
		price, ok := prices[token]
		if !ok || price.IsZero() {
			continue
		}
		var gain Money
		for _, current := range l {
			if current.Unpriced {
				continue
			}
			gain = gain.Add(price.Mul(current.Quantity).Sub(current.Cost))
		}
		out[token] = gain
	}
	return out
}

// CalculateProfits runs the FIFO cost basis over a ledger delivered newest
// first. The prior state is optional: initial are persisted lots to resume
// from, and balances what the wallet held before the oldest transaction
// whose cost is unknown.
//
// The computation aborts on the first disposal that exceeds the tracked lots.
func CalculateProfits(txs []Transaction, balances Balances, initial map[string][]Lot) (*Profits, error) {
	f := NewFIFO(initial)
	f.Seed(balances)
	for i := len(txs) - 1; i >= 0; i-- {
		if err := f.Apply(txs[i]); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
	}
	return &Profits{Realized: f.Realized(), Lots: f.Lots()}, nil
}
