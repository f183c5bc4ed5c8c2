package tokenfolio

import (
	"time"
)

// Lot is a single acquisition of a token, used for cost basis calculations.
type Lot struct {
	Date     time.Time `json:"date,omitempty"`
	Quantity Quantity  `json:"quantity"`
	Cost     Money     `json:"cost"`  // Total cost of the remaining quantity
	Price    Money     `json:"price"` // Unit price at acquisition
	// Unpriced lots come from a prior balance whose cost is unknown. They are
	// priced by the first disposal that reaches them.
	Unpriced bool `json:"unpriced,omitempty"`
}

// newLot creates a lot from an acquisition.
func newLot(on time.Time, quantity Quantity, cost Money) Lot {
	l := Lot{Date: on, Quantity: quantity, Cost: cost}
	if !quantity.IsZero() {
		l.Price = cost.Div(quantity)
	}
	return l
}

type lots []Lot

// quantity returns the total quantity held in the lots.
func (l lots) quantity() Quantity {
	var total Quantity
	for _, current := range l {
		total = total.Add(current.Quantity)
	}
	return total
}

// cost returns the total remaining cost basis of the lots.
func (l lots) cost() Money {
	var total Money
	for _, current := range l {
		total = total.Add(current.Cost)
	}
	return total
}

// dispose consumes quantityToSell from the head of the lots, using the FIFO
// method. Unpriced lots are priced with unitPrice before being consumed.
//
// It returns the remaining lots, the cost basis of the consumed quantity and
// the quantity that could not be matched because the lots ran out.
func (l lots) dispose(quantityToSell Quantity, unitPrice Money) (remaining lots, cost Money, missing Quantity) {
	remaining = l
	for !quantityToSell.IsNegligible() {
		if len(remaining) == 0 {
			return remaining, cost, quantityToSell
		}
		head := remaining[0]
		if head.Unpriced {
			head.Unpriced = false
			head.Price = unitPrice
			head.Cost = unitPrice.Mul(head.Quantity)
		}

		if head.Quantity.LessThanOrEqual(quantityToSell) {
			// Full sale of this lot
			cost = cost.Add(head.Cost)
			quantityToSell = quantityToSell.Sub(head.Quantity)
			remaining = remaining[1:]
			continue
		}

		// Partial sale from this lot
		costOfSoldPortion := head.Cost.Mul(quantityToSell).Div(head.Quantity)
		cost = cost.Add(costOfSoldPortion)
		head.Quantity = head.Quantity.Sub(quantityToSell)
		head.Cost = head.Cost.Sub(costOfSoldPortion)
		quantityToSell = Quantity{}

		if head.Quantity.IsNegligible() {
			// dust left by rounding is consumed with the disposal.
			cost = cost.Add(head.Cost)
			remaining = remaining[1:]
			continue
		}
		// Copy on write: the caller's backing array is left untouched.
		remaining = append(lots{head}, remaining[1:]...)
	}
	return remaining, cost, Quantity{}
}
