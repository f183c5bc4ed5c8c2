package tokenfolio

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Reporting is the fiat currency every value is expressed in.
const Reporting = money.USD

// Money represents a value in the reporting currency.
type Money struct {
	value decimal.Decimal // as major unit value
}

// USD returns a Money.
func USD[T float64 | int | int64 | decimal.Decimal](value T) Money {
	return Money{value: newDecimal(value)}
}

// String returns the string representation of the money value, rounded to cents.
func (m Money) String() string {
	cur := money.GetCurrency(Reporting)
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.Round(0).IntPart())
}

func (m Money) Decimal() decimal.Decimal       { return m.value }
func (m Money) Equal(n Money) bool             { return m.value.Equal(n.value) }
func (m Money) IsZero() bool                   { return m.value.IsZero() }
func (m Money) IsPositive() bool               { return m.value.IsPositive() }
func (m Money) IsNegative() bool               { return m.value.IsNegative() }
func (m Money) LessThan(amount Money) bool     { return m.value.LessThan(amount.value) }
func (m Money) GreaterThan(n Money) bool       { return m.value.GreaterThan(n.value) }
func (m Money) Neg() Money                     { return Money{value: m.value.Neg()} }
func (m Money) Add(n Money) Money              { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money              { return Money{value: m.value.Sub(n.value)} }
func (m Money) Mul(n Quantity) Money           { return Money{value: m.value.Mul(n.value)} }
func (m Money) Div(n Quantity) Money           { return Money{value: m.value.Div(n.value)} }
func (m Money) DivPrice(n Money) Quantity      { return Quantity{value: m.value.Div(n.value)} }
func (m Money) Round(places int32) Money       { return Money{value: m.value.Round(places)} }
func (m Money) InexactFloat64() float64        { return m.value.InexactFloat64() }
func (m Money) NearlyEqual(n Money, tol Money) bool {
	return m.value.Sub(n.value).Abs().LessThanOrEqual(tol.value)
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-"
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

// MarshalJSON writes the full precision amount as a JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.value.String()), nil
}

// UnmarshalJSON accepts a JSON number, a decimal string or null.
func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		m.value = decimal.Zero
		return nil
	}
	return m.value.UnmarshalJSON(data)
}
