package tradebook

import (
	"encoding/json"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value in a given currency.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

// M returns a Money of value in currency.
func M[T float64 | int | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float64 | int | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

// KnownCurrency reports whether code is an ISO 4217 currency.
func KnownCurrency(code string) bool { return money.GetCurrency(code) != nil }

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the string representation of the money value.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
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

func (m Money) Currency() string              { return m.cur }
func (m Money) Decimal() decimal.Decimal      { return m.value }
func (m Money) Equal(n Money) bool            { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                  { return m.value.IsZero() }
func (m Money) IsPositive() bool              { return m.value.IsPositive() }
func (m Money) IsNegative() bool              { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool         { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool      { return m.value.GreaterThan(n.value) }
func (m Money) Neg() Money                    { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money                    { return Money{value: m.value.Abs(), cur: m.cur} }
func (m Money) Round(places int32) Money      { return Money{value: m.value.Round(places), cur: m.cur} }
func (m Money) Mul(n decimal.Decimal) Money   { return Money{value: m.value.Mul(n), cur: m.cur} }
func (m Money) Float() float64                { return m.value.InexactFloat64() }
func (m Money) In(currency string) bool       { return m.cur == currency }

// WithValue returns v in m's currency.
func (m Money) WithValue(v decimal.Decimal) Money { return Money{value: v, cur: m.cur} }

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// makes the "" currency totally weak.
func cur(A, B Money) string {
	if A.cur == "" {
		return B.cur
	}
	if B.cur == "" {
		return A.cur
	}
	if A.cur != B.cur {
		panic("currency mismatch " + A.cur + "!=" + B.cur)
	}
	return A.cur
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Currency string          `json:"currency,omitempty"`
		Amount   decimal.Decimal `json:"amount"`
	}{m.cur, m.value.Round(int32(m.currency().Fraction))})
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var v struct {
		Currency string          `json:"currency"`
		Amount   decimal.Decimal `json:"amount"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*m = Money{value: v.Amount, cur: v.Currency}
	return nil
}
