package tradebook

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a percentage, 12.5 means 12.5%.
type Percent float64

// PercentOf returns part*100/whole rounded to two decimals, 0 if whole is zero.
func PercentOf(part, whole decimal.Decimal) Percent {
	if whole.IsZero() {
		return 0
	}
	p := part.Mul(decimal.NewFromInt(100)).Div(whole).Round(2)
	return Percent(p.InexactFloat64())
}

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" {
		return "-"
	}
	return res
}

// Decimal returns p as a decimal, 12.5% is 12.5.
func (p Percent) Decimal() decimal.Decimal { return decimal.NewFromFloat(float64(p)) }
