// Package money provides integer-based monetary arithmetic.
// All amounts are stored as minor currency units (cents) and all
// percentages as basis points, so no floating point ever touches
// a stored or aggregated value.
package money

// Cents is an amount in minor currency units.
type Cents int64

// BasisPoints is a percentage expressed in 1/100ths of a percent.
// 10000 basis points = 100%.
type BasisPoints int64

const (
	// MaxBasisPoints is the upper bound for a stored rate (100%).
	MaxBasisPoints BasisPoints = 10000

	// QuantityScale is the fixed-point scale for line item quantities:
	// a quantity of 1.5 units is stored as 1500 thousandths.
	QuantityScale int64 = 1000
)

// IsValid reports whether the rate lies in the storable [0, 10000] range.
func (bp BasisPoints) IsValid() bool {
	return bp >= 0 && bp <= MaxBasisPoints
}

// Percent returns the rate as a display percentage (e.g. 1600bp -> 16.0).
// Display boundary only; never feed the result back into stored amounts.
func (bp BasisPoints) Percent() float64 {
	return float64(bp) / 100
}

// Add returns c + other. Plain integer addition, overflow is the
// caller's concern at int64 scale (9.2 quintillion cents).
func (c Cents) Add(other Cents) Cents {
	return c + other
}

// Sub returns c - other.
func (c Cents) Sub(other Cents) Cents {
	return c - other
}

// IsNegative reports whether the amount is below zero.
func (c Cents) IsNegative() bool {
	return c < 0
}

// ApplyRate multiplies an amount by a basis-point rate, rounding half
// up on the magnitude. ApplyRate(13000, 1600) = 2080.
func ApplyRate(amount Cents, rate BasisPoints) Cents {
	return Cents(divRoundHalfUp(int64(amount)*int64(rate), int64(MaxBasisPoints)))
}

// LineAmount computes a line item amount from a fixed-point quantity
// (thousandths of a unit) and a unit price, rounding half up.
// LineAmount(2500, 1000) = 2500 * 1000 / 1000 = 2500.
func LineAmount(quantityThousandths int64, unitPrice Cents) Cents {
	return Cents(divRoundHalfUp(quantityThousandths*int64(unitPrice), QuantityScale))
}

// Ratio expresses numerator/denominator as basis points, rounding half
// up. A zero denominator yields 0, not an error: an empty invoice total
// or budget simply has no meaningful margin or utilization.
func Ratio(numerator, denominator Cents) BasisPoints {
	if denominator == 0 {
		return 0
	}
	return BasisPoints(divRoundHalfUp(int64(numerator)*int64(MaxBasisPoints), int64(denominator)))
}

// divRoundHalfUp divides n by d rounding half away from zero on the
// magnitude, the single rounding rule used everywhere a rate or ratio
// produces cents. d must be non-zero.
func divRoundHalfUp(n, d int64) int64 {
	negative := false
	if n < 0 {
		n = -n
		negative = !negative
	}
	if d < 0 {
		d = -d
		negative = !negative
	}
	q := (n + d/2) / d
	if negative {
		return -q
	}
	return q
}
