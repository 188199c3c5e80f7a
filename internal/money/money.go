// Package money provides exact decimal handling for prices and totals.
// All monetary values are decimal, never binary floating point, so that
// serialized amounts round-trip without drift.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is the zero amount.
var Zero = decimal.Zero

// Parse converts exact decimal text into an amount.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

// ParseNonNegative parses an amount and rejects negative values, naming the
// field in the returned error.
func ParseNonNegative(field, s string) (decimal.Decimal, error) {
	d, err := Parse(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("%s must not be negative", field)
	}
	return d, nil
}

// LineTotal computes (salePrice - discount) * quantity exactly.
func LineTotal(salePrice, discount decimal.Decimal, quantity int) decimal.Decimal {
	return salePrice.Sub(discount).Mul(decimal.NewFromInt(int64(quantity)))
}

// Sum adds the provided amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
