// Package money owns the single conversion between the gateway's minor
// currency units (kobo) and the major units stored on orders and ledger rows.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const minorUnitsPerMajor = 100

var minorFactor = decimal.NewFromInt(minorUnitsPerMajor)

// FromMinorUnits converts a gateway amount in kobo to a major-unit decimal.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(minorFactor)
}

// ToMinorUnits converts a major-unit decimal to kobo. Amounts with fractions
// of a kobo are rejected rather than silently rounded.
func ToMinorUnits(major decimal.Decimal) (int64, error) {
	minor := major.Mul(minorFactor)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has sub-kobo precision", major)
	}
	return minor.IntPart(), nil
}
