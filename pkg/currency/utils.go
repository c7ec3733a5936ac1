package currency

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MinorUnitExponent is the number of fractional digits of the ledger currency.
const MinorUnitExponent = 2

var (
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	ErrTooManyDecimals   = errors.New("amount has more than two decimal places")
	ErrAmountOverflow    = errors.New("amount is too large")
)

var minorUnitFactor = decimal.New(1, MinorUnitExponent)

// ToMinorUnits converts a major-unit amount such as 400.50 into 40050.
// Fractions smaller than one minor unit are rejected rather than rounded.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, ErrNonPositiveAmount
	}

	minor := amount.Mul(minorUnitFactor)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, ErrTooManyDecimals
	}
	if !minor.BigInt().IsInt64() {
		return 0, ErrAmountOverflow
	}
	return minor.IntPart(), nil
}

// FromMinorUnits converts 40050 back into 400.50.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -MinorUnitExponent)
}

// ToMajorFloat is used for JSON responses, where clients expect plain numbers.
func ToMajorFloat(minor int64) float64 {
	return FromMinorUnits(minor).InexactFloat64()
}

// Format renders minor units with the currency code, e.g. "KES 400.50".
func Format(code string, minor int64) string {
	return fmt.Sprintf("%s %s", code, FromMinorUnits(minor).StringFixed(MinorUnitExponent))
}
