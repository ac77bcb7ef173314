package money

import (
	"github.com/shopspring/decimal"
)

// Amounts are carried as USD minor units (cents) everywhere; decimal math is
// only used where a computation can produce fractional cents.

// Tax applies rateBps basis points to the subtotal at full precision and
// rounds half-up to whole cents exactly once.
func Tax(subtotalCents int64, rateBps int) int64 {
	if subtotalCents <= 0 || rateBps <= 0 {
		return 0
	}
	rate := decimal.New(int64(rateBps), -4)
	tax := decimal.NewFromInt(subtotalCents).Mul(rate)
	return tax.Round(0).IntPart()
}

// FormatUSD renders cents as a two-decimal dollar string, e.g. 5940 -> "59.40".
func FormatUSD(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
