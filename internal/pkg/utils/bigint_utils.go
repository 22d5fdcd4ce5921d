package utils

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// FormatBigInt converts a base-unit amount to a human-readable decimal string.
// Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatBigInt(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	return ScaleBaseUnits(amount, decimals).String()
}

// ScaleBaseUnits divides amount by 10^decimals without losing precision.
func ScaleBaseUnits(amount *big.Int, decimals uint8) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -int32(decimals))
}

// ParseBigInt parses a decimal or 0x-prefixed hex integer string.
func ParseBigInt(s string) (*big.Int, bool) {
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return new(big.Int).SetString(s[2:], 16)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, false
	}
	return d.BigInt(), true
}
