package utils

import (
	"regexp"

	"github.com/shopspring/decimal"
)

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// ParseMoney extracts the numeric part of a display string such as "$1,234.50" or "+2.5 STT".
// Every character except digits, '.' and '-' is stripped; anything unparsable yields zero.
func ParseMoney(s string) decimal.Decimal {
	cleaned := nonNumeric.ReplaceAllString(s, "")
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// TryParseMoney is ParseMoney that reports whether s held a number at all.
func TryParseMoney(s string) (decimal.Decimal, bool) {
	cleaned := nonNumeric.ReplaceAllString(s, "")
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// FormatUSD renders d as "$<number>" with at least two decimal places.
func FormatUSD(d decimal.Decimal) string {
	if !d.Equal(d.Round(2)) {
		return "$" + d.String()
	}
	return "$" + d.StringFixed(2)
}

// FormatUSDCents renders d as "$<number>" rounded to exactly two decimal places.
func FormatUSDCents(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
