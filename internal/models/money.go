package models

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var thousandsPattern = regexp.MustCompile(`^[-+]?\d{1,3}(,\d{3})+$`)

// Round2 rounds an amount to cents, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ParseAmount parses a signed decimal amount as found in converter output.
// Surrounding spaces, currency symbols and well-formed thousands separators
// ("1,234.56") are removed first; any other comma, including a decimal comma
// ("12,50"), makes the amount invalid.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount := strings.TrimSpace(raw)
	amount = strings.ReplaceAll(amount, " ", "")
	amount = strings.ReplaceAll(amount, "$", "")
	amount = strings.ReplaceAll(amount, "USD", "")

	// "(12.50)" accounting negatives.
	if strings.HasPrefix(amount, "(") && strings.HasSuffix(amount, ")") {
		amount = "-" + strings.TrimSuffix(strings.TrimPrefix(amount, "("), ")")
	}

	if amount == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	if strings.Contains(amount, ",") {
		whole, fraction, hasFraction := strings.Cut(amount, ".")
		if !thousandsPattern.MatchString(whole) {
			return decimal.Zero, fmt.Errorf("invalid amount string '%s': misplaced comma", raw)
		}
		amount = strings.ReplaceAll(whole, ",", "")
		if hasFraction {
			amount += "." + fraction
		}
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount string '%s': %w", raw, err)
	}
	return dec, nil
}

// SumAmounts adds the amounts of the transactions matching keep.
func SumAmounts(transactions []Transaction, keep func(Transaction) bool) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range transactions {
		if keep == nil || keep(tx) {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// FormatCurrency renders an amount as "$1234.50" (negative as "-$1234.50").
func FormatCurrency(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}
