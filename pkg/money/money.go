// Package money converts between integer minor currency units and their
// display form. All arithmetic stays in integers; floats would drift across
// repeated cart recomputation.
package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Format renders minor units as a fixed two-decimal amount: 129900 -> "1299.00".
func Format(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}

// FormatWithCurrency appends the uppercased currency code: "1299.00 THB".
func FormatWithCurrency(amount int64, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		return Format(amount)
	}
	return Format(amount) + " " + code
}

// Parse converts a decimal amount string ("1299", "1299.5", "1299.00") into
// minor units. Negative amounts and more than two fractional digits are
// rejected; store APIs do not quote sub-unit prices.
func Parse(s string) (int64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, errors.New("empty amount")
	}
	if strings.HasPrefix(trimmed, "-") {
		return 0, fmt.Errorf("negative amount %q", s)
	}

	whole, frac, hasDot := strings.Cut(trimmed, ".")
	if whole == "" {
		whole = "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	if !hasDot {
		return units * 100, nil
	}
	switch len(frac) {
	case 1:
		frac += "0"
	case 2:
	default:
		return 0, fmt.Errorf("amount %q must have at most two decimal places", s)
	}
	cents, err := strconv.ParseUint(frac, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return units*100 + int64(cents), nil
}
