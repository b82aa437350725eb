package money

import (
	"fmt"
	"strconv"
	"strings"
)

// Cents is a monetary amount in integer cents. Negative values represent
// credits/refunds on card transactions per the transaction kind semantics.
type Cents int64

// Parse converts a human-readable decimal string to cents.
// Handles inputs like "123.45" → 12345, "0.5" → 50, "-12" → -1200.
// Uses string manipulation to avoid floating point precision issues.
func Parse(amountStr string) (Cents, error) {
	s := strings.TrimSpace(amountStr)
	if s == "" {
		return 0, fmt.Errorf("amount is required")
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("invalid amount format: %q", amountStr)
	}

	intPart := parts[0]
	decPart := ""
	if len(parts) > 1 {
		decPart = parts[1]
	}

	// Apart from the sign and the separator the input must be digits, and at
	// least one digit must be present ("-" and "." are not amounts).
	if intPart == "" && decPart == "" {
		return 0, fmt.Errorf("invalid amount format: %q", amountStr)
	}
	if !isDigits(intPart) || !isDigits(decPart) {
		return 0, fmt.Errorf("invalid amount format: %q", amountStr)
	}
	if intPart == "" {
		intPart = "0"
	}

	// Pad or truncate the decimal part to exactly two digits
	if len(decPart) < 2 {
		decPart = decPart + strings.Repeat("0", 2-len(decPart))
	} else if len(decPart) > 2 {
		decPart = decPart[:2]
	}

	combined := strings.TrimLeft(intPart+decPart, "0")
	if combined == "" {
		combined = "0"
	}

	value, err := strconv.ParseInt(combined, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount format: %q", amountStr)
	}

	if negative {
		value = -value
	}

	return Cents(value), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String formats cents as a decimal string with exactly two decimal places.
// 12345 → "123.45", -50 → "-0.50".
func (c Cents) String() string {
	v := int64(c)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Abs returns the absolute value.
func (c Cents) Abs() Cents {
	if c < 0 {
		return -c
	}
	return c
}

// IsNegative reports whether the amount is below zero.
func (c Cents) IsNegative() bool {
	return c < 0
}

// Split divides a total into n shares as evenly as possible. Any remainder
// from integer division is added to the first share so the shares always sum
// to the original total exactly.
func Split(total Cents, n int) ([]Cents, error) {
	if n < 1 {
		return nil, fmt.Errorf("share count must be at least 1, got %d", n)
	}

	base := int64(total) / int64(n)
	remainder := int64(total) - base*int64(n)

	shares := make([]Cents, n)
	for i := range shares {
		shares[i] = Cents(base)
	}
	shares[0] += Cents(remainder)

	return shares, nil
}

// Sum adds up a slice of amounts.
func Sum(amounts []Cents) Cents {
	var total Cents
	for _, a := range amounts {
		total += a
	}
	return total
}
