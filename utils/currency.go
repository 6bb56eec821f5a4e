// utils/currency.go
package utils

import (
	"fmt"
	"strings"
)

// FormatBRL formats an amount in integer cents as a Brazilian Real string.
// Example: 1550050 -> "R$ 15.500,50"
func FormatBRL(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	integer := cents / 100
	decimal := cents % 100

	integerStr := fmt.Sprintf("%d", integer)

	// Insert thousands separators
	var parts []string
	for i := len(integerStr); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		parts = append([]string{integerStr[start:i]}, parts...)
	}

	return fmt.Sprintf("%sR$ %s,%02d", sign, strings.Join(parts, "."), decimal)
}
