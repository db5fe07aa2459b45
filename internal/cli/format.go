// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatKWh formats an energy amount with two decimals.
// e.g., 5.92 -> "5.92 kWh"
func FormatKWh(kwh float64) string {
	return fmt.Sprintf("%.2f kWh", kwh)
}

// FormatMoney formats an amount in the given currency code.
// e.g., (9.472, "GHS") -> "GHS 9.47", (1234.5, "GHS") -> "GHS 1,234.50"
func FormatMoney(amount float64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	cents := int64(math.Round(amount * 100))
	s := fmt.Sprintf("%s%s.%02d", sign, FormatNumber(cents/100), cents%100)
	if currency == "" {
		return s
	}
	return currency + " " + s
}

// FormatDays formats a day count to one decimal.
// e.g., 5.277 -> "5.3 days", 1 -> "1.0 day"
func FormatDays(days float64) string {
	if math.Round(days*10) == 10 {
		return "1.0 day"
	}
	return fmt.Sprintf("%.1f days", days)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatHours formats daily running hours, dropping a zero fraction.
// e.g., 24 -> "24 h", 0.5 -> "0.5 h"
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64) + " h"
}
