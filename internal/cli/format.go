// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var thousand = decimal.NewFromInt(1000)

// FormatMoney formats an amount with thousands separators and two decimals.
// e.g., 1234567.891 -> "1,234,567.89 EGP"
func FormatMoney(d decimal.Decimal, currency string) string {
	s := humanize.FormatFloat("#,###.##", d.Round(2).InexactFloat64())
	if currency == "" {
		return s
	}
	return s + " " + currency
}

// FormatCompact formats an amount with a human-readable suffix.
// e.g., 1234 -> "1.2K", 1234567 -> "1.2M", 1234567890 -> "1.2B"
func FormatCompact(d decimal.Decimal) string {
	abs := d.Abs()
	switch {
	case abs.GreaterThanOrEqual(thousand.Pow(decimal.NewFromInt(3))):
		return d.Div(thousand.Pow(decimal.NewFromInt(3))).StringFixed(1) + "B"
	case abs.GreaterThanOrEqual(thousand.Mul(thousand)):
		return d.Div(thousand.Mul(thousand)).StringFixed(1) + "M"
	case abs.GreaterThanOrEqual(thousand):
		return d.Div(thousand).StringFixed(1) + "K"
	default:
		return d.StringFixed(0)
	}
}

// FormatRate formats an annual percent rate.
func FormatRate(d decimal.Decimal) string {
	return d.StringFixed(2) + "%"
}

// FormatPercent formats a 0-1 fraction as a percentage string.
func FormatPercent(d decimal.Decimal) string {
	return d.Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatMonths formats a month count as years and months.
// e.g., 40 -> "3y 4m", 11 -> "11m", 0 -> "now"
func FormatMonths(n int) string {
	if n <= 0 {
		return "now"
	}
	years, months := n/12, n%12
	switch {
	case years == 0:
		return fmt.Sprintf("%dm", months)
	case months == 0:
		return fmt.Sprintf("%dy", years)
	default:
		return fmt.Sprintf("%dy %dm", years, months)
	}
}

// FormatOptional formats a possibly missing amount, "-" when nil.
func FormatOptional(d *decimal.Decimal, currency string) string {
	if d == nil {
		return "-"
	}
	return FormatMoney(*d, currency)
}

// Truncate shortens s to width runes with an ellipsis.
func Truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return strings.TrimSpace(string(r[:width-1])) + "…"
}
