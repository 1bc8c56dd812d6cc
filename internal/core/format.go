package core

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatRupees renders an amount with two decimals and thousands
// grouping, e.g. 1234567.5 -> "₹1,234,567.50".
func FormatRupees(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")
	return "₹" + groupThousands(whole) + "." + frac
}

// FormatRupeesWhole renders an amount rounded to whole rupees with
// thousands grouping, e.g. 12345.6 -> "12,346". The currency marker is
// left to the caller.
func FormatRupeesWhole(amount float64) string {
	return groupThousands(strconv.FormatFloat(amount, 'f', 0, 64))
}

func groupThousands(digits string) string {
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	if len(digits) <= 3 {
		if neg {
			return "-" + digits
		}
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// Describe renders a one-line human summary of an expense, used by the
// worker when logging ledger events.
func Describe(e Expense) string {
	merchant := e.Merchant
	if merchant == "" {
		merchant = "unknown merchant"
	}
	return fmt.Sprintf("%s %s at %s (%s)", e.Date.ISO(), FormatRupees(e.Amount), merchant, e.Source)
}
