package core

import (
	"regexp"
	"strconv"
	"strings"
)

// amountPattern matches rupee amounts preceded by a currency marker:
// ₹, INR, Rs or Rs. (any case), optional whitespace, then digits with
// optional comma grouping and up to two decimal places.
var amountPattern = regexp.MustCompile(`(?i)(?:₹|INR|Rs\.?)\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)

// ExtractAmount scans free text for currency-marked amounts and returns
// the largest one found. Notification emails routinely mention several
// figures (wallet balance, cashback, order total); the transaction
// amount is taken to be the maximum. Returns false when no amount
// parses.
func ExtractAmount(text string) (float64, bool) {
	matches := amountPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return 0, false
	}

	best := 0.0
	found := false
	for _, m := range matches {
		token := strings.ReplaceAll(m[1], ",", "")
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			continue
		}
		if !found || v > best {
			best = v
			found = true
		}
	}
	return best, found
}
