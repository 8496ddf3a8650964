package usecase

import (
	"regexp"
	"strings"
)

var (
	nonPriceCharsRegex = regexp.MustCompile(`[^\d.,]`)
	priceRunRegex      = regexp.MustCompile(`[\d.]+`)
)

// NormalizePrice reduces free-form price text to a canonical decimal string.
// Commas are treated as thousands separators. Currency symbols are discarded,
// the currency travels with the country instead. Returns false when no digits remain.
func NormalizePrice(priceText string) (string, bool) {
	if priceText == "" {
		return "", false
	}

	cleaned := nonPriceCharsRegex.ReplaceAllString(priceText, "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	run := priceRunRegex.FindString(cleaned)
	if !strings.ContainsAny(run, "0123456789") {
		return "", false
	}
	return run, true
}
