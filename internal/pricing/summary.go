package pricing

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MarketSummary aggregates cleaned competitor observations for one product.
// When Count == 0 the Mean is meaningless and callers fall back to the
// product's current price as the anchor.
type MarketSummary struct {
	Cleaned []float64 `json:"cleaned"`
	Mean    float64   `json:"mean"`
	Count   int       `json:"count"`
}

// Summarize cleans raw scraped price strings and aggregates the survivors.
// Non-numeric, non-positive, and empty entries are discarded; order of the
// surviving values is preserved.
func Summarize(raw []string) MarketSummary {
	cleaned := make([]float64, 0, len(raw))
	for _, r := range raw {
		if v, ok := ParsePrice(r); ok {
			cleaned = append(cleaned, v)
		}
	}
	return SummarizeValues(cleaned)
}

// SummarizeValues aggregates already-numeric observations, dropping
// NaN/Inf/non-positive values.
func SummarizeValues(prices []float64) MarketSummary {
	cleaned := make([]float64, 0, len(prices))
	var sum float64
	for _, p := range prices {
		if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
			continue
		}
		cleaned = append(cleaned, p)
		sum += p
	}
	s := MarketSummary{Cleaned: cleaned, Count: len(cleaned)}
	if s.Count > 0 {
		s.Mean = sum / float64(s.Count)
	}
	return s
}

// ParsePrice coerces a currency-formatted string to a positive price.
// Handles currency symbols/codes and both European ("1.299,95") and
// US ("1,299.95") separator conventions. Returns false for anything that is
// not a positive number.
func ParsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// Keep only digits, separators and sign.
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	num := b.String()
	if num == "" || num == "-" {
		return 0, false
	}

	num = normalizeSeparators(num)

	d, err := decimal.NewFromString(num)
	if err != nil || !d.IsPositive() {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

// normalizeSeparators rewrites a numeric string to use '.' as the decimal
// separator and no thousands separators.
func normalizeSeparators(num string) string {
	lastDot := strings.LastIndex(num, ".")
	lastComma := strings.LastIndex(num, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Both present: the rightmost one is the decimal separator.
		if lastComma > lastDot {
			num = strings.ReplaceAll(num, ".", "")
			num = strings.Replace(num, ",", ".", 1)
		} else {
			num = strings.ReplaceAll(num, ",", "")
		}
	case lastComma >= 0:
		num = singleSeparator(num, ",", lastComma)
	case lastDot >= 0:
		num = singleSeparator(num, ".", lastDot)
	}
	return num
}

// singleSeparator decides whether a lone separator kind is decimal or
// thousands: a single occurrence followed by one or two digits reads as a
// decimal point ("19,95"), anything else as grouping ("1.299").
func singleSeparator(num, sep string, last int) string {
	if strings.Count(num, sep) == 1 && len(num)-last-1 <= 2 {
		return strings.Replace(num, sep, ".", 1)
	}
	return strings.ReplaceAll(num, sep, "")
}
