// Package export writes recommendation runs to CSV, XLSX, and Google Sheets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"price-scout/internal/pricing"
)

// header is the shared column layout for all export formats.
var header = []string{
	"Product", "Category", "Current Price", "Recommended Price",
	"Avg Competitor Price", "Competitors",
	"Profit Current", "Profit Recommended", "Profit Delta", "Price Delta %",
	"Market Anchored", "Margin Pinned", "A/B p-value",
}

// WriteCSV writes recommendations as CSV.
func WriteCSV(w io.Writer, recs []pricing.Recommendation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range recs {
		if err := cw.Write(row(r)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(r pricing.Recommendation) []string {
	pValue := ""
	if r.ABPValue != nil {
		pValue = strconv.FormatFloat(*r.ABPValue, 'f', 4, 64)
	}
	return []string{
		r.ProductName,
		r.Category,
		money(r.CurrentPrice),
		money(r.RecommendedPrice),
		money(r.AvgCompetitorPrice),
		strconv.Itoa(r.CompetitorCount),
		money(r.ProfitCurrent),
		money(r.ProfitRecommended),
		money(r.ProfitDelta),
		strconv.FormatFloat(r.PriceDeltaPct, 'f', 2, 64),
		strconv.FormatBool(r.MarketAnchored),
		strconv.FormatBool(r.MarginPinned),
		pValue,
	}
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
