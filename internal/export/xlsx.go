package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"price-scout/internal/pricing"
)

const xlsxSheet = "Recommendations"

// WriteXLSX writes recommendations as an Excel workbook.
func WriteXLSX(w io.Writer, recs []pricing.Recommendation) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(xlsxSheet)
	if err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range recs {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{
			r.ProductName, r.Category, r.CurrentPrice, r.RecommendedPrice,
			r.AvgCompetitorPrice, r.CompetitorCount,
			r.ProfitCurrent, r.ProfitRecommended, r.ProfitDelta, r.PriceDeltaPct,
			r.MarketAnchored, r.MarginPinned,
		}
		if r.ABPValue != nil {
			values = append(values, *r.ABPValue)
		} else {
			values = append(values, "")
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
