package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"price-scout/internal/pricing"
)

func sampleRecs() []pricing.Recommendation {
	pValue := 0.0312
	return []pricing.Recommendation{
		{
			ProductName: "Bottle", Category: "Bottles",
			CurrentPrice: 25, RecommendedPrice: 27.90,
			AvgCompetitorPrice: 26.5, CompetitorCount: 4,
			ProfitCurrent: 1600, ProfitRecommended: 1712.5, ProfitDelta: 112.5,
			PriceDeltaPct: 11.6, MarketAnchored: true, ABPValue: &pValue,
		},
		{
			ProductName: "Scarf", Category: "Scarves",
			CurrentPrice: 10, RecommendedPrice: 14.40, MarginPinned: true,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecs()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "Product" || len(rows[0]) != len(header) {
		t.Errorf("header row = %v", rows[0])
	}
	if rows[1][0] != "Bottle" || rows[1][3] != "27.90" {
		t.Errorf("bottle row = %v", rows[1])
	}
	if rows[1][12] != "0.0312" {
		t.Errorf("p-value cell = %q, want 0.0312", rows[1][12])
	}
	// No A/B result leaves the cell empty.
	if rows[2][12] != "" {
		t.Errorf("scarf p-value cell = %q, want empty", rows[2][12])
	}
	if rows[2][11] != "true" {
		t.Errorf("scarf margin-pinned cell = %q, want true", rows[2][11])
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleRecs()); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("re-open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[1][0] != "Bottle" {
		t.Errorf("first data row = %v", rows[1])
	}
	if !strings.HasPrefix(rows[1][3], "27.9") {
		t.Errorf("recommended price cell = %q, want 27.9", rows[1][3])
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV(nil): %v", err)
	}
	rows, _ := csv.NewReader(&buf).ReadAll()
	if len(rows) != 1 {
		t.Errorf("empty export rows = %d, want header only", len(rows))
	}
}
