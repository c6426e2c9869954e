// Package catalog imports product records from CSV files.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"price-scout/internal/logger"
	"price-scout/internal/pricing"
)

// LoadFile reads a product catalog CSV from disk.
func LoadFile(path string) ([]pricing.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses catalog rows from r. The first row is a header; recognized
// columns are name, category, current price ("price" / "current_price"), and
// unit cost ("cost" / "unit_cost"). Rows with an unusable name or price are
// skipped with a warning rather than failing the import.
func Load(r io.Reader) ([]pricing.Product, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	cols := columnIndex(header)
	if cols.name < 0 || cols.price < 0 {
		return nil, fmt.Errorf("catalog header missing name/price columns: %v", header)
	}

	var products []pricing.Product
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logger.Warn("Catalog", fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		p, ok := parseRow(record, cols)
		if !ok {
			logger.Warn("Catalog", fmt.Sprintf("line %d: skipped (bad name or price)", line))
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

type columns struct {
	name, category, price, cost int
}

func columnIndex(header []string) columns {
	cols := columns{name: -1, category: -1, price: -1, cost: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "name", "product", "product_name":
			cols.name = i
		case "category":
			cols.category = i
		case "price", "current_price":
			cols.price = i
		case "cost", "unit_cost":
			cols.cost = i
		}
	}
	return cols
}

func parseRow(record []string, cols columns) (pricing.Product, bool) {
	var p pricing.Product

	p.Name = strings.TrimSpace(field(record, cols.name))
	if p.Name == "" {
		return p, false
	}
	price, ok := pricing.ParsePrice(field(record, cols.price))
	if !ok {
		return p, false
	}
	p.CurrentPrice = price

	// Cost and category are optional; a missing cost means a zero-cost
	// product, which the optimizer accepts.
	if cost, ok := pricing.ParsePrice(field(record, cols.cost)); ok {
		p.UnitCost = cost
	}
	p.Category = strings.TrimSpace(field(record, cols.category))
	return p, true
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}
