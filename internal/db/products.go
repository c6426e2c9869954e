package db

import (
	"log"
	"time"

	"price-scout/internal/pricing"
)

// UpsertProducts bulk-inserts or updates catalog products.
func (d *DB) UpsertProducts(products []pricing.Product) {
	if len(products) == 0 {
		return
	}

	tx, err := d.sql.Begin()
	if err != nil {
		log.Printf("[DB] UpsertProducts begin tx: %v", err)
		return
	}

	stmt, err := tx.Prepare(`INSERT INTO products (name, category, current_price, unit_cost, updated_at)
		VALUES (?,?,?,?,?)
		ON CONFLICT(name) DO UPDATE SET
			category = excluded.category,
			current_price = excluded.current_price,
			unit_cost = excluded.unit_cost,
			updated_at = excluded.updated_at`)
	if err != nil {
		tx.Rollback()
		log.Printf("[DB] UpsertProducts prepare: %v", err)
		return
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range products {
		stmt.Exec(p.Name, p.Category, p.CurrentPrice, p.UnitCost, now)
	}

	if err := tx.Commit(); err != nil {
		log.Printf("[DB] UpsertProducts commit: %v", err)
	}
}

// ListProducts returns the catalog sorted by name.
func (d *DB) ListProducts() []pricing.Product {
	rows, err := d.sql.Query("SELECT name, category, current_price, unit_cost FROM products ORDER BY name")
	if err != nil {
		return nil
	}
	defer rows.Close()

	var products []pricing.Product
	for rows.Next() {
		var p pricing.Product
		rows.Scan(&p.Name, &p.Category, &p.CurrentPrice, &p.UnitCost)
		products = append(products, p)
	}
	return products
}

// DeleteProduct removes one product from the catalog.
func (d *DB) DeleteProduct(name string) {
	if _, err := d.sql.Exec("DELETE FROM products WHERE name = ?", name); err != nil {
		log.Printf("[DB] DeleteProduct: %v", err)
	}
}
