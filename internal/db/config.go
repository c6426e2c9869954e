package db

import (
	"encoding/json"
	"log"
	"strconv"

	"price-scout/internal/config"
	"price-scout/internal/pricing"
)

// LoadConfig reads config from SQLite. Missing keys keep their defaults.
func (d *DB) LoadConfig() *config.Config {
	cfg := config.Default()

	rows, err := d.sql.Query("SELECT key, value FROM config")
	if err != nil {
		return cfg
	}
	defer rows.Close()

	m := make(map[string]string)
	for rows.Next() {
		var k, v string
		rows.Scan(&k, &v)
		m[k] = v
	}

	if v, ok := m["port"]; ok {
		cfg.Port, _ = strconv.Atoi(v)
	}
	if v, ok := m["rounding_policy"]; ok {
		cfg.RoundingPolicy = v
	}
	if v, ok := m["ab_sample_size"]; ok {
		cfg.ABSampleSize, _ = strconv.Atoi(v)
	}
	if v, ok := m["batch_workers"]; ok {
		cfg.BatchWorkers, _ = strconv.Atoi(v)
	}
	if v, ok := m["scrape_delay_ms"]; ok {
		cfg.ScrapeDelayMS, _ = strconv.Atoi(v)
	}
	if v, ok := m["scrape_timeout_sec"]; ok {
		cfg.ScrapeTimeoutSec, _ = strconv.Atoi(v)
	}
	if v, ok := m["spreadsheet_id"]; ok {
		cfg.SpreadsheetID = v
	}
	return cfg
}

// SaveConfig writes config to SQLite.
func (d *DB) SaveConfig(cfg *config.Config) {
	pairs := map[string]string{
		"port":               strconv.Itoa(cfg.Port),
		"rounding_policy":    cfg.RoundingPolicy,
		"ab_sample_size":     strconv.Itoa(cfg.ABSampleSize),
		"batch_workers":      strconv.Itoa(cfg.BatchWorkers),
		"scrape_delay_ms":    strconv.Itoa(cfg.ScrapeDelayMS),
		"scrape_timeout_sec": strconv.Itoa(cfg.ScrapeTimeoutSec),
		"spreadsheet_id":     cfg.SpreadsheetID,
	}
	for k, v := range pairs {
		if _, err := d.sql.Exec(
			"INSERT INTO config (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
			k, v,
		); err != nil {
			log.Printf("[DB] SaveConfig %s: %v", k, err)
		}
	}
}

// LoadCategories reads the category parameter registry in declaration order.
// An empty table means first run; the caller seeds defaults.
func (d *DB) LoadCategories() []config.Category {
	rows, err := d.sql.Query(`
		SELECT name, keywords, elasticity, saturation, min_margin_pct, max_increase_pct, max_decrease_pct
		FROM category_params ORDER BY position
	`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var categories []config.Category
	for rows.Next() {
		var c config.Category
		var keywords string
		if err := rows.Scan(&c.Name, &keywords, &c.Params.Elasticity, &c.Params.Saturation,
			&c.Params.MinMarginPct, &c.Params.MaxIncreasePct, &c.Params.MaxDecreasePct); err != nil {
			log.Printf("[DB] LoadCategories scan: %v", err)
			continue
		}
		json.Unmarshal([]byte(keywords), &c.Keywords)
		categories = append(categories, c)
	}
	return categories
}

// SaveCategories replaces the category registry atomically.
func (d *DB) SaveCategories(categories []config.Category) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM category_params"); err != nil {
		tx.Rollback()
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO category_params
		(position, name, keywords, elasticity, saturation, min_margin_pct, max_increase_pct, max_decrease_pct)
		VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i, c := range categories {
		keywords, _ := json.Marshal(c.Keywords)
		if _, err := stmt.Exec(i, c.Name, string(keywords), c.Params.Elasticity, c.Params.Saturation,
			c.Params.MinMarginPct, c.Params.MaxIncreasePct, c.Params.MaxDecreasePct); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// LoadRegistry builds the registry from stored categories, seeding and
// persisting the defaults on first run.
func (d *DB) LoadRegistry() *config.Registry {
	categories := d.LoadCategories()
	if len(categories) == 0 {
		categories = config.DefaultCategories()
		if err := d.SaveCategories(categories); err != nil {
			log.Printf("[DB] seed categories: %v", err)
		}
	}
	return config.NewRegistry(categories)
}

var _ pricing.ParamSource = (*config.Registry)(nil)
