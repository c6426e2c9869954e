// Package db persists catalog, market observations, and recommendation runs
// in SQLite.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"price-scout/internal/logger"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
}

// DefaultPath returns the default database location.
// Prefer working directory so the DB is stable across go run / go build;
// fall back to the executable directory for deployed builds.
func DefaultPath() string {
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "pricescout.db")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "pricescout.db")
}

// Open opens (or creates) the SQLite database at path and runs migrations.
// An empty path uses DefaultPath.
func Open(path string) (*DB, error) {
	if path == "" {
		path = DefaultPath()
	}
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// SqlDB exposes the underlying handle for collaborators that manage their own
// statements.
func (d *DB) SqlDB() *sql.DB {
	return d.sql
}

func (d *DB) migrate() error {
	version := 0
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS config (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS category_params (
				position         INTEGER NOT NULL,
				name             TEXT PRIMARY KEY,
				keywords         TEXT NOT NULL DEFAULT '[]',
				elasticity       REAL NOT NULL,
				saturation       REAL NOT NULL,
				min_margin_pct   REAL NOT NULL,
				max_increase_pct REAL NOT NULL,
				max_decrease_pct REAL NOT NULL
			);

			CREATE TABLE IF NOT EXISTS products (
				name          TEXT PRIMARY KEY,
				category      TEXT NOT NULL DEFAULT '',
				current_price REAL NOT NULL,
				unit_cost     REAL NOT NULL,
				updated_at    TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS sites (
				id             INTEGER PRIMARY KEY AUTOINCREMENT,
				name           TEXT NOT NULL,
				url            TEXT NOT NULL,
				search_pattern TEXT NOT NULL DEFAULT '/search?q=%s',
				price_pattern  TEXT NOT NULL DEFAULT '',
				active         INTEGER NOT NULL DEFAULT 1
			);

			CREATE TABLE IF NOT EXISTS scrape_jobs (
				id             TEXT PRIMARY KEY,
				status         TEXT NOT NULL,
				started_at     TEXT NOT NULL,
				completed_at   TEXT,
				error_log      TEXT,
				total_products INTEGER NOT NULL DEFAULT 0
			);

			CREATE TABLE IF NOT EXISTS observations (
				id           INTEGER PRIMARY KEY AUTOINCREMENT,
				job_id       TEXT NOT NULL,
				product_name TEXT NOT NULL,
				site_name    TEXT NOT NULL,
				price        REAL NOT NULL,
				raw          TEXT NOT NULL DEFAULT '',
				scraped_at   TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_observations_product ON observations(product_name);
			CREATE INDEX IF NOT EXISTS idx_observations_job ON observations(job_id);

			CREATE TABLE IF NOT EXISTS runs (
				id          TEXT PRIMARY KEY,
				timestamp   TEXT NOT NULL,
				products    INTEGER NOT NULL,
				recommended INTEGER NOT NULL,
				failed      INTEGER NOT NULL
			);

			CREATE TABLE IF NOT EXISTS recommendations (
				id                   INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id               TEXT NOT NULL,
				product_name         TEXT NOT NULL,
				category             TEXT NOT NULL,
				current_price        REAL NOT NULL,
				recommended_price    REAL NOT NULL,
				avg_competitor_price REAL NOT NULL,
				competitor_count     INTEGER NOT NULL,
				profit_current       REAL NOT NULL,
				profit_recommended   REAL NOT NULL,
				profit_delta         REAL NOT NULL,
				price_delta_pct      REAL NOT NULL,
				market_anchored      INTEGER NOT NULL,
				margin_pinned        INTEGER NOT NULL,
				ab_p_value           REAL
			);
			CREATE INDEX IF NOT EXISTS idx_recommendations_run ON recommendations(run_id);

			INSERT INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return err
		}
	}
	return nil
}
