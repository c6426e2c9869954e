// Package config holds application settings and the category parameter
// registry (in-memory representation). Persistence is handled by internal/db.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"

	"price-scout/internal/pricing"
)

// Config holds application settings.
type Config struct {
	Port    int    `json:"port" env:"PORT"`
	DBPath  string `json:"db_path" env:"DB_PATH"`
	Catalog string `json:"catalog" env:"CATALOG_PATH"`

	// RoundingPolicy selects the price granularity rule: "cents" or
	// "psychological".
	RoundingPolicy string `json:"rounding_policy"`
	// ABSampleSize is the per-arm trial count for simulated A/B tests.
	ABSampleSize int `json:"ab_sample_size"`
	// BatchWorkers bounds parallelism of batch optimization runs.
	BatchWorkers int `json:"batch_workers"`
	// ScrapeDelayMS is the pause between requests to the same site.
	ScrapeDelayMS int `json:"scrape_delay_ms"`
	// ScrapeTimeoutSec is the per-request timeout for competitor fetches.
	ScrapeTimeoutSec int `json:"scrape_timeout_sec"`

	// Google Sheets export settings. Credentials come from the environment
	// only and are never persisted or echoed back through the API.
	SpreadsheetID        string `json:"spreadsheet_id" env:"SPREADSHEET_ID"`
	SheetsCredentialsJSON string `json:"-" env:"SHEETS_CREDENTIALS"`
	SheetsCredentialsFile string `json:"-" env:"SHEETS_CREDENTIALS_FILE"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Port:             8080,
		RoundingPolicy:   "cents",
		ABSampleSize:     1000,
		BatchWorkers:     pricing.DefaultBatchWorkers,
		ScrapeDelayMS:    1000,
		ScrapeTimeoutSec: 10,
	}
}

// ApplyEnv overlays environment variables onto the config.
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
