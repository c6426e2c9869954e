package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"price-scout/internal/api"
	"price-scout/internal/catalog"
	"price-scout/internal/config"
	"price-scout/internal/db"
	"price-scout/internal/logger"
	"price-scout/internal/scraper"
)

var version = "dev"

func main() {
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path")
	catalogPath := flag.String("catalog", "", "CSV catalog to import at startup")
	flag.Parse()

	logger.Banner(version)

	database, err := db.Open(*dbPath)
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	cfg := database.LoadConfig()
	if err := config.ApplyEnv(cfg); err != nil {
		logger.Error("Config", err.Error())
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Port = *port
	}

	registry := database.LoadRegistry()
	logger.Stats("categories", len(registry.Categories()))

	if *catalogPath != "" {
		cfg.Catalog = *catalogPath
	}
	if cfg.Catalog != "" {
		products, err := catalog.LoadFile(cfg.Catalog)
		if err != nil {
			logger.Error("Catalog", err.Error())
			os.Exit(1)
		}
		database.UpsertProducts(products)
		logger.Success("Catalog", fmt.Sprintf("Imported %d products from %s", len(products), cfg.Catalog))
	}
	logger.Stats("products", len(database.ListProducts()))

	client := scraper.NewClient(time.Duration(cfg.ScrapeTimeoutSec) * time.Second)
	srv := api.NewServer(cfg, registry, database, client)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	logger.Server(addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Error("Server", fmt.Sprintf("Failed: %v", err))
		os.Exit(1)
	}
}
