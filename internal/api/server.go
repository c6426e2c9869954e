// Package api exposes the dashboard HTTP API that connects the catalog,
// scraper, optimization core, and database.
package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"price-scout/internal/config"
	"price-scout/internal/db"
	"price-scout/internal/pricing"
	"price-scout/internal/scraper"
)

// Server is the HTTP API server.
type Server struct {
	db     *db.DB
	client *scraper.Client

	mu         sync.RWMutex
	cfg        *config.Config
	registry   *config.Registry
	classifier *pricing.Classifier

	// Scrape job state: one job at a time, mirrored to the DB.
	jobMu  sync.Mutex
	job    *jobStatus
	cancel func()
}

// jobStatus is the in-memory progress view of the current or last scrape job.
type jobStatus struct {
	ID       string `json:"id"`
	Active   bool   `json:"active"`
	Progress int    `json:"progress"` // percent
	Message  string `json:"message"`
}

// NewServer creates a Server with the given config, registry, database, and
// scraping client.
func NewServer(cfg *config.Config, registry *config.Registry, database *db.DB, client *scraper.Client) *Server {
	return &Server{
		db:         database,
		client:     client,
		cfg:        cfg,
		registry:   registry,
		classifier: pricing.NewClassifier(registry.Rules()),
	}
}

// Handler returns the HTTP handler with all API routes and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("POST /api/config", s.handleSetConfig)
	mux.HandleFunc("GET /api/categories", s.handleGetCategories)
	mux.HandleFunc("POST /api/categories", s.handleSetCategories)
	mux.HandleFunc("GET /api/products", s.handleGetProducts)
	mux.HandleFunc("POST /api/products/import", s.handleImportProducts)
	mux.HandleFunc("DELETE /api/products/{name}", s.handleDeleteProduct)
	mux.HandleFunc("GET /api/sites", s.handleGetSites)
	mux.HandleFunc("POST /api/sites", s.handleAddSite)
	mux.HandleFunc("DELETE /api/sites/{id}", s.handleDeleteSite)
	mux.HandleFunc("POST /api/scrape", s.handleStartScrape)
	mux.HandleFunc("GET /api/scrape/status", s.handleScrapeStatus)
	mux.HandleFunc("POST /api/scrape/cancel", s.handleCancelScrape)
	mux.HandleFunc("GET /api/scrape/jobs", s.handleScrapeJobs)
	mux.HandleFunc("POST /api/optimize", s.handleOptimize)
	mux.HandleFunc("GET /api/runs", s.handleGetRuns)
	mux.HandleFunc("GET /api/runs/{id}/recommendations", s.handleRunRecommendations)
	mux.HandleFunc("GET /api/recommendations", s.handleLatestRecommendations)
	mux.HandleFunc("POST /api/abtest", s.handleABTest)
	mux.HandleFunc("GET /api/export/csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/export/xlsx", s.handleExportXLSX)
	mux.HandleFunc("POST /api/export/sheets", s.handleExportSheets)
	return corsMiddleware(mux)
}

// snapshot returns the config, registry, and classifier under one read lock
// so a run never mixes parameter generations.
func (s *Server) snapshot() (*config.Config, *config.Registry, *pricing.Classifier) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.registry, s.classifier
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.jobMu.Lock()
	scraping := s.job != nil && s.job.Active
	s.jobMu.Unlock()

	writeJSON(w, map[string]interface{}{
		"products":   len(s.db.ListProducts()),
		"sites":      len(s.db.ListSites(false)),
		"latest_run": s.db.LatestRunID(),
		"scraping":   scraping,
	})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, _, _ := s.snapshot()
	writeJSON(w, cfg)
}

func (s *Server) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, _, _ := s.snapshot()
	updated := *cfg
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	if updated.ABSampleSize < 2 {
		writeError(w, 400, "ab_sample_size must be at least 2")
		return
	}

	s.mu.Lock()
	s.cfg = &updated
	s.mu.Unlock()
	s.db.SaveConfig(&updated)
	writeJSON(w, &updated)
}

func (s *Server) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	_, registry, _ := s.snapshot()
	writeJSON(w, registry.Categories())
}

// handleSetCategories replaces the category registry. This is the hot-reload
// path: in-flight runs keep the snapshot they started with.
func (s *Server) handleSetCategories(w http.ResponseWriter, r *http.Request) {
	var categories []config.Category
	if err := json.NewDecoder(r.Body).Decode(&categories); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	for _, c := range categories {
		if c.Name == "" {
			writeError(w, 400, "category name required")
			return
		}
	}

	registry := config.NewRegistry(categories)
	if err := s.db.SaveCategories(registry.Categories()); err != nil {
		writeError(w, 500, err.Error())
		return
	}

	s.mu.Lock()
	s.registry = registry
	s.classifier = pricing.NewClassifier(registry.Rules())
	s.mu.Unlock()
	writeJSON(w, registry.Categories())
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(204)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
