package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"price-scout/internal/catalog"
	"price-scout/internal/export"
	"price-scout/internal/pricing"
	"price-scout/internal/scraper"
)

func (s *Server) handleGetProducts(w http.ResponseWriter, r *http.Request) {
	products := s.db.ListProducts()
	if products == nil {
		products = []pricing.Product{}
	}
	writeJSON(w, products)
}

// handleImportProducts accepts a CSV catalog in the request body.
func (s *Server) handleImportProducts(w http.ResponseWriter, r *http.Request) {
	products, err := catalog.Load(r.Body)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}
	s.db.UpsertProducts(products)
	log.Printf("[API] Imported %d products", len(products))
	writeJSON(w, map[string]int{"imported": len(products)})
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	s.db.DeleteProduct(r.PathValue("name"))
	writeJSON(w, map[string]bool{"success": true})
}

func (s *Server) handleGetSites(w http.ResponseWriter, r *http.Request) {
	sites := s.db.ListSites(false)
	if sites == nil {
		sites = []scraper.Site{}
	}
	writeJSON(w, sites)
}

func (s *Server) handleAddSite(w http.ResponseWriter, r *http.Request) {
	var site scraper.Site
	if err := json.NewDecoder(r.Body).Decode(&site); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	if site.Name == "" || site.URL == "" {
		writeError(w, 400, "name and url required")
		return
	}
	// Reject broken patterns at configuration time, not mid-job.
	if site.SearchPattern != "" && strings.Count(site.SearchPattern, "%s") != 1 {
		writeError(w, 400, "search_pattern must contain exactly one %s placeholder")
		return
	}
	if site.PricePattern != "" {
		if _, err := site.ExtractPrices(""); err != nil {
			writeError(w, 400, err.Error())
			return
		}
	}
	site.Active = true
	id, err := s.db.InsertSite(site)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	site.ID = id
	writeJSON(w, site)
}

func (s *Server) handleDeleteSite(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, 400, "invalid site id")
		return
	}
	s.db.DeleteSite(id)
	writeJSON(w, map[string]bool{"success": true})
}

// handleStartScrape launches the background scraping job. One job at a time;
// a second request while running gets 409.
func (s *Server) handleStartScrape(w http.ResponseWriter, r *http.Request) {
	products := s.db.ListProducts()
	if len(products) == 0 {
		writeError(w, 400, "catalog is empty")
		return
	}
	sites := s.db.ListSites(true)
	if len(sites) == 0 {
		writeError(w, 400, "no active sites configured")
		return
	}

	s.jobMu.Lock()
	if s.job != nil && s.job.Active {
		s.jobMu.Unlock()
		writeError(w, 409, "scraper already running")
		return
	}
	jobID := uuid.NewString()
	s.job = &jobStatus{ID: jobID, Active: true, Message: "running"}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.jobMu.Unlock()

	cfg, _, _ := s.snapshot()
	runner := &scraper.Runner{
		Client: s.client,
		Store:  s.db,
		Delay:  time.Duration(cfg.ScrapeDelayMS) * time.Millisecond,
	}

	s.db.CreateJob(jobID)
	log.Printf("[API] Scrape job %s: %d products x %d sites", jobID, len(products), len(sites))

	go func() {
		defer cancel()
		observed, err := runner.Run(ctx, jobID, products, sites, func(done, total int) {
			s.jobMu.Lock()
			s.job.Progress = done * 100 / total
			s.jobMu.Unlock()
		})

		status, errLog, msg := "completed", "", "finished"
		if err != nil {
			status, errLog, msg = "failed", err.Error(), err.Error()
			log.Printf("[API] Scrape job %s failed: %v", jobID, err)
		} else {
			log.Printf("[API] Scrape job %s complete: %d observations", jobID, observed)
		}
		s.db.FinishJob(jobID, status, errLog, observed)

		s.jobMu.Lock()
		s.job.Active = false
		s.job.Message = msg
		s.jobMu.Unlock()
	}()

	writeJSON(w, map[string]string{"job_id": jobID})
}

func (s *Server) handleScrapeStatus(w http.ResponseWriter, r *http.Request) {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	if s.job == nil {
		writeJSON(w, jobStatus{Message: "never run"})
		return
	}
	writeJSON(w, *s.job)
}

func (s *Server) handleCancelScrape(w http.ResponseWriter, r *http.Request) {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	if s.job == nil || !s.job.Active {
		writeError(w, 400, "no job running")
		return
	}
	s.cancel()
	writeJSON(w, map[string]bool{"success": true})
}

func (s *Server) handleScrapeJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.db.ListJobs(20))
}

type optimizeRequest struct {
	RunABTest bool  `json:"run_ab_test"`
	Seed      int64 `json:"seed"` // 0 = time-based
}

// handleOptimize runs the batch optimizer over the catalog against the latest
// scrape's observations and persists the run.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	products := s.db.ListProducts()
	if len(products) == 0 {
		writeError(w, 400, "catalog is empty")
		return
	}
	observations := s.db.LatestObservations()

	cfg, registry, classifier := s.snapshot()
	round := pricing.RoundingPolicyByName(cfg.RoundingPolicy)

	start := time.Now()
	result := pricing.SuggestAll(r.Context(), products, observations, classifier, registry, round, cfg.BatchWorkers)

	if req.RunABTest {
		seed := req.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		s.attachABTests(&result, products, observations, registry, cfg.ABSampleSize, seed)
	}

	runID := uuid.NewString()
	s.db.InsertRun(runID, result, len(products))
	log.Printf("[API] Optimize run %s: %d recommended, %d failed in %dms",
		runID, len(result.Recommendations), len(result.Failures), time.Since(start).Milliseconds())

	writeJSON(w, map[string]interface{}{
		"run_id":          runID,
		"recommendations": result.Recommendations,
		"failures":        result.Failures,
	})
}

// attachABTests validates each recommendation with a simulated A/B test.
// Seeds are offset per product so arms stay independent but reproducible.
func (s *Server) attachABTests(result *pricing.BatchResult, products []pricing.Product,
	observations map[string][]float64, registry pricing.ParamSource, sampleSize int, seed int64) {

	costs := make(map[string]float64, len(products))
	for _, p := range products {
		costs[p.Name] = p.UnitCost
	}

	for i := range result.Recommendations {
		rec := &result.Recommendations[i]
		anchor := rec.AvgCompetitorPrice
		if !rec.MarketAnchored {
			anchor = rec.CurrentPrice
		}
		ab, err := pricing.RunABTest(rec.CurrentPrice, rec.RecommendedPrice, anchor,
			registry.ParamsFor(rec.Category), costs[rec.ProductName], sampleSize, seed+int64(i))
		if err != nil {
			log.Printf("[API] A/B test %s: %v", rec.ProductName, err)
			continue
		}
		p := ab.PValue
		rec.ABPValue = &p
	}
}

func (s *Server) handleGetRuns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.db.ListRuns(20))
}

func (s *Server) handleRunRecommendations(w http.ResponseWriter, r *http.Request) {
	recs := s.db.GetRecommendations(r.PathValue("id"))
	if recs == nil {
		recs = []pricing.Recommendation{}
	}
	writeJSON(w, recs)
}

func (s *Server) handleLatestRecommendations(w http.ResponseWriter, r *http.Request) {
	runID := s.db.LatestRunID()
	if runID == "" {
		writeJSON(w, []pricing.Recommendation{})
		return
	}
	recs := s.db.GetRecommendations(runID)
	writeJSON(w, recs)
}

type abTestRequest struct {
	ProductName      string  `json:"product_name"`
	RecommendedPrice float64 `json:"recommended_price"`
	SampleSize       int     `json:"sample_size"` // 0 = config default
	Seed             int64   `json:"seed"`        // 0 = time-based
}

// handleABTest runs a one-off simulated A/B test for a single product.
func (s *Server) handleABTest(w http.ResponseWriter, r *http.Request) {
	var req abTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}

	var product *pricing.Product
	for _, p := range s.db.ListProducts() {
		if p.Name == req.ProductName {
			product = &p
			break
		}
	}
	if product == nil {
		writeError(w, 404, fmt.Sprintf("product %q not found", req.ProductName))
		return
	}

	cfg, registry, classifier := s.snapshot()
	category := product.Category
	if category == "" {
		category = classifier.Classify(product.Name)
	}

	summary := pricing.SummarizeValues(s.db.LatestObservations()[product.Name])
	anchor := product.CurrentPrice
	if summary.Count > 0 {
		anchor = summary.Mean
	}

	sampleSize := req.SampleSize
	if sampleSize <= 0 {
		sampleSize = cfg.ABSampleSize
	}
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	result, err := pricing.RunABTest(product.CurrentPrice, req.RecommendedPrice, anchor,
		registry.ParamsFor(category), product.UnitCost, sampleSize, seed)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}
	writeJSON(w, result)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	recs, ok := s.latestRecsForExport(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="recommendations.csv"`)
	if err := export.WriteCSV(w, recs); err != nil {
		log.Printf("[API] CSV export: %v", err)
	}
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	recs, ok := s.latestRecsForExport(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="recommendations.xlsx"`)
	if err := export.WriteXLSX(w, recs); err != nil {
		log.Printf("[API] XLSX export: %v", err)
	}
}

type sheetsExportRequest struct {
	SheetName string `json:"sheet_name"`
}

func (s *Server) handleExportSheets(w http.ResponseWriter, r *http.Request) {
	var req sheetsExportRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	if req.SheetName == "" {
		req.SheetName = "Recommendations"
	}

	recs, ok := s.latestRecsForExport(w)
	if !ok {
		return
	}

	cfg, _, _ := s.snapshot()
	uploader, err := export.NewSheetsUploader(r.Context(),
		cfg.SheetsCredentialsJSON, cfg.SheetsCredentialsFile, cfg.SpreadsheetID)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}
	rows, err := uploader.Upload(r.Context(), req.SheetName, recs)
	if err != nil {
		writeError(w, 502, err.Error())
		return
	}
	writeJSON(w, map[string]int{"rows": rows})
}

func (s *Server) latestRecsForExport(w http.ResponseWriter) ([]pricing.Recommendation, bool) {
	runID := s.db.LatestRunID()
	if runID == "" {
		writeError(w, 404, "no optimization run yet")
		return nil, false
	}
	return s.db.GetRecommendations(runID), true
}
