package db

import (
	"log"
	"time"
)

// ScrapeJob is one persisted scraping job record.
type ScrapeJob struct {
	ID            string `json:"id"`
	Status        string `json:"status"` // pending | running | completed | failed
	StartedAt     string `json:"started_at"`
	CompletedAt   string `json:"completed_at,omitempty"`
	ErrorLog      string `json:"error_log,omitempty"`
	TotalProducts int    `json:"total_products"`
}

// CreateJob inserts a new running job.
func (d *DB) CreateJob(id string) {
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := d.sql.Exec(
		"INSERT INTO scrape_jobs (id, status, started_at) VALUES (?, 'running', ?)", id, now,
	); err != nil {
		log.Printf("[DB] CreateJob: %v", err)
	}
}

// FinishJob marks a job completed or failed.
func (d *DB) FinishJob(id, status, errorLog string, totalProducts int) {
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := d.sql.Exec(
		"UPDATE scrape_jobs SET status = ?, completed_at = ?, error_log = ?, total_products = ? WHERE id = ?",
		status, now, errorLog, totalProducts, id,
	); err != nil {
		log.Printf("[DB] FinishJob: %v", err)
	}
}

// ListJobs returns recent jobs, newest first.
func (d *DB) ListJobs(limit int) []ScrapeJob {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.sql.Query(`
		SELECT id, status, started_at, COALESCE(completed_at, ''), COALESCE(error_log, ''), total_products
		FROM scrape_jobs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var jobs []ScrapeJob
	for rows.Next() {
		var j ScrapeJob
		rows.Scan(&j.ID, &j.Status, &j.StartedAt, &j.CompletedAt, &j.ErrorLog, &j.TotalProducts)
		jobs = append(jobs, j)
	}
	return jobs
}

// InsertObservations bulk-inserts cleaned competitor observations for a job.
func (d *DB) InsertObservations(jobID, productName, siteName string, prices []float64, raw []string) {
	if len(prices) == 0 {
		return
	}

	tx, err := d.sql.Begin()
	if err != nil {
		log.Printf("[DB] InsertObservations begin tx: %v", err)
		return
	}

	stmt, err := tx.Prepare(
		"INSERT INTO observations (job_id, product_name, site_name, price, raw, scraped_at) VALUES (?,?,?,?,?,?)")
	if err != nil {
		tx.Rollback()
		log.Printf("[DB] InsertObservations prepare: %v", err)
		return
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for i, price := range prices {
		r := ""
		if i < len(raw) {
			r = raw[i]
		}
		stmt.Exec(jobID, productName, siteName, price, r, now)
	}

	if err := tx.Commit(); err != nil {
		log.Printf("[DB] InsertObservations commit: %v", err)
	}
}

// LatestObservations returns the most recent job's observations grouped by
// product. Falls back to an empty map when no job has run.
func (d *DB) LatestObservations() map[string][]float64 {
	var jobID string
	err := d.sql.QueryRow(
		"SELECT id FROM scrape_jobs WHERE status = 'completed' ORDER BY started_at DESC LIMIT 1",
	).Scan(&jobID)
	if err != nil {
		return map[string][]float64{}
	}
	return d.ObservationsByJob(jobID)
}

// ObservationsByJob returns a job's observations grouped by product.
func (d *DB) ObservationsByJob(jobID string) map[string][]float64 {
	out := make(map[string][]float64)
	rows, err := d.sql.Query(
		"SELECT product_name, price FROM observations WHERE job_id = ? ORDER BY id", jobID)
	if err != nil {
		return out
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var price float64
		rows.Scan(&name, &price)
		out[name] = append(out[name], price)
	}
	return out
}
