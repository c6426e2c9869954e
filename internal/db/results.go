package db

import (
	"database/sql"
	"log"
	"time"

	"price-scout/internal/pricing"
)

// Run summarizes one optimization run over the catalog.
type Run struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	Products    int    `json:"products"`
	Recommended int    `json:"recommended"`
	Failed      int    `json:"failed"`
}

// InsertRun records a run and bulk-inserts its recommendations.
func (d *DB) InsertRun(runID string, result pricing.BatchResult, totalProducts int) {
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := d.sql.Exec(
		"INSERT INTO runs (id, timestamp, products, recommended, failed) VALUES (?,?,?,?,?)",
		runID, now, totalProducts, len(result.Recommendations), len(result.Failures),
	); err != nil {
		log.Printf("[DB] InsertRun: %v", err)
		return
	}

	if len(result.Recommendations) == 0 {
		return
	}

	tx, err := d.sql.Begin()
	if err != nil {
		log.Printf("[DB] InsertRun begin tx: %v", err)
		return
	}

	stmt, err := tx.Prepare(`INSERT INTO recommendations (
		run_id, product_name, category, current_price, recommended_price,
		avg_competitor_price, competitor_count,
		profit_current, profit_recommended, profit_delta, price_delta_pct,
		market_anchored, margin_pinned, ab_p_value
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		log.Printf("[DB] InsertRun prepare: %v", err)
		return
	}
	defer stmt.Close()

	for _, r := range result.Recommendations {
		var pValue sql.NullFloat64
		if r.ABPValue != nil {
			pValue = sql.NullFloat64{Float64: *r.ABPValue, Valid: true}
		}
		stmt.Exec(
			runID, r.ProductName, r.Category, r.CurrentPrice, r.RecommendedPrice,
			r.AvgCompetitorPrice, r.CompetitorCount,
			r.ProfitCurrent, r.ProfitRecommended, r.ProfitDelta, r.PriceDeltaPct,
			boolToInt(r.MarketAnchored), boolToInt(r.MarginPinned), pValue,
		)
	}

	if err := tx.Commit(); err != nil {
		log.Printf("[DB] InsertRun commit: %v", err)
	}
}

// ListRuns returns recent runs, newest first.
func (d *DB) ListRuns(limit int) []Run {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.sql.Query(
		"SELECT id, timestamp, products, recommended, failed FROM runs ORDER BY timestamp DESC LIMIT ?", limit)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		rows.Scan(&r.ID, &r.Timestamp, &r.Products, &r.Recommended, &r.Failed)
		runs = append(runs, r)
	}
	return runs
}

// LatestRunID returns the most recent run's ID, or "" when none exists.
func (d *DB) LatestRunID() string {
	var id string
	d.sql.QueryRow("SELECT id FROM runs ORDER BY timestamp DESC LIMIT 1").Scan(&id)
	return id
}

// GetRecommendations retrieves a run's recommendations.
func (d *DB) GetRecommendations(runID string) []pricing.Recommendation {
	rows, err := d.sql.Query(`
		SELECT product_name, category, current_price, recommended_price,
			avg_competitor_price, competitor_count,
			profit_current, profit_recommended, profit_delta, price_delta_pct,
			market_anchored, margin_pinned, ab_p_value
		FROM recommendations WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var recs []pricing.Recommendation
	for rows.Next() {
		var r pricing.Recommendation
		var anchored, pinned int
		var pValue sql.NullFloat64
		rows.Scan(
			&r.ProductName, &r.Category, &r.CurrentPrice, &r.RecommendedPrice,
			&r.AvgCompetitorPrice, &r.CompetitorCount,
			&r.ProfitCurrent, &r.ProfitRecommended, &r.ProfitDelta, &r.PriceDeltaPct,
			&anchored, &pinned, &pValue,
		)
		r.MarketAnchored = anchored != 0
		r.MarginPinned = pinned != 0
		if pValue.Valid {
			v := pValue.Float64
			r.ABPValue = &v
		}
		recs = append(recs, r)
	}
	return recs
}
