package db

import (
	"log"

	"price-scout/internal/scraper"
)

// InsertSite adds a competitor site and returns its ID.
func (d *DB) InsertSite(s scraper.Site) (int64, error) {
	res, err := d.sql.Exec(
		"INSERT INTO sites (name, url, search_pattern, price_pattern, active) VALUES (?,?,?,?,?)",
		s.Name, s.URL, s.SearchPattern, s.PricePattern, boolToInt(s.Active),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListSites returns configured sites; activeOnly filters to active ones.
func (d *DB) ListSites(activeOnly bool) []scraper.Site {
	query := "SELECT id, name, url, search_pattern, price_pattern, active FROM sites ORDER BY id"
	if activeOnly {
		query = "SELECT id, name, url, search_pattern, price_pattern, active FROM sites WHERE active = 1 ORDER BY id"
	}
	rows, err := d.sql.Query(query)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var sites []scraper.Site
	for rows.Next() {
		var s scraper.Site
		var active int
		rows.Scan(&s.ID, &s.Name, &s.URL, &s.SearchPattern, &s.PricePattern, &active)
		s.Active = active != 0
		sites = append(sites, s)
	}
	return sites
}

// DeleteSite removes a site configuration.
func (d *DB) DeleteSite(id int64) {
	if _, err := d.sql.Exec("DELETE FROM sites WHERE id = ?", id); err != nil {
		log.Printf("[DB] DeleteSite: %v", err)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
