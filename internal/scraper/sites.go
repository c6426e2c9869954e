package scraper

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// defaultPricePattern matches currency-formatted amounts like "€ 24,95",
// "$1,299.95" or "19.99". Sites with predictable markup can override it.
const defaultPricePattern = `[€$£]\s?\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{1,2})?|\d{1,3}(?:[.,]\d{3})*[.,]\d{2}\s?[€$£]?`

// maxPricesPerPage caps extraction so one listing page cannot flood a
// product's observation set.
const maxPricesPerPage = 50

// Site is one configured competitor price source.
type Site struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	URL           string `json:"url"`
	SearchPattern string `json:"search_pattern"` // e.g. "/search?q=%s"
	PricePattern  string `json:"price_pattern"`  // regex; "" = defaultPricePattern
	Active        bool   `json:"active"`
}

// SearchURL builds the listing URL for a search term.
func (s Site) SearchURL(term string) string {
	pattern := s.SearchPattern
	if pattern == "" {
		pattern = "/search?q=%s"
	}
	return strings.TrimRight(s.URL, "/") + fmt.Sprintf(pattern, url.QueryEscape(term))
}

// ExtractPrices pulls raw price strings out of a fetched page body.
// The strings are unvalidated; cleaning is the optimization core's job.
func (s Site) ExtractPrices(body string) ([]string, error) {
	pattern := s.PricePattern
	if pattern == "" {
		pattern = defaultPricePattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("site %s: price pattern: %w", s.Name, err)
	}
	matches := re.FindAllString(body, maxPricesPerPage)
	return matches, nil
}
