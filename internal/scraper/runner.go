package scraper

import (
	"context"
	"fmt"
	"time"

	"price-scout/internal/logger"
	"price-scout/internal/pricing"
)

// ObservationStore receives cleaned observations as a job progresses.
type ObservationStore interface {
	InsertObservations(jobID, productName, siteName string, prices []float64, raw []string)
}

// Runner executes one scraping job: every active site is searched for every
// catalog product, extracted prices are cleaned and stored.
type Runner struct {
	Client *Client
	Store  ObservationStore
	// Delay is the pause between requests to the same site.
	Delay time.Duration
}

// Run walks products × sites. Failures on individual pages are logged and
// skipped; the job only fails as a whole when the context is canceled.
// progress is called after each (product, site) pair with (done, total).
func (r *Runner) Run(ctx context.Context, jobID string, products []pricing.Product, sites []Site, progress func(done, total int)) (int, error) {
	total := len(products) * len(sites)
	done := 0
	observed := 0

	for _, site := range sites {
		for _, product := range products {
			if err := ctx.Err(); err != nil {
				return observed, err
			}

			url := site.SearchURL(product.Name)
			body, err := r.Client.FetchBody(url)
			if err != nil {
				logger.Warn("Scrape", fmt.Sprintf("%s: %v", site.Name, err))
			} else {
				raw, err := site.ExtractPrices(body)
				if err != nil {
					logger.Warn("Scrape", err.Error())
				} else if len(raw) > 0 {
					summary := pricing.Summarize(raw)
					if summary.Count > 0 && r.Store != nil {
						r.Store.InsertObservations(jobID, product.Name, site.Name, summary.Cleaned, raw)
						observed += summary.Count
					}
				}
			}

			done++
			if progress != nil {
				progress(done, total)
			}
			if r.Delay > 0 && done < total {
				select {
				case <-time.After(r.Delay):
				case <-ctx.Done():
					return observed, ctx.Err()
				}
			}
		}
	}
	return observed, nil
}
