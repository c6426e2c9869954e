// Package scraper fetches raw competitor price lists from configured sites.
// It owns transport concerns only; price cleaning stays in internal/pricing.
package scraper

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/singleflight"
)

const (
	// maxConcurrentFetches bounds in-flight requests across all sites.
	maxConcurrentFetches = 10
	// maxFetchRetries caps exponential-backoff retries per URL.
	maxFetchRetries = 3
	// maxBodyBytes guards against pathological response sizes.
	maxBodyBytes = 4 << 20
)

// Client is a rate-limited HTTP client for competitor sites.
type Client struct {
	http  *http.Client
	sem   chan struct{}
	group singleflight.Group
}

// NewClient creates a scraping client with the given per-request timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		sem:  make(chan struct{}, maxConcurrentFetches),
	}
}

// FetchBody fetches a URL with retries. Concurrent fetches of the same URL
// are deduplicated, so a search term shared by several products costs one
// request.
func (c *Client) FetchBody(url string) (string, error) {
	v, err, _ := c.group.Do(url, func() (interface{}, error) {
		return c.fetchOnce(url)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) fetchOnce(url string) (string, error) {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	var body string
	operation := func() error {
		req, err := http.NewRequest("GET", url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", "price-scout/1.0")
		req.Header.Set("Accept", "text/html,application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == 429 || resp.StatusCode >= 500 {
			return fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
		}
		if resp.StatusCode != 200 {
			return backoff.Permanent(fmt.Errorf("fetch %s: status %d", url, resp.StatusCode))
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return err
		}
		body = string(data)
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxFetchRetries)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}
	return body, nil
}
