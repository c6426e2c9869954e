package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"price-scout/internal/pricing"
)

func TestSite_SearchURL(t *testing.T) {
	s := Site{URL: "https://shop.example/", SearchPattern: "/search?q=%s"}
	got := s.SearchURL("steel bottle")
	want := "https://shop.example/search?q=steel+bottle"
	if got != want {
		t.Errorf("SearchURL = %q, want %q", got, want)
	}

	// Empty pattern falls back to the default.
	s = Site{URL: "https://shop.example"}
	if got := s.SearchURL("x"); got != "https://shop.example/search?q=x" {
		t.Errorf("SearchURL with default pattern = %q", got)
	}
}

func TestSite_ExtractPrices_DefaultPattern(t *testing.T) {
	body := `<div class="item"><span class="price">€ 24,95</span></div>
		<div class="item"><span class="price">1.299,95 €</span></div>
		<p>Delivery in 3 days</p>
		<div class="item"><span class="price">$15.00</span></div>`
	s := Site{Name: "shop"}
	raw, err := s.ExtractPrices(body)
	if err != nil {
		t.Fatalf("ExtractPrices: %v", err)
	}
	if len(raw) != 3 {
		t.Fatalf("extracted %d prices, want 3: %v", len(raw), raw)
	}
	// Raw strings stay unvalidated here; the summarizer cleans them.
	summary := pricing.Summarize(raw)
	if summary.Count != 3 {
		t.Errorf("summarized %d prices, want 3 from %v", summary.Count, raw)
	}
}

func TestSite_ExtractPrices_CustomPattern(t *testing.T) {
	s := Site{Name: "api", PricePattern: `"price":\s*([0-9.]+)`}
	raw, err := s.ExtractPrices(`{"items":[{"price": 19.99},{"price": 25.50}]}`)
	if err != nil {
		t.Fatalf("ExtractPrices: %v", err)
	}
	if len(raw) != 2 {
		t.Errorf("extracted %d prices, want 2: %v", len(raw), raw)
	}
}

func TestSite_ExtractPrices_BadPattern(t *testing.T) {
	s := Site{Name: "broken", PricePattern: `([`}
	if _, err := s.ExtractPrices("body"); err == nil {
		t.Error("bad regex did not error")
	}
}

func TestClient_FetchBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("request missing User-Agent")
		}
		w.Write([]byte("<html>€ 9,95</html>"))
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	body, err := c.FetchBody(srv.URL)
	if err != nil {
		t.Fatalf("FetchBody: %v", err)
	}
	if !strings.Contains(body, "9,95") {
		t.Errorf("body = %q, want the served page", body)
	}
}

func TestClient_FetchBody_404IsPermanent(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(404)
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	if _, err := c.FetchBody(srv.URL); err == nil {
		t.Fatal("FetchBody on 404 did not error")
	}
	// Client errors must not be retried.
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1 (no retries on 404)", hits.Load())
	}
}

type memStore struct {
	prices map[string][]float64
}

func (m *memStore) InsertObservations(jobID, productName, siteName string, prices []float64, raw []string) {
	if m.prices == nil {
		m.prices = make(map[string][]float64)
	}
	m.prices[productName] = append(m.prices[productName], prices...)
}

func TestRunner_Run(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<span>€ 24,95</span> <span>€ 26,00</span>`))
	}))
	defer srv.Close()

	store := &memStore{}
	runner := &Runner{Client: NewClient(5 * time.Second), Store: store}

	products := []pricing.Product{
		{Name: "Bottle", CurrentPrice: 25, UnitCost: 9},
		{Name: "Scarf", CurrentPrice: 40, UnitCost: 15},
	}
	sites := []Site{{Name: "shop", URL: srv.URL}}

	var lastDone, lastTotal int
	observed, err := runner.Run(context.Background(), "job-1", products, sites, func(done, total int) {
		lastDone, lastTotal = done, total
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if observed != 4 {
		t.Errorf("observed = %d, want 4 (2 prices x 2 products)", observed)
	}
	if lastDone != 2 || lastTotal != 2 {
		t.Errorf("final progress = %d/%d, want 2/2", lastDone, lastTotal)
	}
	if len(store.prices["Bottle"]) != 2 || len(store.prices["Scarf"]) != 2 {
		t.Errorf("stored prices = %v, want 2 per product", store.prices)
	}
}

func TestRunner_RunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &Runner{Client: NewClient(time.Second)}
	_, err := runner.Run(ctx, "job-1",
		[]pricing.Product{{Name: "x", CurrentPrice: 1}},
		[]Site{{Name: "s", URL: "http://127.0.0.1:0"}}, nil)
	if err == nil {
		t.Error("canceled run did not return an error")
	}
}
