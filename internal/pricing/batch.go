package pricing

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchWorkers bounds batch parallelism when the caller passes 0.
const DefaultBatchWorkers = 8

// BatchFailure records one product that could not be optimized.
type BatchFailure struct {
	ProductName string `json:"product_name"`
	Error       string `json:"error"`
}

// BatchResult collects the outcome of optimizing a list of products.
type BatchResult struct {
	Recommendations []Recommendation `json:"recommendations"`
	Failures        []BatchFailure   `json:"failures"`
}

// SuggestAll optimizes a batch of products in parallel. Every product is
// independent and side-effect-free, so the only coordination is collecting
// results. One product's failure is recorded and skipped; it never aborts the
// batch. Output order matches input order.
func SuggestAll(ctx context.Context, products []Product, observations map[string][]float64,
	classifier *Classifier, params ParamSource, round RoundingPolicy, workers int) BatchResult {

	if workers <= 0 {
		workers = DefaultBatchWorkers
	}

	recs := make([]*Recommendation, len(products))
	var mu sync.Mutex
	var failures []BatchFailure

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, p := range products {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if p.Category == "" && classifier != nil {
				p.Category = classifier.Classify(p.Name)
			}
			rec, err := Suggest(p, observations[p.Name], params.ParamsFor(p.Category), round)
			if err != nil {
				mu.Lock()
				failures = append(failures, BatchFailure{ProductName: p.Name, Error: err.Error()})
				mu.Unlock()
				return nil
			}
			recs[i] = &rec
			return nil
		})
	}
	g.Wait()

	out := BatchResult{Failures: failures}
	out.Recommendations = make([]Recommendation, 0, len(products))
	for _, r := range recs {
		if r != nil {
			out.Recommendations = append(out.Recommendations, *r)
		}
	}
	return out
}
