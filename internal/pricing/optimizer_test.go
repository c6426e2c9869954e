package pricing

import (
	"errors"
	"math"
	"testing"
)

func exampleParams() Params {
	return Params{
		Elasticity:     1.5,
		Saturation:     2.0,
		MinMarginPct:   0.2,
		MaxIncreasePct: 0.3,
		MaxDecreasePct: 0.25,
	}
}

func TestSuggest_WorkedExample(t *testing.T) {
	// cur=20, cost=8, competitors [18,19,21,22] (mean 20).
	// Feasible interval [15, 26], margin floor 8*1.2 = 9.60.
	// Unconstrained optimum of (p-8) * 100*(20/p)^1.5 is p = cost*e/(e-1) = 24.
	p := Product{Name: "Bamboo Sunglasses", Category: "Sunglasses", CurrentPrice: 20, UnitCost: 8}
	rec, err := Suggest(p, []float64{18, 19, 21, 22}, exampleParams(), RoundCents)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}

	if math.Abs(rec.AvgCompetitorPrice-20) > 1e-9 {
		t.Errorf("AvgCompetitorPrice = %v, want 20", rec.AvgCompetitorPrice)
	}
	if rec.CompetitorCount != 4 {
		t.Errorf("CompetitorCount = %d, want 4", rec.CompetitorCount)
	}
	if !rec.MarketAnchored {
		t.Error("MarketAnchored = false, want true")
	}
	if rec.MarginPinned {
		t.Error("MarginPinned = true, want false")
	}
	if rec.RecommendedPrice < 15 || rec.RecommendedPrice > 26 {
		t.Errorf("RecommendedPrice = %v, outside [15, 26]", rec.RecommendedPrice)
	}
	if rec.RecommendedPrice < 9.60 {
		t.Errorf("RecommendedPrice = %v, below margin floor 9.60", rec.RecommendedPrice)
	}
	if math.Abs(rec.RecommendedPrice-24) > 0.1 {
		t.Errorf("RecommendedPrice = %v, want ~24 (analytic optimum)", rec.RecommendedPrice)
	}
	if rec.ProfitDelta <= 0 {
		t.Errorf("ProfitDelta = %v, optimizer should not lose profit vs current", rec.ProfitDelta)
	}
}

func TestSuggest_BoundsInvariant(t *testing.T) {
	params := exampleParams()
	products := []Product{
		{Name: "a", CurrentPrice: 10, UnitCost: 4},
		{Name: "b", CurrentPrice: 99.99, UnitCost: 1},
		{Name: "c", CurrentPrice: 5, UnitCost: 0},
		{Name: "d", CurrentPrice: 250, UnitCost: 200},
	}
	for _, p := range products {
		rec, err := Suggest(p, []float64{p.CurrentPrice * 0.9, p.CurrentPrice * 1.1}, params, RoundCents)
		if err != nil {
			t.Fatalf("Suggest(%s): %v", p.Name, err)
		}
		lo := p.CurrentPrice * (1 - params.MaxDecreasePct)
		hi := p.CurrentPrice * (1 + params.MaxIncreasePct)
		floor := p.UnitCost * (1 + params.MinMarginPct)
		if rec.MarginPinned {
			if math.Abs(rec.RecommendedPrice-floor) > 1e-9 {
				t.Errorf("%s: pinned price = %v, want floor %v exactly", p.Name, rec.RecommendedPrice, floor)
			}
			continue
		}
		if rec.RecommendedPrice < lo-1e-9 || rec.RecommendedPrice > hi+1e-9 {
			t.Errorf("%s: price %v outside [%v, %v]", p.Name, rec.RecommendedPrice, lo, hi)
		}
		if rec.RecommendedPrice < floor-1e-9 {
			t.Errorf("%s: price %v below margin floor %v", p.Name, rec.RecommendedPrice, floor)
		}
	}
}

func TestSuggest_MarginFloorWinsOverCap(t *testing.T) {
	// cur=10 → interval [7.50, 13], floor = 12*1.2 = 14.40 > 13.
	// Margin takes priority: price pins to the floor and the condition is flagged.
	p := Product{Name: "loss-maker", CurrentPrice: 10, UnitCost: 12}
	rec, err := Suggest(p, nil, exampleParams(), RoundCents)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if !rec.MarginPinned {
		t.Fatal("MarginPinned = false, want true")
	}
	if math.Abs(rec.RecommendedPrice-14.40) > 1e-9 {
		t.Errorf("RecommendedPrice = %v, want margin floor 14.40 exactly", rec.RecommendedPrice)
	}
}

func TestSuggest_ElasticityMonotonicity(t *testing.T) {
	// Raising elasticity must never raise the optimal price.
	p := Product{Name: "x", CurrentPrice: 20, UnitCost: 8}
	obs := []float64{18, 19, 21, 22}
	prev := math.Inf(1)
	for _, e := range []float64{1.2, 1.5, 2.0, 3.0, 5.0} {
		params := exampleParams()
		params.Elasticity = e
		rec, err := Suggest(p, obs, params, RoundCents)
		if err != nil {
			t.Fatalf("Suggest(e=%v): %v", e, err)
		}
		if rec.RecommendedPrice > prev+1e-9 {
			t.Errorf("price rose from %v to %v as elasticity rose to %v", prev, rec.RecommendedPrice, e)
		}
		prev = rec.RecommendedPrice
	}
}

func TestSuggest_Deterministic(t *testing.T) {
	p := Product{Name: "x", CurrentPrice: 37.50, UnitCost: 14.25}
	obs := []float64{33, 39.95, 41.20}
	first, err := Suggest(p, obs, exampleParams(), RoundCents)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Suggest(p, obs, exampleParams(), RoundCents)
		if err != nil {
			t.Fatalf("Suggest: %v", err)
		}
		if again.RecommendedPrice != first.RecommendedPrice {
			t.Fatalf("price changed between identical calls: %v vs %v", again.RecommendedPrice, first.RecommendedPrice)
		}
	}
}

func TestSuggest_EmptyCompetitorsFallsBackToCurrent(t *testing.T) {
	p := Product{Name: "x", CurrentPrice: 10, UnitCost: 4}
	rec, err := Suggest(p, nil, exampleParams(), RoundCents)
	if err != nil {
		t.Fatalf("Suggest with no market data must not error: %v", err)
	}
	if rec.MarketAnchored {
		t.Error("MarketAnchored = true, want false (fallback must be observable)")
	}
	if rec.CompetitorCount != 0 || rec.AvgCompetitorPrice != 0 {
		t.Errorf("competitor fields = (%d, %v), want (0, 0)", rec.CompetitorCount, rec.AvgCompetitorPrice)
	}
	lo, hi := 7.5, 13.0
	if rec.RecommendedPrice < lo || rec.RecommendedPrice > hi {
		t.Errorf("RecommendedPrice = %v, outside [%v, %v]", rec.RecommendedPrice, lo, hi)
	}
}

func TestSuggest_InvalidInputs(t *testing.T) {
	params := exampleParams()
	if _, err := Suggest(Product{Name: "x", CurrentPrice: 0, UnitCost: 4}, nil, params, RoundCents); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero current price err = %v, want ErrInvalidInput", err)
	}
	if _, err := Suggest(Product{Name: "x", CurrentPrice: -3, UnitCost: 4}, nil, params, RoundCents); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative current price err = %v, want ErrInvalidInput", err)
	}
	if _, err := Suggest(Product{Name: "x", CurrentPrice: 10, UnitCost: -1}, nil, params, RoundCents); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative unit cost err = %v, want ErrInvalidInput", err)
	}
}

func TestRoundingPolicies(t *testing.T) {
	cases := []struct {
		policy RoundingPolicy
		in     float64
		want   float64
	}{
		{RoundCents, 23.996, 24.00},
		{RoundCents, 23.994, 23.99},
		{RoundPsychological, 7.31, 6.99},  // rounds toward 7, charm .99
		{RoundPsychological, 7.80, 7.99},  // rounds toward 8, charm .99
		{RoundPsychological, 23.40, 22.90}, // >= 10 uses .90 endings
		{RoundPsychological, 23.60, 23.90},
	}
	for _, tc := range cases {
		if got := tc.policy(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("round(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSuggest_PsychologicalRoundingStaysInBounds(t *testing.T) {
	p := Product{Name: "x", CurrentPrice: 20, UnitCost: 8}
	rec, err := Suggest(p, []float64{18, 19, 21, 22}, exampleParams(), RoundPsychological)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if rec.RecommendedPrice < 15 || rec.RecommendedPrice > 26 {
		t.Errorf("rounded price %v escaped [15, 26]", rec.RecommendedPrice)
	}
	// 24 with .90 charm pricing reads 23.90.
	if math.Abs(rec.RecommendedPrice-23.90) > 1e-9 {
		t.Errorf("RecommendedPrice = %v, want 23.90", rec.RecommendedPrice)
	}
}
