package pricing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const (
	// gridSteps is the number of coarse evaluation steps across the feasible
	// interval. With refinement this resolves prices to ~interval/4000.
	gridSteps = 200
	// refineSteps is the number of fine steps on each side of the best coarse
	// grid point.
	refineSteps = 20
)

// RoundingPolicy converts an optimal raw price to catalog granularity.
// Policies are named and swappable; the optimizer re-clamps the rounded price
// so it never leaves the feasible interval.
type RoundingPolicy func(price float64) float64

// RoundCents rounds to the nearest cent.
var RoundCents RoundingPolicy = func(price float64) float64 {
	f, _ := decimal.NewFromFloat(price).Round(2).Float64()
	return f
}

// RoundPsychological rounds to retail charm prices: x.99 below 10, x.90 from
// 10 upward.
var RoundPsychological RoundingPolicy = func(price float64) float64 {
	whole := decimal.NewFromFloat(price).Round(0)
	ending := decimal.NewFromFloat(0.01)
	if price >= 10 {
		ending = decimal.NewFromFloat(0.10)
	}
	f, _ := whole.Sub(ending).Float64()
	if f <= 0 {
		return RoundCents(price)
	}
	return f
}

// RoundingPolicyByName resolves a configured policy name.
// Unknown names fall back to cent rounding.
func RoundingPolicyByName(name string) RoundingPolicy {
	if name == "psychological" {
		return RoundPsychological
	}
	return RoundCents
}

// Suggest computes the profit-maximizing price for a product given its
// competitor observations and category parameters.
//
// The feasible interval is [cur*(1-maxDec), cur*(1+maxInc)], floored by the
// margin constraint unitCost*(1+minMarginPct). When the floor exceeds the
// interval's upper bound, the price pins to the floor and MarginPinned is set:
// the margin constraint wins over the bounded-change cap. That precedence is a
// policy decision (see DESIGN.md), surfaced rather than silently applied.
func Suggest(p Product, observations []float64, params Params, round RoundingPolicy) (Recommendation, error) {
	if p.CurrentPrice <= 0 || math.IsNaN(p.CurrentPrice) {
		return Recommendation{}, fmt.Errorf("%w: current price %.4f for %q", ErrInvalidInput, p.CurrentPrice, p.Name)
	}
	if p.UnitCost < 0 || math.IsNaN(p.UnitCost) {
		return Recommendation{}, fmt.Errorf("%w: unit cost %.4f for %q", ErrInvalidInput, p.UnitCost, p.Name)
	}
	if round == nil {
		round = RoundCents
	}

	// Market anchor: competitor mean, or current price when no data survived
	// cleaning (documented fallback, not an error).
	summary := SummarizeValues(observations)
	anchor := p.CurrentPrice
	anchored := false
	if summary.Count > 0 {
		anchor = summary.Mean
		anchored = true
	}

	rec := Recommendation{
		ProductName:        p.Name,
		Category:           p.Category,
		CurrentPrice:       p.CurrentPrice,
		AvgCompetitorPrice: summary.Mean,
		CompetitorCount:    summary.Count,
		MarketAnchored:     anchored,
	}

	lo := p.CurrentPrice * (1 - params.MaxDecreasePct)
	hi := p.CurrentPrice * (1 + params.MaxIncreasePct)
	floor := p.UnitCost * (1 + params.MinMarginPct)

	var price float64
	switch {
	case floor > hi:
		// Margin floor conflicts with the bounded-change cap: pin to the
		// floor exactly and flag it.
		price = floor
		rec.MarginPinned = true
	default:
		if lo < floor {
			lo = floor
		}
		best, err := searchInterval(lo, hi, anchor, p.UnitCost, params)
		if err != nil {
			return Recommendation{}, err
		}
		price = round(best)
		// Rounding must not escape the feasible interval.
		if price < lo {
			price = lo
		}
		if price > hi {
			price = hi
		}
	}
	rec.RecommendedPrice = price

	if err := fillProfits(&rec, anchor, p.UnitCost, params); err != nil {
		return Recommendation{}, err
	}
	return rec, nil
}

// searchInterval runs a deterministic coarse grid search over [lo, hi]
// followed by one refinement pass around the best coarse point. Ties resolve
// to the lower price.
func searchInterval(lo, hi, anchor, unitCost float64, params Params) (float64, error) {
	if hi <= lo {
		return lo, nil
	}

	step := (hi - lo) / gridSteps
	best, bestProfit, err := scanRange(lo, hi, step, anchor, unitCost, params)
	if err != nil {
		return 0, err
	}

	// Refine around the best coarse point.
	fineLo := math.Max(lo, best-step)
	fineHi := math.Min(hi, best+step)
	fineStep := step / refineSteps
	fineBest, fineProfit, err := scanRange(fineLo, fineHi, fineStep, anchor, unitCost, params)
	if err != nil {
		return 0, err
	}
	if fineProfit > bestProfit {
		best = fineBest
	}
	return best, nil
}

// scanRange evaluates simulated profit at fixed increments and returns the
// lowest price achieving the maximum.
func scanRange(lo, hi, step, anchor, unitCost float64, params Params) (float64, float64, error) {
	best := lo
	bestProfit := math.Inf(-1)
	for price := lo; price <= hi+step/2; price += step {
		if price > hi {
			price = hi
		}
		profit, err := profitAt(price, anchor, unitCost, params)
		if err != nil {
			return 0, 0, err
		}
		if profit > bestProfit {
			best = price
			bestProfit = profit
		}
	}
	return best, bestProfit, nil
}

func profitAt(price, anchor, unitCost float64, params Params) (float64, error) {
	units, err := PredictedUnits(price, anchor, params.Elasticity, params.Saturation)
	if err != nil {
		return 0, err
	}
	return SimulateProfit(price, unitCost, units)
}

// fillProfits computes the profit comparison fields on a recommendation.
func fillProfits(rec *Recommendation, anchor, unitCost float64, params Params) error {
	cur, err := profitAt(rec.CurrentPrice, anchor, unitCost, params)
	if err != nil {
		return err
	}
	sug, err := profitAt(rec.RecommendedPrice, anchor, unitCost, params)
	if err != nil {
		return err
	}
	rec.ProfitCurrent = cur
	rec.ProfitRecommended = sug
	rec.ProfitDelta = sug - cur
	rec.PriceDeltaPct = (rec.RecommendedPrice - rec.CurrentPrice) / rec.CurrentPrice * 100
	return nil
}
