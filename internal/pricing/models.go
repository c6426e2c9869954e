// Package pricing implements the price optimization core: demand modelling,
// competitor price summarizing, grid-search price suggestion, and the
// simulated A/B validation of a suggestion.
package pricing

import "errors"

var (
	// ErrInvalidInput is returned for unusable catalog inputs
	// (non-positive current price, negative unit cost, bad sample size).
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidPrice is returned when a non-positive candidate price reaches
	// the demand model. Interval construction prevents this; seeing it means
	// a bounds defect, so it is never clamped away.
	ErrInvalidPrice = errors.New("invalid price")
)

// Product is one catalog record. Immutable within an optimization run.
// CurrentPrice > UnitCost is expected but not enforced; a loss-making product
// still gets a valid (margin-floored) recommendation.
type Product struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"` // "" = classify from name
	CurrentPrice float64 `json:"current_price"`
	UnitCost     float64 `json:"unit_cost"`
}

// Params are the category-level optimization parameters.
type Params struct {
	Elasticity     float64 `json:"elasticity"`       // demand sensitivity to relative price changes
	Saturation     float64 `json:"saturation"`       // cap on predicted units, as a multiple of BaseUnits
	MinMarginPct   float64 `json:"min_margin_pct"`   // 0.2 = price must be >= cost * 1.2
	MaxIncreasePct float64 `json:"max_increase_pct"` // 0.3 = price may rise at most 30%
	MaxDecreasePct float64 `json:"max_decrease_pct"` // 0.25 = price may drop at most 25%
}

// ParamSource resolves category parameters by category name.
// Unknown categories must resolve to a default parameter set.
type ParamSource interface {
	ParamsFor(category string) Params
}

// Recommendation is the output artifact of one product optimization.
// Derived and never mutated after creation.
type Recommendation struct {
	ProductName        string  `json:"product_name"`
	Category           string  `json:"category"`
	CurrentPrice       float64 `json:"current_price"`
	RecommendedPrice   float64 `json:"recommended_price"`
	AvgCompetitorPrice float64 `json:"avg_competitor_price"` // 0 when no market data
	CompetitorCount    int     `json:"competitor_count"`
	ProfitCurrent      float64 `json:"profit_current"`
	ProfitRecommended  float64 `json:"profit_recommended"`
	ProfitDelta        float64 `json:"profit_delta"`
	PriceDeltaPct      float64 `json:"price_delta_pct"`

	// MarketAnchored is false when no competitor data survived cleaning and
	// the current price served as the anchor.
	MarketAnchored bool `json:"market_anchored"`
	// MarginPinned is true when the margin floor exceeded the bounded-change
	// interval and the price was pinned to the floor.
	MarginPinned bool `json:"margin_pinned"`

	ABPValue *float64 `json:"ab_p_value,omitempty"`
}
