package pricing

import (
	"fmt"
	"math"
)

// BaseUnits is the baseline sales volume assumed at the anchor price.
// It cancels out of the price argmax, so only reported profit magnitudes
// scale with it.
const BaseUnits = 100.0

// PredictedUnits maps a candidate price to predicted units sold via a
// constant-elasticity demand curve anchored at basePrice:
//
//	units = BaseUnits * (basePrice/price)^elasticity
//
// clamped to [0, saturation*BaseUnits] so demand never extrapolates without
// bound below the anchor.
func PredictedUnits(price, basePrice, elasticity, saturation float64) (float64, error) {
	if price <= 0 || math.IsNaN(price) {
		return 0, fmt.Errorf("%w: candidate price %.4f", ErrInvalidPrice, price)
	}
	if basePrice <= 0 || math.IsNaN(basePrice) {
		return 0, fmt.Errorf("%w: base price %.4f", ErrInvalidPrice, basePrice)
	}

	units := BaseUnits * math.Pow(basePrice/price, elasticity)

	cap := saturation * BaseUnits
	if cap > 0 && units > cap {
		units = cap
	}
	if units < 0 || math.IsNaN(units) {
		units = 0
	}
	return units, nil
}
