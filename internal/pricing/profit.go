package pricing

import "fmt"

// SimulateProfit computes expected profit at a price for a predicted sales
// volume: (price - unitCost) * units. Negative for prices below cost.
func SimulateProfit(price, unitCost, units float64) (float64, error) {
	if unitCost < 0 {
		return 0, fmt.Errorf("%w: negative unit cost %.4f", ErrInvalidInput, unitCost)
	}
	if price <= 0 {
		return 0, fmt.Errorf("%w: price %.4f", ErrInvalidPrice, price)
	}
	return (price - unitCost) * units, nil
}
