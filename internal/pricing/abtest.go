package pricing

import (
	"fmt"
	"math"
	"math/rand"
)

// abJitter is the half-width of the uniform multiplicative noise applied to
// predicted units in each simulated trial (±10%).
const abJitter = 0.10

// ABTestResult is the outcome of a simulated A/B comparison of two prices.
// It is a confidence signal, not a guarantee.
type ABTestResult struct {
	PValue                float64 `json:"p_value"`
	MeanProfitCurrent     float64 `json:"mean_profit_current"`
	MeanProfitRecommended float64 `json:"mean_profit_recommended"`
	SampleSize            int     `json:"sample_size"`
}

// RunABTest draws sampleSize synthetic profit outcomes at each price by
// perturbing predicted units with bounded multiplicative jitter, then runs
// Welch's two-sample t-test on the difference of means.
//
// Results are reproducible for a given seed; callers wanting fresh randomness
// supply a varying seed (e.g. time-based).
func RunABTest(currentPrice, recommendedPrice, anchor float64, params Params, unitCost float64, sampleSize int, seed int64) (ABTestResult, error) {
	if sampleSize < 2 {
		return ABTestResult{}, fmt.Errorf("%w: sample size %d", ErrInvalidInput, sampleSize)
	}
	if unitCost < 0 {
		return ABTestResult{}, fmt.Errorf("%w: negative unit cost %.4f", ErrInvalidInput, unitCost)
	}

	rng := rand.New(rand.NewSource(seed))

	current, err := simulateSample(rng, currentPrice, anchor, unitCost, params, sampleSize)
	if err != nil {
		return ABTestResult{}, err
	}
	recommended, err := simulateSample(rng, recommendedPrice, anchor, unitCost, params, sampleSize)
	if err != nil {
		return ABTestResult{}, err
	}

	meanCur, varCur := meanVariance(current)
	meanRec, varRec := meanVariance(recommended)

	return ABTestResult{
		PValue:                welchPValue(meanCur, varCur, len(current), meanRec, varRec, len(recommended)),
		MeanProfitCurrent:     meanCur,
		MeanProfitRecommended: meanRec,
		SampleSize:            sampleSize,
	}, nil
}

// simulateSample draws n profit realizations at a price.
func simulateSample(rng *rand.Rand, price, anchor, unitCost float64, params Params, n int) ([]float64, error) {
	units, err := PredictedUnits(price, anchor, params.Elasticity, params.Saturation)
	if err != nil {
		return nil, err
	}
	sample := make([]float64, n)
	for i := range sample {
		jitter := 1 + (rng.Float64()*2-1)*abJitter
		profit, err := SimulateProfit(price, unitCost, units*jitter)
		if err != nil {
			return nil, err
		}
		sample[i] = profit
	}
	return sample, nil
}

// meanVariance returns the sample mean and unbiased sample variance.
func meanVariance(values []float64) (float64, float64) {
	n := float64(len(values))
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n

	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	if n < 2 {
		return mean, 0
	}
	return mean, ss / (n - 1)
}

// welchPValue computes the two-sided p-value of Welch's t-test from sample
// moments, with Welch–Satterthwaite degrees of freedom.
func welchPValue(mean1, var1 float64, n1 int, mean2, var2 float64, n2 int) float64 {
	a := var1 / float64(n1)
	b := var2 / float64(n2)
	se := math.Sqrt(a + b)
	if se == 0 {
		// Two degenerate (zero-variance) samples: identical means are a
		// certain null, different means a certain difference.
		if mean1 == mean2 {
			return 1
		}
		return 0
	}

	t := math.Abs(mean1-mean2) / se
	df := (a + b) * (a + b) / (a*a/float64(n1-1) + b*b/float64(n2-1))

	// Two-sided: P(|T| > t) = I_{df/(df+t²)}(df/2, 1/2).
	x := df / (df + t*t)
	return regIncompleteBeta(df/2, 0.5, x)
}

// regIncompleteBeta computes the regularized incomplete beta function
// I_x(a, b) via the Lentz continued fraction.
func regIncompleteBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	lbeta, _ := math.Lgamma(a + b)
	la, _ := math.Lgamma(a)
	lb, _ := math.Lgamma(b)
	front := math.Exp(lbeta - la - lb + a*math.Log(x) + b*math.Log(1-x))

	// Use the symmetry relation when x is past the distribution's bulk so the
	// continued fraction converges.
	if x > (a+1)/(a+b+2) {
		return 1 - regIncompleteBeta(b, a, 1-x)
	}

	const (
		maxIterations = 200
		epsilon       = 1e-12
		tiny          = 1e-30
	)

	c := 1.0
	d := 1 - (a+b)*x/(a+1)
	if math.Abs(d) < tiny {
		d = tiny
	}
	d = 1 / d
	result := d

	for m := 1; m <= maxIterations; m++ {
		fm := float64(m)

		// Even step.
		num := fm * (b - fm) * x / ((a + 2*fm - 1) * (a + 2*fm))
		d = 1 + num*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		d = 1 / d
		c = 1 + num/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		result *= d * c

		// Odd step.
		num = -(a + fm) * (a + b + fm) * x / ((a + 2*fm) * (a + 2*fm + 1))
		d = 1 + num*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		d = 1 / d
		c = 1 + num/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		delta := d * c
		result *= delta

		if math.Abs(delta-1) < epsilon {
			break
		}
	}
	return front * result / a
}
