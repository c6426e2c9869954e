package pricing

import (
	"errors"
	"math"
	"testing"
)

func TestRunABTest_ReproducibleWithSeed(t *testing.T) {
	params := exampleParams()
	first, err := RunABTest(20, 24, 20, params, 8, 500, 42)
	if err != nil {
		t.Fatalf("RunABTest: %v", err)
	}
	again, err := RunABTest(20, 24, 20, params, 8, 500, 42)
	if err != nil {
		t.Fatalf("RunABTest: %v", err)
	}
	if first != again {
		t.Errorf("same seed produced different results: %+v vs %+v", first, again)
	}

	other, err := RunABTest(20, 24, 20, params, 8, 500, 43)
	if err != nil {
		t.Fatalf("RunABTest: %v", err)
	}
	if other.MeanProfitCurrent == first.MeanProfitCurrent {
		t.Error("different seeds produced identical sample means")
	}
}

func TestRunABTest_NullDifferenceNoFalsePositiveBias(t *testing.T) {
	// Identical price in both arms: the null hypothesis is true, so p < 0.05
	// should occur at roughly the 5% rate. Over 40 seeded runs, far more than
	// that signals a broken test statistic.
	params := exampleParams()
	significant := 0
	const runs = 40
	for seed := int64(1); seed <= runs; seed++ {
		res, err := RunABTest(20, 20, 20, params, 8, 1000, seed)
		if err != nil {
			t.Fatalf("RunABTest(seed=%d): %v", seed, err)
		}
		if res.PValue < 0 || res.PValue > 1 {
			t.Fatalf("PValue = %v, outside [0, 1]", res.PValue)
		}
		if res.PValue < 0.05 {
			significant++
		}
	}
	if significant > runs/4 {
		t.Errorf("null difference flagged significant in %d/%d runs", significant, runs)
	}
}

func TestRunABTest_DetectsLargeProfitDifference(t *testing.T) {
	// At anchor 20 with e=1.5: price 10 caps at 200 units → profit ~400;
	// price 20 sells ~100 units → profit ~1200. The difference dwarfs the
	// ±10% jitter, so the test must come back significant.
	params := exampleParams()
	res, err := RunABTest(10, 20, 20, params, 8, 1000, 7)
	if err != nil {
		t.Fatalf("RunABTest: %v", err)
	}
	if res.PValue > 0.001 {
		t.Errorf("PValue = %v, want << 0.001 for an obvious difference", res.PValue)
	}
	if res.MeanProfitRecommended <= res.MeanProfitCurrent {
		t.Errorf("mean profits (%v, %v) ordered wrong", res.MeanProfitCurrent, res.MeanProfitRecommended)
	}
	// Sample means should sit near the analytic profits.
	if math.Abs(res.MeanProfitCurrent-400) > 40 {
		t.Errorf("MeanProfitCurrent = %v, want ~400", res.MeanProfitCurrent)
	}
	if math.Abs(res.MeanProfitRecommended-1200) > 120 {
		t.Errorf("MeanProfitRecommended = %v, want ~1200", res.MeanProfitRecommended)
	}
}

func TestRunABTest_InvalidInputs(t *testing.T) {
	params := exampleParams()
	if _, err := RunABTest(20, 24, 20, params, 8, 1, 1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("sample size 1 err = %v, want ErrInvalidInput", err)
	}
	if _, err := RunABTest(20, 24, 20, params, -1, 100, 1); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative cost err = %v, want ErrInvalidInput", err)
	}
	if _, err := RunABTest(0, 24, 20, params, 8, 100, 1); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("zero price err = %v, want ErrInvalidPrice", err)
	}
}
