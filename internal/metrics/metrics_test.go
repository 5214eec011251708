package metrics

import (
	"math"
	"testing"
)

func TestSSEPerfectFit(t *testing.T) {
	y := []float64{1, 2, 3, 4}
	if got := SSE(y, y, nil); got != 0 {
		t.Errorf("SSE(y,y) = %v, want 0", got)
	}
}

func TestWeightedMatchesUnweightedWithOnes(t *testing.T) {
	y := []float64{1, 2, 3, 4, 5}
	yHat := []float64{1.1, 1.9, 3.2, 3.8, 5.3}
	ones := []float64{1, 1, 1, 1, 1}

	tests := []struct {
		name string
		fn   func(y, yHat, w []float64) float64
	}{
		{"SSE", SSE},
		{"MSE", MSE},
		{"RMSE", RMSE},
		{"NMSE", NMSE},
		{"MAE", MAE},
		{"R2", R2},
		{"C2", C2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			unweighted := tc.fn(y, yHat, nil)
			weighted := tc.fn(y, yHat, ones)
			if math.Abs(unweighted-weighted) > 1e-12 {
				t.Errorf("%s: unweighted=%v weighted(ones)=%v", tc.name, unweighted, weighted)
			}
		})
	}
}

func TestR2BoundedByOneForPerfectFit(t *testing.T) {
	y := []float64{1, 2, 3, 4, 5}
	if got := R2(y, y, nil); math.Abs(got-1) > 1e-12 {
		t.Errorf("R2(y,y) = %v, want 1", got)
	}
}

func TestGaussianNLLMinimizedAtZeroResidual(t *testing.T) {
	y := []float64{1, 2, 3}
	zero := GaussianNLL(y, y, 1.0)
	off := GaussianNLL(y, []float64{1.5, 2.5, 3.5}, 1.0)
	if zero >= off {
		t.Errorf("expected perfect-fit NLL (%v) < off-fit NLL (%v)", zero, off)
	}
}
