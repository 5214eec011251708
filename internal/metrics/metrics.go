// Package metrics implements the error metrics and likelihoods the
// evaluator family reduces residuals with: SSE/MSE/RMSE/
// NMSE/MAE/R²/C², their weighted variants, Gaussian and Poisson negative
// log-likelihoods, and the Fisher information matrix MDL needs.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// weightsOrOnes returns w unchanged when non-nil, otherwise a slice of n
// ones, so every weighted metric below doubles as its unweighted variant.
func weightsOrOnes(w []float64, n int) []float64 {
	if w != nil {
		return w
	}
	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	return ones
}

// SSE returns the (optionally weighted) sum of squared errors.
func SSE(y, yHat, weights []float64) float64 {
	w := weightsOrOnes(weights, len(y))
	sse := 0.0
	for i := range y {
		d := y[i] - yHat[i]
		sse += w[i] * d * d
	}
	return sse
}

// MSE returns the weighted mean squared error.
func MSE(y, yHat, weights []float64) float64 {
	w := weightsOrOnes(weights, len(y))
	return SSE(y, yHat, weights) / floats.Sum(w)
}

// RMSE returns the root mean squared error.
func RMSE(y, yHat, weights []float64) float64 {
	return math.Sqrt(MSE(y, yHat, weights))
}

// NMSE returns the mean squared error normalized by the target's
// variance, so a constant predictor at the mean scores 1.
func NMSE(y, yHat, weights []float64) float64 {
	w := weightsOrOnes(weights, len(y))
	mean := stat.Mean(y, w)
	variance := 0.0
	for i, v := range y {
		d := v - mean
		variance += w[i] * d * d
	}
	variance /= floats.Sum(w)
	if variance == 0 {
		return math.Inf(1)
	}
	return MSE(y, yHat, weights) / variance
}

// MAE returns the weighted mean absolute error.
func MAE(y, yHat, weights []float64) float64 {
	w := weightsOrOnes(weights, len(y))
	sum := 0.0
	for i := range y {
		sum += w[i] * math.Abs(y[i]-yHat[i])
	}
	return sum / floats.Sum(w)
}

// R2 returns the coefficient of determination, 1 - NMSE.
func R2(y, yHat, weights []float64) float64 {
	return 1 - NMSE(y, yHat, weights)
}

// C2 returns the squared Pearson correlation between y and yHat, the
// scale-and-offset-invariant companion to R2 that Operon reports
// alongside it.
func C2(y, yHat, weights []float64) float64 {
	w := weightsOrOnes(weights, len(y))
	r := stat.Correlation(y, yHat, w)
	return r * r
}

// GaussianNLL returns the Gaussian negative log-likelihood of residuals
// (y - yHat) under noise variance sigma2.
func GaussianNLL(y, yHat []float64, sigma2 float64) float64 {
	n := float64(len(y))
	sse := SSE(y, yHat, nil)
	return 0.5*sse/sigma2 + 0.5*n*math.Log(2*math.Pi*sigma2)
}

// PoissonNLL returns the Poisson negative log-likelihood of observed
// counts y under predicted rates yHat.
func PoissonNLL(y, yHat []float64) float64 {
	nll := 0.0
	for i := range y {
		logFact, _ := math.Lgamma(y[i] + 1)
		nll += yHat[i] - y[i]*math.Log(yHat[i]) + logFact
	}
	return nll
}
