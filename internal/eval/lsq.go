package eval

import (
	"github.com/jsdoublel/symreg/internal/dataset"
	"github.com/jsdoublel/symreg/internal/expr"
	"github.com/jsdoublel/symreg/internal/interp"
	"github.com/jsdoublel/symreg/internal/metrics"
	"gonum.org/v1/gonum/stat"
)

// Metric reduces a model output and a target to a single fitness value.
type Metric func(y, yHat, weights []float64) float64

// LeastSquares is the single-objective base evaluator: it runs the tree
// over a dataset range, optionally fits a linear scale+offset against
// the target by ordinary least squares, and reports Metric of the
// (possibly scaled) prediction against the target.
type LeastSquares struct {
	Interp      *interp.Interpreter
	Data        dataset.Dataset
	Target      []float64
	Weights     []float64 // nil means unweighted
	Metric      Metric    // defaults to metrics.NMSE when nil
	LinearScale bool

	counters Counters
}

func (e *LeastSquares) Counters() *Counters { return &e.counters }

func (e *LeastSquares) metric() Metric {
	if e.Metric != nil {
		return e.Metric
	}
	return metrics.NMSE
}

func (e *LeastSquares) Evaluate(rng dataset.Range, individual *expr.Tree, scratch []float64) ([]float64, error) {
	e.counters.bumpCall()
	e.counters.bumpResidual()
	n := rng.Size()
	var out []float64
	if cap(scratch) >= n {
		out = scratch[:n]
	} else {
		out = make([]float64, n)
	}
	if err := e.Interp.Evaluate(individual, e.Data, rng, nil, out, nil); err != nil {
		return nil, err
	}
	target := e.Target[rng.Start:rng.End]
	var weights []float64
	if e.Weights != nil {
		weights = e.Weights[rng.Start:rng.End]
	}
	if e.LinearScale {
		alpha, beta := stat.LinearRegression(out, target, weights, false)
		for i, v := range out {
			out[i] = beta*v + alpha
		}
	}
	return clamp([]float64{e.metric()(target, out, weights)}), nil
}
