package eval

import (
	"fmt"
	"sort"

	"github.com/jsdoublel/symreg/internal/dataset"
	"github.com/jsdoublel/symreg/internal/expr"
	"gonum.org/v1/gonum/stat"
)

// Reduction collapses a vector to a scalar.
type Reduction int

const (
	Min Reduction = iota
	Max
	Median
	Mean
	HarmonicMean
	Sum
)

func reduce(v []float64, r Reduction) (float64, error) {
	if len(v) == 0 {
		return 0, fmt.Errorf("eval: cannot reduce empty vector")
	}
	switch r {
	case Min:
		m := v[0]
		for _, x := range v[1:] {
			if x < m {
				m = x
			}
		}
		return m, nil
	case Max:
		m := v[0]
		for _, x := range v[1:] {
			if x > m {
				m = x
			}
		}
		return m, nil
	case Sum:
		s := 0.0
		for _, x := range v {
			s += x
		}
		return s, nil
	case Mean:
		return stat.Mean(v, nil), nil
	case HarmonicMean:
		for _, x := range v {
			if x == 0 {
				return 0, nil
			}
		}
		return stat.HarmonicMean(v, nil), nil
	case Median:
		sorted := append([]float64(nil), v...)
		sort.Float64s(sorted)
		return stat.Quantile(0.5, stat.LinInterp, sorted, nil), nil
	default:
		return 0, fmt.Errorf("eval: unknown reduction %d", r)
	}
}

// AggregateEvaluator wraps another evaluator and reduces its output
// vector to a single scalar via Reduce.
type AggregateEvaluator struct {
	Inner  Evaluator
	Reduce Reduction
}

func (e *AggregateEvaluator) Counters() *Counters { return e.Inner.Counters() }

func (e *AggregateEvaluator) Evaluate(rng dataset.Range, individual *expr.Tree, scratch []float64) ([]float64, error) {
	v, err := e.Inner.Evaluate(rng, individual, scratch)
	if err != nil {
		return nil, err
	}
	r, err := reduce(v, e.Reduce)
	if err != nil {
		return nil, err
	}
	if isNonFinite(r) {
		r = ErrMax
	}
	return []float64{r}, nil
}

// MultiEvaluator concatenates the outputs of its sub-evaluators into a
// single multi-objective fitness vector, summing their counters.
type MultiEvaluator struct {
	Evaluators []Evaluator
}

// Counters returns a fresh snapshot whose counts are the sums of the
// sub-evaluators' counters.
func (e *MultiEvaluator) Counters() *Counters {
	sum := &Counters{}
	for _, inner := range e.Evaluators {
		c := inner.Counters()
		sum.calls += c.Calls()
		sum.residuals += c.Residuals()
		sum.jacobians += c.Jacobians()
	}
	return sum
}

func (e *MultiEvaluator) Evaluate(rng dataset.Range, individual *expr.Tree, scratch []float64) ([]float64, error) {
	out := make([]float64, 0, len(e.Evaluators))
	for _, inner := range e.Evaluators {
		v, err := inner.Evaluate(rng, individual, scratch)
		if err != nil {
			return nil, err
		}
		out = append(out, v...)
	}
	return out, nil
}
