package nlopt

import (
	"fmt"

	"github.com/jsdoublel/symreg/internal/dataset"
	"github.com/jsdoublel/symreg/internal/expr"
	"github.com/jsdoublel/symreg/internal/interp"
)

// Method selects which coefficient optimizer Optimize runs.
type Method int

const (
	LM Method = iota
	FirstOrder
	QuasiNewton
)

// Options configures a single coefficient-optimization call.
type Options struct {
	Method     Method
	Iterations int
	Rule       UpdateRule // required when Method is FirstOrder
	LM         LMOptions
	LBFGS      LBFGSOptions
}

// Optimize applies the configured coefficient optimizer only when
// Iterations > 0, returning a new tree with updated coefficients and a
// run summary without mutating the input tree.
func Optimize(ip *interp.Interpreter, tree *expr.Tree, ds dataset.Dataset, rng dataset.Range, target []float64, opts Options) (*expr.Tree, Summary, error) {
	if opts.Iterations <= 0 {
		return tree, Summary{}, nil
	}
	clone := tree.Clone()
	init := clone.Coefficients()
	if len(init) == 0 {
		return clone, Summary{}, nil
	}

	cf := &CostFunction{Interp: ip, Tree: clone, Data: ds, Range: rng, Target: target}

	var (
		fitted  []float64
		summary Summary
		err     error
	)
	switch opts.Method {
	case LM:
		lmOpts := opts.LM
		lmOpts.MaxIterations = opts.Iterations
		fitted, summary, err = LevenbergMarquardt(cf, init, lmOpts)
	case FirstOrder:
		if opts.Rule == nil {
			return nil, Summary{}, fmt.Errorf("nlopt: FirstOrder method requires a Rule")
		}
		fitted, summary, err = SGD(cf, init, opts.Rule, SGDOptions{MaxEpochs: opts.Iterations})
	case QuasiNewton:
		lbfgsOpts := opts.LBFGS
		lbfgsOpts.MaxIterations = opts.Iterations
		fitted, summary, err = LBFGS(cf, init, lbfgsOpts)
	default:
		return nil, Summary{}, fmt.Errorf("nlopt: unknown method %d", opts.Method)
	}
	if err != nil {
		return nil, Summary{}, err
	}
	if err := clone.SetCoefficients(fitted); err != nil {
		return nil, Summary{}, err
	}
	return clone, summary, nil
}
