package nlopt

import (
	"fmt"

	"gonum.org/v1/gonum/optimize"
)

// LBFGSOptions configures the quasi-Newton variant.
type LBFGSOptions struct {
	MaxIterations int
}

// LBFGS fits cf's parameters with gonum/optimize's L-BFGS method,
// supplying both the objective (SSE) and its gradient (J^T r) so the
// line search never has to fall back to finite differences.
func LBFGS(cf *CostFunction, init []float64, opts LBFGSOptions) ([]float64, Summary, error) {
	initialCost, err := cf.SSE(init)
	if err != nil {
		return nil, Summary{}, err
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			v, err := cf.SSE(x)
			if err != nil {
				return initialCost
			}
			return v
		},
		Grad: func(grad, x []float64) {
			resid, jac, err := cf.Eval(x)
			if err != nil {
				for i := range grad {
					grad[i] = 0
				}
				return
			}
			copy(grad, gradient(jac, resid))
		},
	}

	settings := &optimize.Settings{}
	if opts.MaxIterations > 0 {
		settings.MajorIterations = opts.MaxIterations
	}
	result, err := optimize.Minimize(problem, init, settings, &optimize.LBFGS{})
	if err != nil {
		return append([]float64(nil), init...), Summary{
			InitialCost: initialCost,
			FinalCost:   initialCost,
			Success:     false,
		}, fmt.Errorf("lbfgs: %w", err)
	}

	success := result.F < initialCost
	params := result.X
	finalCost := result.F
	if !success {
		params = append([]float64(nil), init...)
		finalCost = initialCost
	}
	return params, Summary{
		InitialCost:         initialCost,
		FinalCost:           finalCost,
		Iterations:          result.Stats.MajorIterations,
		FunctionEvaluations: result.Stats.FuncEvaluations,
		JacobianEvaluations: result.Stats.GradEvaluations,
		Success:             success,
	}, nil
}
