package nlopt

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

var ErrSingularSystem = errors.New("nlopt: normal equations singular")

// LMOptions configures the Levenberg-Marquardt loop.
type LMOptions struct {
	MaxIterations int
	InitialLambda float64 // defaults to 1e-3 when zero
	LambdaUp      float64 // defaults to 10 when zero
	LambdaDown    float64 // defaults to 10 when zero
}

func (o LMOptions) withDefaults() LMOptions {
	if o.InitialLambda == 0 {
		o.InitialLambda = 1e-3
	}
	if o.LambdaUp == 0 {
		o.LambdaUp = 10
	}
	if o.LambdaDown == 0 {
		o.LambdaDown = 10
	}
	return o
}

// LevenbergMarquardt fits cf's parameters starting from init, following
// the damped Gauss-Newton recurrence: at each step solve
// (J^T J + lambda*diag(J^T J)) delta = -J^T r, accept if cost improves
// and relax lambda, otherwise tighten lambda and retry. On success the
// fitted parameters are returned; otherwise the original parameters are
// returned unchanged, matching the "no regression" contract the
// coefficient optimizer wrapper relies on.
func LevenbergMarquardt(cf *CostFunction, init []float64, opts LMOptions) ([]float64, Summary, error) {
	opts = opts.withDefaults()
	n := len(init)
	params := append([]float64(nil), init...)

	initialCost, err := cf.SSE(params)
	if err != nil {
		return nil, Summary{}, err
	}
	cost := initialCost
	lambda := opts.InitialLambda

	iterations := 0
	for ; iterations < opts.MaxIterations; iterations++ {
		resid, jac, err := cf.Eval(params)
		if err != nil {
			return nil, Summary{}, err
		}
		rVec := mat.NewVecDense(len(resid), resid)

		var jtj mat.Dense
		jtj.Mul(jac.T(), jac)
		var jtr mat.VecDense
		jtr.MulVec(jac.T(), rVec)

		var damped mat.Dense
		damped.CloneFrom(&jtj)
		for i := 0; i < n; i++ {
			damped.Set(i, i, damped.At(i, i)*(1+lambda))
		}

		var delta mat.VecDense
		if err := delta.SolveVec(&damped, &jtr); err != nil {
			lambda *= opts.LambdaUp
			if lambda > 1e16 {
				break
			}
			continue
		}

		candidate := make([]float64, n)
		for i := range candidate {
			candidate[i] = params[i] - delta.AtVec(i)
		}
		candidateCost, err := cf.SSE(candidate)
		if err != nil {
			return nil, Summary{}, err
		}
		if math.IsNaN(candidateCost) || candidateCost >= cost {
			lambda *= opts.LambdaUp
			if lambda > 1e16 {
				break
			}
			continue
		}
		params = candidate
		cost = candidateCost
		lambda /= opts.LambdaDown
	}

	success := cost < initialCost
	if !success {
		params = append([]float64(nil), init...)
		cost = initialCost
	}
	return params, Summary{
		InitialCost:         initialCost,
		FinalCost:           cost,
		Iterations:          iterations,
		FunctionEvaluations: cf.FunctionEvaluations,
		JacobianEvaluations: cf.JacobianEvaluations,
		Success:             success,
	}, nil
}
