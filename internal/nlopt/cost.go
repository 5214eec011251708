// Package nlopt implements the coefficient optimizers: a
// Levenberg-Marquardt normal-equation solver, a family of first-order
// SGD update rules, an L-BFGS variant backed by gonum/optimize, and the
// coefficient-optimizer wrapper the offspring generator calls.
package nlopt

import (
	"fmt"

	"github.com/jsdoublel/symreg/internal/dataset"
	"github.com/jsdoublel/symreg/internal/expr"
	"github.com/jsdoublel/symreg/internal/interp"
	"gonum.org/v1/gonum/mat"
)

// CostFunction wraps an interpreter, tree, dataset range and regression
// target into the (residuals, jacobian) surface the optimizers consume.
// Storage order is row-major for the conventional solvers below (one
// row per observation).
type CostFunction struct {
	Interp *interp.Interpreter
	Tree   *expr.Tree
	Data   dataset.Dataset
	Range  dataset.Range
	Target []float64

	FunctionEvaluations int
	JacobianEvaluations int
}

// Residuals evaluates the tree at params and returns model - target over
// the cost function's range.
func (cf *CostFunction) Residuals(params []float64) ([]float64, error) {
	cf.FunctionEvaluations++
	out := make([]float64, cf.Range.Size())
	if err := cf.Interp.Evaluate(cf.Tree, cf.Data, cf.Range, params, out, nil); err != nil {
		return nil, fmt.Errorf("residuals: %w", err)
	}
	for i := range out {
		out[i] -= cf.Target[cf.Range.Start+i]
	}
	return out, nil
}

// Jacobian returns d(model)/d(params) over the cost function's range,
// computed via reverse-mode autodiff.
func (cf *CostFunction) Jacobian(params []float64) (*mat.Dense, error) {
	cf.JacobianEvaluations++
	n := len(params)
	j := mat.NewDense(cf.Range.Size(), n, nil)
	if err := cf.Interp.Reverse(cf.Tree, cf.Data, cf.Range, params, j); err != nil {
		return nil, fmt.Errorf("jacobian: %w", err)
	}
	return j, nil
}

// Eval computes both residuals and jacobian in one call.
func (cf *CostFunction) Eval(params []float64) ([]float64, *mat.Dense, error) {
	r, err := cf.Residuals(params)
	if err != nil {
		return nil, nil, err
	}
	j, err := cf.Jacobian(params)
	if err != nil {
		return nil, nil, err
	}
	return r, j, nil
}

// SSE returns the sum of squared residuals for params.
func (cf *CostFunction) SSE(params []float64) (float64, error) {
	r, err := cf.Residuals(params)
	if err != nil {
		return 0, err
	}
	sse := 0.0
	for _, v := range r {
		sse += v * v
	}
	return sse, nil
}

// gradient computes J^T r, the gradient of 0.5*sum(r^2) with respect to
// the parameters jac was evaluated at.
func gradient(jac *mat.Dense, resid []float64) []float64 {
	_, cols := jac.Dims()
	out := make([]float64, cols)
	r := mat.NewVecDense(len(resid), resid)
	var g mat.VecDense
	g.MulVec(jac.T(), r)
	for i := 0; i < cols; i++ {
		out[i] = g.AtVec(i)
	}
	return out
}

// Summary reports the outcome of a coefficient-optimization run.
type Summary struct {
	InitialCost         float64
	FinalCost           float64
	Iterations          int
	FunctionEvaluations int
	JacobianEvaluations int
	Success             bool
}
