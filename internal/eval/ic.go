package eval

import (
	"math"

	"github.com/jsdoublel/symreg/internal/dataset"
	"github.com/jsdoublel/symreg/internal/expr"
	"github.com/jsdoublel/symreg/internal/interp"
	"github.com/jsdoublel/symreg/internal/metrics"
	"github.com/jsdoublel/symreg/internal/nlopt"
	"github.com/jsdoublel/symreg/internal/symbol"
	"gonum.org/v1/gonum/mat"
)

// jacobianOf computes d(model)/d(coefficients) over rng via reverse-mode
// autodiff, shaped (rng.Size(), p).
func jacobianOf(ip *interp.Interpreter, tree *expr.Tree, ds dataset.Dataset, rng dataset.Range, p int) (*mat.Dense, error) {
	j := mat.NewDense(rng.Size(), p, nil)
	if err := ip.Reverse(tree, ds, rng, nil, j); err != nil {
		return nil, err
	}
	return j, nil
}

// fitPredictions optionally runs the coefficient optimizer before
// returning the tree's predictions, residual sum of squares and
// jacobian over rng, shared by every information-criterion evaluator.
func fitPredictions(ip *interp.Interpreter, tree *expr.Tree, ds dataset.Dataset, rng dataset.Range, target []float64, opts nlopt.Options) (*expr.Tree, []float64, float64, error) {
	fitted, _, err := nlopt.Optimize(ip, tree, ds, rng, target, opts)
	if err != nil {
		return nil, nil, 0, err
	}
	out := make([]float64, rng.Size())
	if err := ip.Evaluate(fitted, ds, rng, nil, out, nil); err != nil {
		return nil, nil, 0, err
	}
	return fitted, out, metrics.SSE(target[rng.Start:rng.End], out, nil), nil
}

// BayesianInformationCriterion reports n*log(MSE) + p*log(n), where p is
// the tree's number of free coefficients.
type BayesianInformationCriterion struct {
	Interp     *interp.Interpreter
	Data       dataset.Dataset
	Target     []float64
	OptimizeIt nlopt.Options

	counters Counters
}

func (e *BayesianInformationCriterion) Counters() *Counters { return &e.counters }

func (e *BayesianInformationCriterion) Evaluate(rng dataset.Range, individual *expr.Tree, _ []float64) ([]float64, error) {
	e.counters.bumpCall()
	fitted, out, _, err := fitPredictions(e.Interp, individual, e.Data, rng, e.Target, e.OptimizeIt)
	if err != nil {
		return nil, err
	}
	n := float64(rng.Size())
	p := float64(len(fitted.CoefficientIndices()))
	mse := metrics.MSE(e.Target[rng.Start:rng.End], out, nil)
	return clamp([]float64{n*math.Log(mse) + p*math.Log(n)}), nil
}

// AkaikeInformationCriterion reports n/2 * (log 2pi + log(MSE) + 1).
type AkaikeInformationCriterion struct {
	Interp     *interp.Interpreter
	Data       dataset.Dataset
	Target     []float64
	OptimizeIt nlopt.Options

	counters Counters
}

func (e *AkaikeInformationCriterion) Counters() *Counters { return &e.counters }

func (e *AkaikeInformationCriterion) Evaluate(rng dataset.Range, individual *expr.Tree, _ []float64) ([]float64, error) {
	e.counters.bumpCall()
	_, out, _, err := fitPredictions(e.Interp, individual, e.Data, rng, e.Target, e.OptimizeIt)
	if err != nil {
		return nil, err
	}
	n := float64(rng.Size())
	mse := metrics.MSE(e.Target[rng.Start:rng.End], out, nil)
	return clamp([]float64{n / 2 * (math.Log(2*math.Pi) + math.Log(mse) + 1)}), nil
}

// MinimumDescriptionLength reports a structural codelength (unique
// operator types weighted by log of their arity support, plus the log
// of every non-optimized constant's magnitude) plus a parameter
// codelength (0.5*log(I_i) + log|c_i| summed over the Fisher
// information diagonal, minus (p/2)*log 3) combined with the Gaussian
// negative log-likelihood of the fitted residuals.
type MinimumDescriptionLength struct {
	Interp     *interp.Interpreter
	Data       dataset.Dataset
	Target     []float64
	OptimizeIt nlopt.Options
	ArityBins  int // number of distinct arity classes available in the primitive set

	counters Counters
}

func (e *MinimumDescriptionLength) Counters() *Counters { return &e.counters }

func (e *MinimumDescriptionLength) Evaluate(rng dataset.Range, individual *expr.Tree, _ []float64) ([]float64, error) {
	e.counters.bumpCall()
	fitted, out, sse, err := fitPredictions(e.Interp, individual, e.Data, rng, e.Target, e.OptimizeIt)
	if err != nil {
		return nil, err
	}
	n := rng.Size()
	sigma2 := sse / float64(n)
	if sigma2 == 0 {
		sigma2 = 1e-12
	}

	structural := e.structuralCodelength(fitted)
	parametric, err := e.parametricCodelength(fitted, rng, sigma2)
	if err != nil {
		return nil, err
	}
	nll := metrics.GaussianNLL(e.Target[rng.Start:rng.End], out, sigma2)
	return clamp([]float64{nll + structural + parametric}), nil
}

func (e *MinimumDescriptionLength) structuralCodelength(tree *expr.Tree) float64 {
	seen := make(map[symbol.Type]bool)
	codelength := 0.0
	bins := e.ArityBins
	if bins < 2 {
		bins = 2
	}
	for _, n := range tree.Nodes() {
		if n.IsConstant() {
			codelength += math.Log(math.Max(math.Abs(n.Value), 1))
			continue
		}
		if !seen[n.Type] {
			seen[n.Type] = true
			codelength += math.Log(float64(bins))
		}
	}
	return codelength
}

func (e *MinimumDescriptionLength) parametricCodelength(tree *expr.Tree, rng dataset.Range, sigma2 float64) (float64, error) {
	coefIdx := tree.CoefficientIndices()
	p := len(coefIdx)
	if p == 0 {
		return 0, nil
	}
	jac, err := jacobianOf(e.Interp, tree, e.Data, rng, p)
	if err != nil {
		return 0, err
	}
	fisher := metrics.FisherInformation(jac, sigma2)
	diag := metrics.Diagonal(fisher)
	coeffs := tree.Coefficients()

	codelength := -float64(p) / 2 * math.Log(3)
	for i, info := range diag {
		if info <= 0 {
			info = 1e-12
		}
		codelength += 0.5*math.Log(info) + math.Log(math.Max(math.Abs(coeffs[i]), 1e-12))
	}
	return codelength, nil
}
