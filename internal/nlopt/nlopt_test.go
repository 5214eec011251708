package nlopt

import (
	"math"
	"testing"

	"github.com/jsdoublel/symreg/internal/dataset"
	"github.com/jsdoublel/symreg/internal/dispatch"
	"github.com/jsdoublel/symreg/internal/expr"
	"github.com/jsdoublel/symreg/internal/interp"
	"github.com/jsdoublel/symreg/internal/symbol"
)

// linearProblem builds w*x (one free coefficient) fit against y = 3x,
// with w initialized away from the optimum.
func linearProblem(t *testing.T, w0 float64) (*interp.Interpreter, *expr.Tree, dataset.Dataset, dataset.Range, []float64) {
	t.Helper()
	xs := []float64{1, 2, 3, 4, 5}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 3 * x
	}
	ds, err := dataset.NewMatrix([]string{"x"}, [][]float64{xs})
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	v, _ := ds.GetVariableByName("x")
	node := expr.NewVariable(v.Hash, w0)
	tree, err := expr.FromNodes([]expr.Node{node})
	if err != nil {
		t.Fatalf("FromNodes: %v", err)
	}
	table, err := dispatch.NewTable([]symbol.Type{symbol.Add})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return interp.New(table), tree, ds, dataset.Range{Start: 0, End: ds.Rows()}, ys
}

func TestLevenbergMarquardtRecoversSlope(t *testing.T) {
	ip, tree, ds, rng, target := linearProblem(t, 1.0)
	cf := &CostFunction{Interp: ip, Tree: tree, Data: ds, Range: rng, Target: target}
	params, summary, err := LevenbergMarquardt(cf, tree.Coefficients(), LMOptions{MaxIterations: 50})
	if err != nil {
		t.Fatalf("LevenbergMarquardt: %v", err)
	}
	if !summary.Success {
		t.Fatalf("expected success, summary=%+v", summary)
	}
	if math.Abs(params[0]-3) > 1e-3 {
		t.Errorf("w = %v, want ~3", params[0])
	}
}

func TestOptimizeZeroIterationsNoOp(t *testing.T) {
	ip, tree, ds, rng, target := linearProblem(t, 1.0)
	out, summary, err := Optimize(ip, tree, ds, rng, target, Options{Method: LM, Iterations: 0})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if out != tree {
		t.Errorf("expected zero-iteration Optimize to return the same tree pointer")
	}
	if summary != (Summary{}) {
		t.Errorf("expected zero-value summary, got %+v", summary)
	}
}

func TestOptimizeDoesNotMutateInput(t *testing.T) {
	ip, tree, ds, rng, target := linearProblem(t, 1.0)
	before := tree.Coefficients()[0]
	if _, _, err := Optimize(ip, tree, ds, rng, target, Options{Method: LM, Iterations: 50}); err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if tree.Coefficients()[0] != before {
		t.Errorf("input tree mutated: coefficient changed from %v to %v", before, tree.Coefficients()[0])
	}
}

func TestAdamConverges(t *testing.T) {
	ip, tree, ds, rng, target := linearProblem(t, 1.0)
	cf := &CostFunction{Interp: ip, Tree: tree, Data: ds, Range: rng, Target: target}
	rule := &Adam{LR: 0.1, Beta1: 0.9, Beta2: 0.999}
	params, _, err := SGD(cf, tree.Coefficients(), rule, SGDOptions{MaxEpochs: 2000})
	if err != nil {
		t.Fatalf("SGD: %v", err)
	}
	if math.Abs(params[0]-3) > 1e-2 {
		t.Errorf("w = %v, want ~3", params[0])
	}
}
