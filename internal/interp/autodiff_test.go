package interp

import (
	"math"
	"testing"

	"github.com/jsdoublel/symreg/internal/dataset"
	"github.com/jsdoublel/symreg/internal/dispatch"
	"github.com/jsdoublel/symreg/internal/expr"
	"github.com/jsdoublel/symreg/internal/symbol"
	"gonum.org/v1/gonum/mat"
)

// buildQuadratic constructs (w0*x)^2 + w1*x + c, postfix: x w0 * sq x w1 * c + +
func buildQuadratic(t *testing.T, xHash uint64) *expr.Tree {
	t.Helper()
	nodes := []expr.Node{
		expr.NewVariable(xHash, 2.0),     // 0: w0*x
		expr.NewFunction(symbol.Square, 1, false), // 1
		expr.NewVariable(xHash, 3.0),     // 2: w1*x
		expr.NewConstant(0.5),            // 3: c
		expr.NewFunction(symbol.Add, 2, false), // 4: w1*x + c
		expr.NewFunction(symbol.Add, 2, false), // 5: root
	}
	tr, err := expr.FromNodes(nodes)
	if err != nil {
		t.Fatalf("FromNodes: %v", err)
	}
	return tr
}

func newXDataset(t *testing.T, values []float64) (dataset.Dataset, uint64) {
	t.Helper()
	ds, err := dataset.NewMatrix([]string{"x"}, [][]float64{values})
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	v, _ := ds.GetVariableByName("x")
	return ds, v.Hash
}

func newInterpreter(t *testing.T) *Interpreter {
	t.Helper()
	table, err := dispatch.NewTable([]symbol.Type{symbol.Add, symbol.Square})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return New(table)
}

func TestAutodiffVariantsAgree(t *testing.T) {
	ds, xHash := newXDataset(t, []float64{1, 2, 3, -1.5})
	tree := buildQuadratic(t, xHash)
	ip := newInterpreter(t)
	rng := dataset.Range{Start: 0, End: ds.Rows()}
	nCoef := len(tree.CoefficientIndices())

	jRev := mat.NewDense(rng.Size(), nCoef, nil)
	jFwd := mat.NewDense(rng.Size(), nCoef, nil)
	jJet := mat.NewDense(rng.Size(), nCoef, nil)

	if err := ip.Reverse(tree, ds, rng, nil, jRev); err != nil {
		t.Fatalf("Reverse: %v", err)
	}
	if err := ip.Forward(tree, ds, rng, nil, jFwd); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if err := ip.Jet(tree, ds, rng, nil, jJet); err != nil {
		t.Fatalf("Jet: %v", err)
	}

	const tol = 1e-9
	for r := 0; r < rng.Size(); r++ {
		for c := 0; c < nCoef; c++ {
			a, b, d := jRev.At(r, c), jFwd.At(r, c), jJet.At(r, c)
			if math.Abs(a-b) > tol || math.Abs(a-d) > tol {
				t.Errorf("row %d coef %d: reverse=%v forward=%v jet=%v", r, c, a, b, d)
			}
		}
	}
}

func TestReverseMatchesFiniteDifference(t *testing.T) {
	ds, xHash := newXDataset(t, []float64{1, 2, 3, -1.5})
	tree := buildQuadratic(t, xHash)
	ip := newInterpreter(t)
	rng := dataset.Range{Start: 0, End: ds.Rows()}
	nCoef := len(tree.CoefficientIndices())

	coeffs := tree.Coefficients()
	jRev := mat.NewDense(rng.Size(), nCoef, nil)
	if err := ip.Reverse(tree, ds, rng, coeffs, jRev); err != nil {
		t.Fatalf("Reverse: %v", err)
	}

	const h = 1e-6
	result := make([]float64, rng.Size())
	for c := 0; c < nCoef; c++ {
		plus := append([]float64(nil), coeffs...)
		minus := append([]float64(nil), coeffs...)
		plus[c] += h
		minus[c] -= h
		rp := make([]float64, rng.Size())
		rm := make([]float64, rng.Size())
		if err := ip.Evaluate(tree, ds, rng, plus, rp, nil); err != nil {
			t.Fatalf("Evaluate+: %v", err)
		}
		if err := ip.Evaluate(tree, ds, rng, minus, rm, nil); err != nil {
			t.Fatalf("Evaluate-: %v", err)
		}
		for r := range result {
			fd := (rp[r] - rm[r]) / (2 * h)
			if math.Abs(fd-jRev.At(r, c)) > 1e-4 {
				t.Errorf("coef %d row %d: finite-diff=%v reverse=%v", c, r, fd, jRev.At(r, c))
			}
		}
	}
}
