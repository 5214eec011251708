package eval

import (
	"math"
	"math/rand"
	"testing"

	"github.com/jsdoublel/symreg/internal/dataset"
	"github.com/jsdoublel/symreg/internal/dispatch"
	"github.com/jsdoublel/symreg/internal/expr"
	"github.com/jsdoublel/symreg/internal/interp"
	"github.com/jsdoublel/symreg/internal/symbol"
)

func buildLinear(t *testing.T, hash uint64, w float64) *expr.Tree {
	t.Helper()
	tree, err := expr.FromNodes([]expr.Node{expr.NewVariable(hash, w)})
	if err != nil {
		t.Fatalf("FromNodes: %v", err)
	}
	return tree
}

func TestLeastSquaresPerfectFitIsZero(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	ds, err := dataset.NewMatrix([]string{"x"}, [][]float64{xs})
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	v, _ := ds.GetVariableByName("x")
	tree := buildLinear(t, v.Hash, 3.0)
	table, err := dispatch.NewTable([]symbol.Type{symbol.Add})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	target := make([]float64, len(xs))
	for i, x := range xs {
		target[i] = 3 * x
	}
	e := &LeastSquares{Interp: interp.New(table), Data: ds, Target: target}
	rng := dataset.Range{Start: 0, End: ds.Rows()}
	got, err := e.Evaluate(rng, tree, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if math.Abs(got[0]) > 1e-9 {
		t.Errorf("fitness = %v, want ~0", got[0])
	}
	if e.Counters().Calls() != 1 {
		t.Errorf("Calls() = %d, want 1", e.Counters().Calls())
	}
}

func TestLengthEvaluator(t *testing.T) {
	tree := buildLinear(t, 1, 1.0)
	e := &LengthEvaluator{MaxLength: 10}
	got, err := e.Evaluate(dataset.Range{}, tree, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got[0] != 0.1 {
		t.Errorf("length fitness = %v, want 0.1", got[0])
	}
}

func TestDiversityEvaluatorIdenticalPopulationIsZeroDistance(t *testing.T) {
	tree := buildLinear(t, 1, 1.0)
	e := &DiversityEvaluator{SampleSize: 3, Mode: expr.Strict, Rng: rand.New(rand.NewSource(1))}
	e.Precompute([]*expr.Tree{tree.Clone(), tree.Clone(), tree.Clone()})
	got, err := e.Evaluate(dataset.Range{}, tree, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got[0] != 0 {
		t.Errorf("diversity = %v, want 0 for identical population", got[0])
	}
}

func TestAggregateEvaluatorMean(t *testing.T) {
	inner := &fakeVectorEvaluator{vec: []float64{1, 2, 3}}
	e := &AggregateEvaluator{Inner: inner, Reduce: Mean}
	got, err := e.Evaluate(dataset.Range{}, nil, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got[0] != 2 {
		t.Errorf("mean = %v, want 2", got[0])
	}
}

func TestMultiEvaluatorConcatenates(t *testing.T) {
	a := &fakeVectorEvaluator{vec: []float64{1, 2}}
	b := &fakeVectorEvaluator{vec: []float64{3}}
	e := &MultiEvaluator{Evaluators: []Evaluator{a, b}}
	got, err := e.Evaluate(dataset.Range{}, nil, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	want := []float64{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

type fakeVectorEvaluator struct {
	vec      []float64
	counters Counters
}

func (f *fakeVectorEvaluator) Counters() *Counters { return &f.counters }
func (f *fakeVectorEvaluator) Evaluate(dataset.Range, *expr.Tree, []float64) ([]float64, error) {
	f.counters.bumpCall()
	return append([]float64(nil), f.vec...), nil
}
