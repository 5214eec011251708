package eval

import (
	"github.com/jsdoublel/symreg/internal/dataset"
	"github.com/jsdoublel/symreg/internal/expr"
)

// LengthEvaluator reports length/MaxLength, a parsimony pressure term
// independent of fit quality.
type LengthEvaluator struct {
	MaxLength int
	counters  Counters
}

func (e *LengthEvaluator) Counters() *Counters { return &e.counters }

func (e *LengthEvaluator) Evaluate(_ dataset.Range, individual *expr.Tree, _ []float64) ([]float64, error) {
	e.counters.bumpCall()
	return clamp([]float64{float64(individual.Length()+1) / float64(e.MaxLength)}), nil
}

// ShapeEvaluator reports a tree's visitation length: the sum, over every
// node, of the size of the subtree rooted there (Length+1). Two trees
// with the same node count but different shapes (balanced vs. a long
// single chain) score differently, making this a complementary parsimony
// term to LengthEvaluator's flat node count.
type ShapeEvaluator struct {
	counters Counters
}

func (e *ShapeEvaluator) Counters() *Counters { return &e.counters }

func (e *ShapeEvaluator) Evaluate(_ dataset.Range, individual *expr.Tree, _ []float64) ([]float64, error) {
	e.counters.bumpCall()
	total := 0
	for _, n := range individual.Nodes() {
		total += n.Length + 1
	}
	return clamp([]float64{float64(total)}), nil
}
