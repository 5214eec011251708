// Package interp implements the batched interpreter and
// its three autodiff variants: forward-jet, forward-mode scalar, and
// reverse-mode.
package interp

import (
	"fmt"

	"github.com/jsdoublel/symreg/internal/dataset"
	"github.com/jsdoublel/symreg/internal/dispatch"
	"github.com/jsdoublel/symreg/internal/expr"
)

// Interpreter binds a tree's dispatch callables once and evaluates it
// repeatedly over dataset ranges. It holds no per-call mutable state
// beyond scratch buffers allocated fresh per Evaluate call, so a single
// Interpreter may be shared (read-only) across worker goroutines.
type Interpreter struct {
	table *dispatch.Table
}

func New(table *dispatch.Table) *Interpreter {
	return &Interpreter{table: table}
}

// BatchCallback, if non-nil, is invoked once per processed batch with the
// batch matrix and the starting row, before the matrix is reused for the
// next batch.
type BatchCallback func(m *dispatch.Matrix, startRow int)

// Evaluate writes range.Size() primal values into result (which the
// caller must size accordingly), optionally substituting coefficients
// for every node with Optimize set (nil uses the tree's own Values).
func (ip *Interpreter) Evaluate(tree *expr.Tree, ds dataset.Dataset, rng dataset.Range, coefficients []float64, result []float64, cb BatchCallback) error {
	if rng.Empty() {
		return nil
	}
	nodes := tree.Nodes()
	n := len(nodes)
	m := dispatch.NewMatrix(n)
	ops := make([]dispatch.Op, n)
	params := make([]float64, n)
	varCols := make([][]float64, n)
	coefIdx := make([]int, n)
	idx := 0
	for i, nd := range nodes {
		if nd.Optimize {
			coefIdx[i] = idx
			idx++
		} else {
			coefIdx[i] = -1
		}
		params[i] = nd.Value
		if nd.IsVariable() {
			v, ok := ds.GetVariableByHash(nd.HashValue)
			if !ok {
				return fmt.Errorf("variable with hash %d not found in dataset", nd.HashValue)
			}
			varCols[i] = ds.Values(v.Index)
		} else if !nd.IsConstant() {
			op, err := ip.table.Lookup(nd.Type)
			if err != nil {
				return err
			}
			ops[i] = op
		}
	}
	if coefficients != nil {
		for i, nd := range nodes {
			if nd.Optimize {
				if coefIdx[i] >= len(coefficients) {
					return fmt.Errorf("not enough coefficients supplied")
				}
				params[i] = coefficients[coefIdx[i]]
			}
		}
	}
	childIdx := make([][]int, n)
	for i, nd := range nodes {
		if nd.Arity > 0 {
			childIdx[i] = leftToRight(tree, i)
		}
	}
	row := rng.Start
	out := 0
	for row < rng.End {
		length := min(dispatch.Batch, rng.End-row)
		for i, nd := range nodes {
			switch {
			case nd.IsConstant():
				col := m.Col(i)
				for r := 0; r < length; r++ {
					col[r] = params[i]
				}
			case nd.IsVariable():
				col := m.Col(i)
				src := varCols[i][row : row+length]
				for r := 0; r < length; r++ {
					col[r] = params[i] * src[r]
				}
			default:
				ops[i](m, params[i], childIdx[i], i, length)
			}
		}
		copy(result[out:out+length], m.Col(n-1)[:length])
		if cb != nil {
			cb(m, row)
		}
		row += length
		out += length
	}
	return nil
}

// leftToRight returns node i's children in left-to-right evaluation
// order (the reverse of expr.Tree.Indices, which is right-to-left).
func leftToRight(tree *expr.Tree, i int) []int {
	idx := tree.Indices(i)
	out := make([]int, len(idx))
	for k, v := range idx {
		out[len(idx)-1-k] = v
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
