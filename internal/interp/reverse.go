package interp

import (
	"fmt"

	"github.com/jsdoublel/symreg/internal/dataset"
	"github.com/jsdoublel/symreg/internal/expr"
	"gonum.org/v1/gonum/mat"
)

// Reverse computes the Jacobian of the tree's output with respect to its
// optimizable coefficients over rng, one row at a time: a forward pass
// records each node's primal and raw (unscaled) function value, then a
// backward adjoint sweep from root to leaves accumulates
// d(output)/d(node) using the partials table. jacobian must already be
// shaped (rng.Size(), len(tree.CoefficientIndices())).
func (ip *Interpreter) Reverse(tree *expr.Tree, ds dataset.Dataset, rng dataset.Range, coefficients []float64, jacobian *mat.Dense) error {
	if rng.Empty() {
		return nil
	}
	nodes := tree.Nodes()
	n := len(nodes)
	root := tree.Root()

	params := make([]float64, n)
	varCols := make([][]float64, n)
	coefIdx := make([]int, n)
	childIdx := make([][]int, n)
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
		}
		if nd.Arity > 0 {
			childIdx[i] = leftToRight(tree, i)
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

	primal := make([]float64, n)
	f := make([]float64, n)
	adj := make([]float64, n)
	childVals := make([]float64, 0, 8)

	for row, outRow := rng.Start, 0; row < rng.End; row, outRow = row+1, outRow+1 {
		for i, nd := range nodes {
			switch {
			case nd.IsConstant():
				f[i] = 1
				primal[i] = params[i]
			case nd.IsVariable():
				f[i] = varCols[i][row]
				primal[i] = params[i] * f[i]
			default:
				childVals = childVals[:0]
				for _, c := range childIdx[i] {
					childVals = append(childVals, primal[c])
				}
				f[i] = evalRaw(nd.Type, childVals)
				primal[i] = params[i] * f[i]
			}
		}

		for i := range adj {
			adj[i] = 0
		}
		adj[root] = 1
		for i := n - 1; i >= 0; i-- {
			if nodes[i].Arity == 0 || adj[i] == 0 {
				continue
			}
			childVals = childVals[:0]
			for _, c := range childIdx[i] {
				childVals = append(childVals, primal[c])
			}
			d, err := partials(nodes[i].Type, childVals, f[i])
			if err != nil {
				return err
			}
			for k, c := range childIdx[i] {
				adj[c] += adj[i] * params[i] * d[k]
			}
		}

		for i, nd := range nodes {
			if !nd.Optimize {
				continue
			}
			jacobian.Set(outRow, coefIdx[i], adj[i]*f[i])
		}
	}
	return nil
}
