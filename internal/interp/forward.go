package interp

import (
	"fmt"

	"github.com/jsdoublel/symreg/internal/dataset"
	"github.com/jsdoublel/symreg/internal/expr"
	"gonum.org/v1/gonum/mat"
)

// Forward computes the same Jacobian as Reverse but by forward-mode
// scalar propagation: for each coefficient in turn, a unit tangent is
// seeded at that node and carried up the parent chain to the root,
// multiplying in the local partial derivative and coefficient at every
// step. Unlike Jet, which carries a width-D tangent
// vector through a single postfix sweep, Forward makes one upward walk
// per coefficient; both must agree with Reverse to within a small
// numerical tolerance.
func (ip *Interpreter) Forward(tree *expr.Tree, ds dataset.Dataset, rng dataset.Range, coefficients []float64, jacobian *mat.Dense) error {
	if rng.Empty() {
		return nil
	}
	nodes := tree.Nodes()
	n := len(nodes)

	params := make([]float64, n)
	varCols := make([][]float64, n)
	coefIdx := make([]int, n)
	childIdx := make([][]int, n)
	childPos := make([]int, n) // position of node i within its parent's childIdx slice
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
			for pos, c := range childIdx[i] {
				childPos[c] = pos
			}
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

	coeffNodes := tree.CoefficientIndices()
	primal := make([]float64, n)
	f := make([]float64, n)
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

		for _, c := range coeffNodes {
			sens := 1.0
			i := c
			for nodes[i].Parent != i {
				p := nodes[i].Parent
				childVals = childVals[:0]
				for _, cc := range childIdx[p] {
					childVals = append(childVals, primal[cc])
				}
				d, err := partials(nodes[p].Type, childVals, f[p])
				if err != nil {
					return err
				}
				sens *= d[childPos[i]] * params[p]
				i = p
			}
			jacobian.Set(outRow, coefIdx[c], sens*f[c])
		}
	}
	return nil
}
