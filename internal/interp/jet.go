package interp

import (
	"fmt"

	"github.com/jsdoublel/symreg/internal/dataset"
	"github.com/jsdoublel/symreg/internal/expr"
	"gonum.org/v1/gonum/mat"
)

// jetWidth is the number of coefficients carried per dual-number stripe.
const jetWidth = 8

// Jet computes the Jacobian via forward-mode automatic differentiation
// using dual numbers: each node carries a primal value and a gradient
// vector of width D (one lane per coefficient active in the current
// stripe), propagated bottom-up in a single postfix sweep per stripe
// When the tree has more than jetWidth coefficients,
// multiple stripes are run, each covering a disjoint slice of
// coefficients. Must agree with Reverse and Forward to within a small
// numerical tolerance.
func (ip *Interpreter) Jet(tree *expr.Tree, ds dataset.Dataset, rng dataset.Range, coefficients []float64, jacobian *mat.Dense) error {
	if rng.Empty() {
		return nil
	}
	nodes := tree.Nodes()
	n := len(nodes)

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

	coeffNodes := tree.CoefficientIndices()
	numCoeffs := len(coeffNodes)

	primal := make([]float64, n)
	f := make([]float64, n)
	grad := make([][]float64, n)
	for i := range grad {
		grad[i] = make([]float64, jetWidth)
	}
	childVals := make([]float64, 0, 8)
	childGrads := make([][]float64, 0, 8)

	for stripe := 0; stripe < numCoeffs; stripe += jetWidth {
		width := jetWidth
		if stripe+width > numCoeffs {
			width = numCoeffs - stripe
		}
		stripeNodes := coeffNodes[stripe : stripe+width]
		stripePos := make(map[int]int, width)
		for k, c := range stripeNodes {
			stripePos[c] = k
		}

		for row, outRow := rng.Start, 0; row < rng.End; row, outRow = row+1, outRow+1 {
			for i, nd := range nodes {
				g := grad[i]
				for k := 0; k < width; k++ {
					g[k] = 0
				}
				switch {
				case nd.IsConstant():
					f[i] = 1
					primal[i] = params[i]
				case nd.IsVariable():
					f[i] = varCols[i][row]
					primal[i] = params[i] * f[i]
					if k, ok := stripePos[i]; ok {
						g[k] = f[i]
					}
				default:
					childVals = childVals[:0]
					childGrads = childGrads[:0]
					for _, c := range childIdx[i] {
						childVals = append(childVals, primal[c])
						childGrads = append(childGrads, grad[c])
					}
					f[i] = evalRaw(nd.Type, childVals)
					primal[i] = params[i] * f[i]
					d, err := partials(nd.Type, childVals, f[i])
					if err != nil {
						return err
					}
					for ci, cg := range childGrads {
						for k := 0; k < width; k++ {
							g[k] += d[ci] * cg[k]
						}
					}
					for k := 0; k < width; k++ {
						g[k] *= params[i]
					}
					if k, ok := stripePos[i]; ok {
						g[k] += f[i]
					}
				}
			}
			root := tree.Root()
			for k := 0; k < width; k++ {
				jacobian.Set(outRow, coefIdx[stripeNodes[k]], grad[root][k])
			}
		}
	}
	return nil
}
