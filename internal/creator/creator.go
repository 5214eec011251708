// Package creator implements the tree creators: Balanced
// (breadth-first with an open-slot horizon), Grow (classical recursive
// descent) and PTC2 (Langdon's probabilistic algorithm bounded by target
// length). All three share the primitive-set-constrained vocabulary and
// produce trees satisfying the same postfix invariants.
package creator

import (
	"errors"
	"math/rand"

	"github.com/jsdoublel/symreg/internal/expr"
	"github.com/jsdoublel/symreg/internal/symbol"
	"gonum.org/v1/gonum/stat/distuv"
)

var ErrNoTerminal = errors.New("creator: primitive set has no usable terminal")

// Config parameterizes every creator in this package.
type Config struct {
	Primitives   *symbol.Set
	VariableProb float64 // probability a terminal is a variable rather than a constant
	ConstantMean float64
	ConstantStd  float64

	// IrregularityBias, used by Balanced and PTC2, inflates the sampling
	// probability of small-arity primitives to reduce tree regularity.
	IrregularityBias float64
}

func (c Config) withDefaults() Config {
	if c.VariableProb == 0 {
		c.VariableProb = 0.8
	}
	if c.ConstantStd == 0 {
		c.ConstantStd = 1
	}
	return c
}

// buildNode is the mutable construction-time representation creators
// assemble before a single conversion to postfix expr.Node form.
type buildNode struct {
	typ      symbol.Type
	arity    int
	hash     uint64
	value    float64
	children []int
}

// terminal samples a leaf buildNode: a variable (drawn uniformly from the
// primitive set's eligible inputs) with probability VariableProb,
// otherwise a constant drawn from Normal(ConstantMean, ConstantStd).
func terminal(rng *rand.Rand, cfg Config) (buildNode, error) {
	vars := cfg.Primitives.Variables()
	useVar := len(vars) > 0 && rng.Float64() < cfg.VariableProb
	if useVar {
		v := vars[rng.Intn(len(vars))]
		return buildNode{typ: symbol.Variable, hash: v.Hash, value: 1}, nil
	}
	if len(vars) == 0 && cfg.VariableProb >= 1 {
		return buildNode{}, ErrNoTerminal
	}
	dist := distuv.Normal{Mu: cfg.ConstantMean, Sigma: cfg.ConstantStd, Src: rng}
	return buildNode{typ: symbol.Constant, value: dist.Rand()}, nil
}

// toPostfix converts a buildNode graph (indexed by slice position, with
// the root at index root) into a well-formed Tree by emitting a
// postorder walk from root.
func toPostfix(nodes []buildNode, root int) (*expr.Tree, error) {
	out := make([]expr.Node, 0, len(nodes))
	var visit func(i int)
	visit = func(i int) {
		for _, c := range nodes[i].children {
			visit(c)
		}
		n := nodes[i]
		switch n.typ {
		case symbol.Variable:
			out = append(out, expr.NewVariable(n.hash, n.value))
		case symbol.Constant:
			out = append(out, expr.NewConstant(n.value))
		default:
			out = append(out, expr.NewFunction(n.typ, n.arity, true))
		}
	}
	visit(root)
	return expr.FromNodes(out)
}
