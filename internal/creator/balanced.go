package creator

import (
	"math/rand"

	"github.com/jsdoublel/symreg/internal/expr"
	"github.com/jsdoublel/symreg/internal/symbol"
)

// Balanced grows a tree breadth-first, maintaining a horizon of open
// expansion slots. At each slot it samples from functions whose arity
// range overlaps the remaining length budget; IrregularityBias inflates
// the sampling probability of small-arity (unary) primitives to reduce
// tree regularity. The breadth-first layout is
// converted to postfix once construction finishes.
func Balanced(rng *rand.Rand, cfg Config, targetLength, minDepth, maxDepth int) (*expr.Tree, error) {
	cfg = cfg.withDefaults()
	const maxAttempts = 32
	var best *expr.Tree
	for attempt := 0; attempt < maxAttempts; attempt++ {
		tree, err := balancedOnce(rng, cfg, targetLength, maxDepth)
		if err != nil {
			return nil, err
		}
		best = tree
		if tree.Node(tree.Root()).Depth >= minDepth {
			return tree, nil
		}
	}
	return best, nil
}

func balancedOnce(rng *rand.Rand, cfg Config, targetLength, maxDepth int) (*expr.Tree, error) {
	nodes := make([]buildNode, 1)
	depthOf := []int{0}
	queue := []int{0}
	remaining := targetLength - 1

	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		depth := depthOf[idx]

		ty, ok := pickBalancedFunction(rng, cfg, depth, maxDepth, remaining)
		if !ok {
			t, err := terminal(rng, cfg)
			if err != nil {
				return nil, err
			}
			nodes[idx] = t
			continue
		}

		min, max := cfg.Primitives.ArityRange(ty)
		arity := min
		if max > arity && remaining > arity {
			upper := max
			if remaining < upper {
				upper = remaining
			}
			if upper > arity {
				arity += rng.Intn(upper - arity + 1)
			}
		}
		if arity > remaining {
			arity = remaining
		}
		if arity < min {
			t, err := terminal(rng, cfg)
			if err != nil {
				return nil, err
			}
			nodes[idx] = t
			continue
		}

		children := make([]int, arity)
		for i := 0; i < arity; i++ {
			nodes = append(nodes, buildNode{})
			childIdx := len(nodes) - 1
			depthOf = append(depthOf, depth+1)
			children[i] = childIdx
			queue = append(queue, childIdx)
		}
		nodes[idx] = buildNode{typ: ty, arity: arity, children: children}
		remaining -= arity
	}
	return toPostfix(nodes, 0)
}

func pickBalancedFunction(rng *rand.Rand, cfg Config, depth, maxDepth, remaining int) (symbol.Type, bool) {
	if depth >= maxDepth || remaining <= 0 {
		return 0, false
	}
	candidates := cfg.Primitives.Functions()
	if rng.Float64() < cfg.IrregularityBias {
		unary := make([]symbol.Type, 0, len(candidates))
		for _, t := range candidates {
			if min, _ := cfg.Primitives.ArityRange(t); min == 1 {
				unary = append(unary, t)
			}
		}
		if len(unary) > 0 {
			candidates = unary
		}
	}
	ty, err := cfg.Primitives.SampleFunction(rng, 1, remaining, candidates)
	if err != nil {
		return 0, false
	}
	return ty, true
}
