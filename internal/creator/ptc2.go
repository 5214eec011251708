package creator

import (
	"math/rand"

	"github.com/jsdoublel/symreg/internal/expr"
	"github.com/jsdoublel/symreg/internal/symbol"
)

// PTC2 implements Langdon's probabilistic tree creator, using
// targetLength as a soft bound: a non-terminal is picked
// uniformly at random from an open queue and expanded; once the tree's
// length reaches targetLength, every remaining open slot is forced to a
// terminal.
func PTC2(rng *rand.Rand, cfg Config, targetLength, minDepth, maxDepth int) (*expr.Tree, error) {
	cfg = cfg.withDefaults()
	const maxAttempts = 32
	var best *expr.Tree
	for attempt := 0; attempt < maxAttempts; attempt++ {
		tree, err := ptc2Once(rng, cfg, targetLength, maxDepth)
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

func ptc2Once(rng *rand.Rand, cfg Config, targetLength, maxDepth int) (*expr.Tree, error) {
	if targetLength <= 1 {
		t, err := terminal(rng, cfg)
		if err != nil {
			return nil, err
		}
		return toPostfix([]buildNode{t}, 0)
	}

	nodes := make([]buildNode, 1)
	depthOf := []int{0}
	open := []int{0} // slots still to expand
	length := 1

	for len(open) > 0 {
		pos := rng.Intn(len(open))
		idx := open[pos]
		open[pos] = open[len(open)-1]
		open = open[:len(open)-1]
		depth := depthOf[idx]

		forceTerminal := depth >= maxDepth || length >= targetLength
		var (
			ty symbol.Type
			ok bool
		)
		if !forceTerminal {
			ty, ok = pickBalancedFunction(rng, cfg, depth, maxDepth, targetLength-length)
		}
		if !ok {
			t, err := terminal(rng, cfg)
			if err != nil {
				return nil, err
			}
			nodes[idx] = t
			continue
		}

		min, _ := cfg.Primitives.ArityRange(ty)
		arity := min
		if arity < 1 {
			arity = 1
		}
		children := make([]int, arity)
		for i := 0; i < arity; i++ {
			nodes = append(nodes, buildNode{})
			childIdx := len(nodes) - 1
			depthOf = append(depthOf, depth+1)
			children[i] = childIdx
			open = append(open, childIdx)
			length++
		}
		nodes[idx] = buildNode{typ: ty, arity: arity, children: children}
	}
	return toPostfix(nodes, 0)
}
