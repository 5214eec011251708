package creator

import (
	"math/rand"

	"github.com/jsdoublel/symreg/internal/expr"
	"gonum.org/v1/gonum/stat/distuv"
)

// Grow builds a tree by classical random grow: at every slot, an
// independent coin flip picks a function or a terminal, until maxDepth
// is reached (which forces a terminal). targetLength
// and minDepth are advisory: Grow retries a bounded number of times to
// satisfy minDepth, but does not fail if it cannot.
func Grow(rng *rand.Rand, cfg Config, targetLength, minDepth, maxDepth int) (*expr.Tree, error) {
	cfg = cfg.withDefaults()
	const maxAttempts = 32
	var best *expr.Tree
	for attempt := 0; attempt < maxAttempts; attempt++ {
		nodes, root, err := growSubtree(rng, cfg, 0, maxDepth)
		if err != nil {
			return nil, err
		}
		tree, err := toPostfix(nodes, root)
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

func growSubtree(rng *rand.Rand, cfg Config, depth, maxDepth int) ([]buildNode, int, error) {
	pickTerminal := distuv.Bernoulli{P: 0.5, Src: rng}.Rand() == 1
	if depth >= maxDepth || pickTerminal {
		t, err := terminal(rng, cfg)
		if err != nil {
			return nil, 0, err
		}
		return []buildNode{t}, 0, nil
	}

	ty, err := cfg.Primitives.SampleFunction(rng, 1, 255, cfg.Primitives.Functions())
	if err != nil {
		t, terr := terminal(rng, cfg)
		if terr != nil {
			return nil, 0, terr
		}
		return []buildNode{t}, 0, nil
	}
	min, max := cfg.Primitives.ArityRange(ty)
	arity := min
	if max > min {
		arity = min + rng.Intn(max-min+1)
	}

	var nodes []buildNode
	children := make([]int, 0, arity)
	for i := 0; i < arity; i++ {
		sub, subRoot, err := growSubtree(rng, cfg, depth+1, maxDepth)
		if err != nil {
			return nil, 0, err
		}
		offset := len(nodes)
		nodes = append(nodes, sub...)
		for j := range nodes[offset:] {
			for k, c := range nodes[offset+j].children {
				nodes[offset+j].children[k] = c + offset
			}
		}
		children = append(children, offset+subRoot)
	}
	nodes = append(nodes, buildNode{typ: ty, arity: arity, children: children})
	return nodes, len(nodes) - 1, nil
}
