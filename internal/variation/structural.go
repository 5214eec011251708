package variation

import (
	"math/rand"

	"github.com/jsdoublel/symreg/internal/creator"
	"github.com/jsdoublel/symreg/internal/expr"
	"github.com/jsdoublel/symreg/internal/symbol"
)

// InsertSubtree inserts a fresh subtree as an extra child of a randomly
// chosen commutative node whose arity is below its primitive maximum.
func InsertSubtree(rng *rand.Rand, t *expr.Tree, cfg MutationConfig) (*expr.Tree, error) {
	var candidates []int
	for i, n := range t.Nodes() {
		if n.IsLeaf() || !symbol.IsCommutative(n.Type) {
			continue
		}
		_, max := cfg.Primitives.ArityRange(n.Type)
		if int(n.Arity) < max {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoMutationTarget
	}
	parentIdx := candidates[rng.Intn(len(candidates))]
	parent := t.Node(parentIdx)

	budgetLength := cfg.MaxLength - (t.Length() + 1)
	if budgetLength < 1 {
		budgetLength = 1
	}
	budgetDepth := cfg.MaxDepth - parent.Level - 1
	if budgetDepth < 0 {
		budgetDepth = 0
	}
	fresh, err := creator.Grow(rng, cfg.Creator, budgetLength, 0, budgetDepth)
	if err != nil {
		return nil, err
	}

	nodes := t.Nodes()
	out := make([]expr.Node, 0, len(nodes)+fresh.Length()+1)
	out = append(out, nodes[:parentIdx]...)
	out = append(out, fresh.Nodes()...)
	parent.Arity++
	out = append(out, parent)
	out = append(out, nodes[parentIdx+1:]...)
	return expr.FromNodes(out)
}

// ShuffleSubtrees permutes the child order of a randomly chosen function
// node with at least two children.
func ShuffleSubtrees(rng *rand.Rand, t *expr.Tree, _ MutationConfig) (*expr.Tree, error) {
	var candidates []int
	for i, n := range t.Nodes() {
		if n.Arity >= 2 {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoMutationTarget
	}
	idx := candidates[rng.Intn(len(candidates))]
	children := childSpans(t, idx)

	nodes := t.Nodes()
	parts := make([][]expr.Node, len(children))
	for i, sp := range children {
		parts[i] = append([]expr.Node(nil), nodes[sp.lo:sp.hi+1]...)
	}
	rng.Shuffle(len(parts), func(i, j int) { parts[i], parts[j] = parts[j], parts[i] })

	out := make([]expr.Node, 0, len(nodes))
	out = append(out, nodes[:children[0].lo]...)
	for _, p := range parts {
		out = append(out, p...)
	}
	out = append(out, nodes[idx:]...)
	return expr.FromNodes(out)
}
