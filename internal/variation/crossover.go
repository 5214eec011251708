// Package variation implements subtree crossover and a compound
// mutation operator. Every operator returns a new tree;
// none mutate their inputs.
package variation

import (
	"math/rand"

	"github.com/jsdoublel/symreg/internal/expr"
)

// CrossoverConfig bounds the result of a crossover call.
type CrossoverConfig struct {
	InternalProbability float64 // bias toward cutting at an internal node in parent A
	MaxLength           int
	MaxDepth            int
}

// Crossover splices a subtree from parent B into a cut point in parent
// A: with probability InternalProbability the cut lands on an internal
// node of A, otherwise on a leaf. The donor subtree from B is chosen
// among those that keep the offspring within MaxLength/MaxDepth; if none
// qualify, the smallest (a single terminal) is used, which always fits.
func Crossover(rng *rand.Rand, a, b *expr.Tree, cfg CrossoverConfig) (*expr.Tree, error) {
	cutA := selectCutNode(rng, a, cfg.InternalProbability)
	loA, hiA := a.Span(cutA)
	cutLen := hiA - loA + 1
	budgetLength := cfg.MaxLength - (a.Length() + 1 - cutLen)
	budgetDepth := cfg.MaxDepth - a.Node(cutA).Level

	cutB := selectDonorSubtree(rng, b, budgetLength, budgetDepth)
	loB, hiB := b.Span(cutB)

	aNodes := a.Nodes()
	bNodes := b.Nodes()
	out := make([]expr.Node, 0, loA+(hiB-loB+1)+(len(aNodes)-hiA-1))
	out = append(out, aNodes[:loA]...)
	out = append(out, bNodes[loB:hiB+1]...)
	out = append(out, aNodes[hiA+1:]...)
	return expr.FromNodes(out)
}

func selectCutNode(rng *rand.Rand, t *expr.Tree, internalProbability float64) int {
	var internal, leaves []int
	for i, n := range t.Nodes() {
		if n.IsLeaf() {
			leaves = append(leaves, i)
		} else {
			internal = append(internal, i)
		}
	}
	if rng.Float64() < internalProbability && len(internal) > 0 {
		return internal[rng.Intn(len(internal))]
	}
	if len(leaves) > 0 {
		return leaves[rng.Intn(len(leaves))]
	}
	return internal[rng.Intn(len(internal))]
}

// selectDonorSubtree picks a random subtree of t whose length and depth
// fit within the given budgets, falling back to the first terminal found
// if nothing qualifies.
func selectDonorSubtree(rng *rand.Rand, t *expr.Tree, maxLength, maxDepth int) int {
	var candidates []int
	smallestLeaf := -1
	for i, n := range t.Nodes() {
		if n.Length+1 <= maxLength && n.Depth <= maxDepth {
			candidates = append(candidates, i)
		}
		if n.IsLeaf() && smallestLeaf == -1 {
			smallestLeaf = i
		}
	}
	if len(candidates) == 0 {
		return smallestLeaf
	}
	return candidates[rng.Intn(len(candidates))]
}
