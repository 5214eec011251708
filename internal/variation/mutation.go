package variation

import (
	"errors"
	"math/rand"

	"github.com/jsdoublel/symreg/internal/creator"
	"github.com/jsdoublel/symreg/internal/expr"
	"github.com/jsdoublel/symreg/internal/symbol"
	"gonum.org/v1/gonum/stat/distuv"
)

var ErrNoMutationTarget = errors.New("variation: no eligible node for this mutation")

// MutationConfig bounds every mutation operator in this package.
type MutationConfig struct {
	Primitives     *symbol.Set
	Creator        creator.Config
	MaxLength      int
	MaxDepth       int
	PerturbStd     float64     // OnePoint
	DiscreteValues []float64   // DiscretePoint's weighted pool
	DiscreteWeight []float64   // parallel to DiscreteValues; uniform if nil
}

func (c MutationConfig) withDefaults() MutationConfig {
	if c.PerturbStd == 0 {
		c.PerturbStd = 0.2
	}
	if len(c.DiscreteValues) == 0 {
		c.DiscreteValues = defaultDiscreteConstants
	}
	return c
}

var defaultDiscreteConstants = []float64{0, 1, -1, 2, 0.5, 3.14159265358979, 2.71828182845905}

func leafIndices(t *expr.Tree) []int {
	var out []int
	for i, n := range t.Nodes() {
		if n.IsLeaf() {
			out = append(out, i)
		}
	}
	return out
}

func functionIndices(t *expr.Tree) []int {
	var out []int
	for i, n := range t.Nodes() {
		if !n.IsLeaf() {
			out = append(out, i)
		}
	}
	return out
}

// OnePoint resamples the value of one randomly chosen leaf from
// Normal(currentValue, PerturbStd).
func OnePoint(rng *rand.Rand, t *expr.Tree, cfg MutationConfig) (*expr.Tree, error) {
	cfg = cfg.withDefaults()
	leaves := leafIndices(t)
	if len(leaves) == 0 {
		return nil, ErrNoMutationTarget
	}
	idx := leaves[rng.Intn(len(leaves))]
	out := t.Clone()
	n := out.Node(idx)
	dist := distuv.Normal{Mu: n.Value, Sigma: cfg.PerturbStd, Src: rng}
	n.Value = dist.Rand()
	out.SetNode(idx, n)
	if err := out.UpdateNodes(); err != nil {
		return nil, err
	}
	return out, nil
}

// DiscretePoint resamples one leaf's value from a discrete weighted pool
// (e.g. {0, 1, pi, e, ...}).
func DiscretePoint(rng *rand.Rand, t *expr.Tree, cfg MutationConfig) (*expr.Tree, error) {
	cfg = cfg.withDefaults()
	leaves := leafIndices(t)
	if len(leaves) == 0 {
		return nil, ErrNoMutationTarget
	}
	idx := leaves[rng.Intn(len(leaves))]
	weights := cfg.DiscreteWeight
	if len(weights) != len(cfg.DiscreteValues) {
		weights = make([]float64, len(cfg.DiscreteValues))
		for i := range weights {
			weights[i] = 1
		}
	}
	cat := distuv.NewCategorical(weights, rng)
	value := cfg.DiscreteValues[int(cat.Rand())]

	out := t.Clone()
	n := out.Node(idx)
	n.Value = value
	out.SetNode(idx, n)
	if err := out.UpdateNodes(); err != nil {
		return nil, err
	}
	return out, nil
}

// ChangeVariable replaces a randomly chosen variable leaf's column hash
// with a different eligible input.
func ChangeVariable(rng *rand.Rand, t *expr.Tree, cfg MutationConfig) (*expr.Tree, error) {
	vars := cfg.Primitives.Variables()
	if len(vars) < 2 {
		return nil, ErrNoMutationTarget
	}
	var candidates []int
	for i, n := range t.Nodes() {
		if n.IsVariable() {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoMutationTarget
	}
	idx := candidates[rng.Intn(len(candidates))]
	out := t.Clone()
	n := out.Node(idx)
	for {
		v := vars[rng.Intn(len(vars))]
		if v.Hash != n.HashValue {
			n.HashValue = v.Hash
			break
		}
	}
	out.SetNode(idx, n)
	if err := out.UpdateNodes(); err != nil {
		return nil, err
	}
	return out, nil
}

// ChangeFunction retypes a randomly chosen function node to a different
// enabled type whose arity range covers its current arity.
func ChangeFunction(rng *rand.Rand, t *expr.Tree, cfg MutationConfig) (*expr.Tree, error) {
	funcs := functionIndices(t)
	if len(funcs) == 0 {
		return nil, ErrNoMutationTarget
	}
	idx := funcs[rng.Intn(len(funcs))]
	out := t.Clone()
	n := out.Node(idx)

	var candidates []symbol.Type
	for _, ty := range cfg.Primitives.Functions() {
		if ty == n.Type {
			continue
		}
		min, max := cfg.Primitives.ArityRange(ty)
		if int(n.Arity) >= min && int(n.Arity) <= max {
			candidates = append(candidates, ty)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoMutationTarget
	}
	n.Type = candidates[rng.Intn(len(candidates))]
	out.SetNode(idx, n)
	if err := out.UpdateNodes(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceSubtree replaces a randomly chosen node's subtree with a fresh
// one built by creator.Balanced from cfg.Creator, respecting
// MaxLength/MaxDepth.
func ReplaceSubtree(rng *rand.Rand, t *expr.Tree, cfg MutationConfig) (*expr.Tree, error) {
	idx := rng.Intn(t.Length() + 1)
	lo, hi := t.Span(idx)
	budgetLength := cfg.MaxLength - (t.Length() + 1 - (hi - lo + 1))
	budgetDepth := cfg.MaxDepth - t.Node(idx).Level
	if budgetLength < 1 {
		budgetLength = 1
	}
	if budgetDepth < 0 {
		budgetDepth = 0
	}
	fresh, err := creator.Balanced(rng, cfg.Creator, budgetLength, 0, budgetDepth)
	if err != nil {
		return nil, err
	}
	nodes := t.Nodes()
	out := make([]expr.Node, 0, lo+fresh.Length()+1+(len(nodes)-hi-1))
	out = append(out, nodes[:lo]...)
	out = append(out, fresh.Nodes()...)
	out = append(out, nodes[hi+1:]...)
	return expr.FromNodes(out)
}

// RemoveSubtree deletes a randomly chosen child subtree of a randomly
// chosen function node whose arity exceeds its primitive minimum,
// decrementing that node's arity by one.
func RemoveSubtree(rng *rand.Rand, t *expr.Tree, cfg MutationConfig) (*expr.Tree, error) {
	var candidates []int
	for i, n := range t.Nodes() {
		if n.IsLeaf() {
			continue
		}
		min, _ := cfg.Primitives.ArityRange(n.Type)
		if int(n.Arity) > min {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoMutationTarget
	}
	parentIdx := candidates[rng.Intn(len(candidates))]
	children := childSpans(t, parentIdx)
	victim := children[rng.Intn(len(children))]

	out := t.Clone()
	parent := out.Node(parentIdx)
	nodes := out.Nodes()
	trimmed := make([]expr.Node, 0, len(nodes)-(victim.hi-victim.lo+1))
	trimmed = append(trimmed, nodes[:victim.lo]...)
	trimmed = append(trimmed, nodes[victim.hi+1:parentIdx]...)
	parent.Arity--
	trimmed = append(trimmed, parent)
	if parentIdx+1 < len(nodes) {
		trimmed = append(trimmed, nodes[parentIdx+1:]...)
	}
	return expr.FromNodes(trimmed)
}

type span struct{ lo, hi int }

// childSpans returns the [lo,hi] postfix window of each immediate child
// of node i, left to right.
func childSpans(t *expr.Tree, i int) []span {
	idx := t.Indices(i) // right-to-left
	out := make([]span, len(idx))
	for k, c := range idx {
		lo, hi := t.Span(c)
		out[len(idx)-1-k] = span{lo, hi}
	}
	return out
}
