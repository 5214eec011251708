package variation

import (
	"math/rand"

	"github.com/jsdoublel/symreg/internal/expr"
	"gonum.org/v1/gonum/stat/distuv"
)

type mutationOp func(*rand.Rand, *expr.Tree, MutationConfig) (*expr.Tree, error)

// MultiMutation weighted-randomly picks among the eight point and
// structural mutation operators, retrying a different
// operator if the chosen one has no eligible target (e.g.
// ChangeVariable on a single-input dataset).
type MultiMutation struct {
	Config  MutationConfig
	Weights map[string]float64 // operator name -> weight; zero/missing disables it
}

var allOperators = []struct {
	name string
	op   mutationOp
}{
	{"OnePoint", OnePoint},
	{"DiscretePoint", DiscretePoint},
	{"ChangeVariable", ChangeVariable},
	{"ChangeFunction", ChangeFunction},
	{"ReplaceSubtree", ReplaceSubtree},
	{"InsertSubtree", InsertSubtree},
	{"RemoveSubtree", RemoveSubtree},
	{"ShuffleSubtrees", ShuffleSubtrees},
}

// Mutate applies one randomly chosen operator to t, skipping disabled
// operators and retrying on ErrNoMutationTarget until one succeeds or
// every enabled operator has been tried.
func (m MultiMutation) Mutate(rng *rand.Rand, t *expr.Tree) (*expr.Tree, error) {
	ops := make([]mutationOp, 0, len(allOperators))
	weights := make([]float64, 0, len(allOperators))
	for _, o := range allOperators {
		w := 1.0
		if m.Weights != nil {
			w = m.Weights[o.name]
		}
		if w <= 0 {
			continue
		}
		ops = append(ops, o.op)
		weights = append(weights, w)
	}
	if len(ops) == 0 {
		return nil, ErrNoMutationTarget
	}

	remaining := append([]int(nil), indexRange(len(ops))...)
	for len(remaining) > 0 {
		w := make([]float64, len(remaining))
		for i, r := range remaining {
			w[i] = weights[r]
		}
		cat := distuv.NewCategorical(w, rng)
		pick := int(cat.Rand())
		chosen := remaining[pick]

		result, err := ops[chosen](rng, t, m.Config)
		if err == nil {
			return result, nil
		}
		if err != ErrNoMutationTarget {
			return nil, err
		}
		remaining = append(remaining[:pick], remaining[pick+1:]...)
	}
	return nil, ErrNoMutationTarget
}

func indexRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
