// Package sorter implements a suite of non-dominated sorting algorithms
// — distinct implementation strategies that all partition a population
// into Pareto fronts identically — plus crowding distance and a Pareto
// archive.
package sorter

import (
	"slices"

	"github.com/jsdoublel/symreg/internal/population"
)

// Sorter partitions fitness vectors into Pareto fronts. Front 0 is the
// non-dominated set; each subsequent front is non-dominated once every
// earlier front is removed. eps controls the epsilon-equality tolerance
// used by the underlying dominance test.
type Sorter interface {
	Sort(fitness [][]float64, eps float64) [][]int
}

// dominatesIdx reports whether i dominates j under population.Dominates.
func dominatesIdx(fitness [][]float64, i, j int, eps float64) bool {
	return population.Dominates(fitness[i], fitness[j], eps) == population.Left
}

// lexOrder returns indices [0,n) sorted lexicographically by fitness,
// the pre-sort every algorithm in this package assumes its input has
// already had applied.
func lexOrder(fitness [][]float64) []int {
	order := make([]int, len(fitness))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		fa, fb := fitness[a], fitness[b]
		for k := range fa {
			if fa[k] < fb[k] {
				return -1
			}
			if fa[k] > fb[k] {
				return 1
			}
		}
		return 0
	})
	return order
}

// ranksToFronts converts a per-individual front-rank assignment into the
// list-of-fronts shape every Sorter returns.
func ranksToFronts(rank []int) [][]int {
	maxRank := -1
	for _, r := range rank {
		if r > maxRank {
			maxRank = r
		}
	}
	fronts := make([][]int, maxRank+1)
	for i, r := range rank {
		fronts[r] = append(fronts[r], i)
	}
	return fronts
}

// peelFronts runs the classic fast-non-dominated-sort cascade shared by
// every counting-style sorter in this package (Rank-Intersect,
// Rank-Ordinal, Merge-sort-based, Dominance-Degree): front 0 is every
// individual with zero dominators; each subsequent front removes the
// previous front and decrements the dominator count of everyone its
// members dominate. Each sorter builds dominatorCount/dominates by its
// own technique, but they all converge on the same fronts because the
// cascade itself is the single source of truth for "what front is i in".
func peelFronts(n int, dominatorCount []int, dominates [][]int) [][]int {
	remaining := make([]int, n)
	copy(remaining, dominatorCount)
	var fronts [][]int
	assigned := 0
	for assigned < n {
		var front []int
		for i := 0; i < n; i++ {
			if remaining[i] == 0 {
				front = append(front, i)
			}
		}
		for _, i := range front {
			remaining[i] = -1
		}
		for _, i := range front {
			for _, j := range dominates[i] {
				if remaining[j] > 0 {
					remaining[j]--
				}
			}
		}
		fronts = append(fronts, front)
		assigned += len(front)
	}
	return fronts
}
