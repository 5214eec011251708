package sorter

import (
	"slices"

	"github.com/bits-and-blooms/bitset"
)

// MergeSort sorts with a per-objective stable sort that feeds an
// incremental bitset-dominance update — each objective's
// "not worse than i" bitset is intersected into i's running candidate
// set one objective at a time, short-circuiting as soon as a
// candidate set is empty, rather than RankIntersect's all-objectives-
// at-once construction.
type MergeSort struct{}

func (MergeSort) Sort(fitness [][]float64, eps float64) [][]int {
	n := len(fitness)
	if n == 0 {
		return nil
	}
	m := len(fitness[0])

	candidates := make([]*bitset.BitSet, n)
	active := make([]bool, n)
	for i := range candidates {
		candidates[i] = allSet(n)
		candidates[i].Clear(uint(i))
		active[i] = true
	}

	for k := 0; k < m; k++ {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		slices.SortStableFunc(order, func(a, b int) int {
			switch {
			case fitness[a][k] < fitness[b][k]:
				return -1
			case fitness[a][k] > fitness[b][k]:
				return 1
			default:
				return 0
			}
		})
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for _, j := range order {
				if j == i {
					continue
				}
				if fitness[j][k] > fitness[i][k]+eps {
					candidates[i].Clear(uint(j))
				}
			}
			if candidates[i].None() {
				active[i] = false
			}
		}
	}

	dominatorCount := make([]int, n)
	dominates := make([][]int, n)
	for i := 0; i < n; i++ {
		for j, ok := candidates[i].NextSet(0); ok; j, ok = candidates[i].NextSet(j + 1) {
			jj := int(j)
			if jj != i && dominatesIdx(fitness, jj, i, eps) {
				dominatorCount[i]++
				dominates[jj] = append(dominates[jj], i)
			}
		}
	}
	return peelFronts(n, dominatorCount, dominates)
}
