package sorter

import "github.com/bits-and-blooms/bitset"

// RankIntersect sorts by, for each individual i, building per
// objective a bitset of candidates that are not
// strictly worse than i in that objective, then intersects the
// per-objective bitsets across all M objectives in O(words) per pair.
// The surviving candidates are exactly i's potential dominators; a
// direct dominance check over that narrowed set yields the real
// dominator count and adjacency, which peelFronts turns into fronts.
type RankIntersect struct{}

func allSet(n int) *bitset.BitSet {
	b := bitset.New(uint(n))
	for i := 0; i < n; i++ {
		b.Set(uint(i))
	}
	return b
}

func (RankIntersect) Sort(fitness [][]float64, eps float64) [][]int {
	n := len(fitness)
	if n == 0 {
		return nil
	}
	m := len(fitness[0])

	candidates := make([]*bitset.BitSet, n)
	for i := range candidates {
		candidates[i] = allSet(n)
	}
	for k := 0; k < m; k++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if j != i && fitness[j][k] > fitness[i][k]+eps {
					candidates[i].Clear(uint(j))
				}
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
