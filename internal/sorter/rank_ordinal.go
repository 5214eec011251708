package sorter

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"
)

// RankOrdinal sorts by replacing each
// objective's raw fitness column with its ordinal rank (the position in
// that objective's ascending sort, ties broken by lexicographic order of
// the whole fitness vector), then pre-filters pairs using the integer
// rank columns instead of floats: if i dominates j, every one of i's
// ordinal-rank columns is smaller than j's, so only pairs passing the
// column-wise rank comparison go on to the real fitness dominance test.
type RankOrdinal struct{}

func (RankOrdinal) Sort(fitness [][]float64, eps float64) [][]int {
	n := len(fitness)
	if n == 0 {
		return nil
	}
	m := len(fitness[0])

	// Each objective's ordinal column is independent of every other's
	// (it reads only fitness[·][k] and writes only column k of every
	// row), so the m columns fan out concurrently instead of running
	// one after another.
	ordinal := make([][]int, n)
	for i := range ordinal {
		ordinal[i] = make([]int, m)
	}
	g, _ := errgroup.WithContext(context.Background())
	for k := 0; k < m; k++ {
		k := k
		g.Go(func() error {
			order := make([]int, n)
			for i := range order {
				order[i] = i
			}
			slices.SortFunc(order, func(a, b int) int {
				switch {
				case fitness[a][k] < fitness[b][k]:
					return -1
				case fitness[a][k] > fitness[b][k]:
					return 1
				default:
					for j := range fitness[a] {
						if fitness[a][j] != fitness[b][j] {
							if fitness[a][j] < fitness[b][j] {
								return -1
							}
							return 1
						}
					}
					return 0
				}
			})
			for pos, i := range order {
				ordinal[i][k] = pos
			}
			return nil
		})
	}
	_ = g.Wait()

	dominatorCount := make([]int, n)
	dominates := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if ordinalDominates(ordinal[j], ordinal[i]) && dominatesIdx(fitness, j, i, eps) {
				dominatorCount[i]++
				dominates[j] = append(dominates[j], i)
			}
		}
	}
	return peelFronts(n, dominatorCount, dominates)
}

// ordinalDominates reports whether every rank column of a is <= the
// corresponding column of b, with at least one strictly less — the
// integer pre-filter; the caller still confirms with the real fitness
// dominance test to respect eps.
func ordinalDominates(a, b []int) bool {
	strict := false
	for k := range a {
		if a[k] > b[k] {
			return false
		}
		if a[k] < b[k] {
			strict = true
		}
	}
	return strict
}
