package sorter

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"
)

// BestOrder sorts by independently ranking each objective: every objective is
// sorted independently, each individual's "comparison key" is the worst
// (largest) of its positions across all per-objective sorted orders,
// and individuals are then inserted into the first front whose members
// don't dominate them, processed in ascending comparison-key order.
// Ties within an objective are broken by lexicographic order of the
// whole fitness vector, so any true dominator of i sorts before i in
// every objective and always carries a strictly smaller comparison key and is
// guaranteed to have already been placed in a front by the time i is
// considered. This is correct only when the caller has already removed
// exact duplicates.
type BestOrder struct{}

func (BestOrder) Sort(fitness [][]float64, eps float64) [][]int {
	n := len(fitness)
	if n == 0 {
		return nil
	}
	m := len(fitness[0])

	// Each objective's sort is independent of every other's (it reads
	// only fitness[·][k] and writes only position[k]), so the m columns
	// fan out concurrently instead of running one after another.
	position := make([][]int, m)
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
			col := make([]int, n)
			for pos, i := range order {
				col[i] = pos
			}
			position[k] = col
			return nil
		})
	}
	_ = g.Wait()

	key := make([]int, n)
	for i := 0; i < n; i++ {
		worst := 0
		for k := 0; k < m; k++ {
			if position[k][i] > worst {
				worst = position[k][i]
			}
		}
		key[i] = worst
	}

	processOrder := make([]int, n)
	for i := range processOrder {
		processOrder[i] = i
	}
	slices.SortFunc(processOrder, func(a, b int) int {
		if key[a] != key[b] {
			return key[a] - key[b]
		}
		return a - b
	})

	var fronts [][]int
	for _, p := range processOrder {
		placed := false
		for f := range fronts {
			dominated := false
			for _, q := range fronts[f] {
				if dominatesIdx(fitness, q, p, eps) {
					dominated = true
					break
				}
			}
			if !dominated {
				fronts[f] = append(fronts[f], p)
				placed = true
				break
			}
		}
		if !placed {
			fronts = append(fronts, []int{p})
		}
	}
	return fronts
}
