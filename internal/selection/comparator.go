// Package selection implements the parent selectors and reinserters.
// Every operator works over abstract population indices and
// a Comparator callback, so it never needs to know whether it is comparing
// raw fitness, a scalarized objective, or a crowded multi-objective rank.
package selection

// Comparator reports whether individual i is better (negative), worse
// (positive), or tied (zero) with individual j. Selectors and reinserters
// never interpret fitness directly; they only call Comparator.
type Comparator func(i, j int) int

// ByObjective builds a single-objective Comparator over fitness, where
// lower values are better (the convention used throughout this package's
// evaluators).
func ByObjective(fitness []float64) Comparator {
	return func(i, j int) int {
		switch {
		case fitness[i] < fitness[j]:
			return -1
		case fitness[i] > fitness[j]:
			return 1
		default:
			return 0
		}
	}
}

// ByRankAndCrowding builds the crowded-comparison operator of NSGA-II:
// lower Pareto rank wins; ties are broken by higher crowding distance
// (more isolated individuals are preferred to preserve diversity).
func ByRankAndCrowding(rank []int, distance []float64) Comparator {
	return func(i, j int) int {
		if rank[i] != rank[j] {
			if rank[i] < rank[j] {
				return -1
			}
			return 1
		}
		switch {
		case distance[i] > distance[j]:
			return -1
		case distance[i] < distance[j]:
			return 1
		default:
			return 0
		}
	}
}
