package sorter

import "github.com/bits-and-blooms/bitset"

// Deductive sorts by scanning the lexicographic order twice each round
// — once to test every not-yet-sorted individual against every other
// not-yet-sorted individual, marking it dominated or accepting it into
// the current front — using word-packed bitsets for the
// sorted/dominated flags.
type Deductive struct{}

func (Deductive) Sort(fitness [][]float64, eps float64) [][]int {
	n := len(fitness)
	if n == 0 {
		return nil
	}
	order := lexOrder(fitness)
	sorted := bitset.New(uint(n))

	var fronts [][]int
	remaining := n
	for remaining > 0 {
		dominated := bitset.New(uint(n))
		var front []int
		for _, p := range order {
			if sorted.Test(uint(p)) || dominated.Test(uint(p)) {
				continue
			}
			isDominated := false
			for _, q := range order {
				if q == p || sorted.Test(uint(q)) {
					continue
				}
				if dominatesIdx(fitness, q, p, eps) {
					isDominated = true
					break
				}
			}
			if isDominated {
				dominated.Set(uint(p))
			} else {
				front = append(front, p)
			}
		}
		for _, p := range front {
			sorted.Set(uint(p))
		}
		remaining -= len(front)
		fronts = append(fronts, front)
	}
	return fronts
}
