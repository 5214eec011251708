package selection

import "slices"

// KeepBest merges population and offspring index sets and returns the
// best len(population) of them by Cmp.
func KeepBest(population, offspring []int, cmp Comparator) []int {
	combined := make([]int, 0, len(population)+len(offspring))
	combined = append(combined, population...)
	combined = append(combined, offspring...)
	slices.SortFunc(combined, cmp)
	if len(combined) > len(population) {
		combined = combined[:len(population)]
	}
	out := make([]int, len(combined))
	copy(out, combined)
	return out
}

// ReplaceWorst sorts population worst-to-best and offspring best-to-worst,
// then pairs the best offspring with the worst population member
// one-for-one until either side is exhausted; an offspring takes its
// partner's place only if Cmp ranks it strictly better. The returned
// slice is a new
// copy; population is left untouched.
func ReplaceWorst(population, offspring []int, cmp Comparator) []int {
	pop := make([]int, len(population))
	copy(pop, population)
	slices.SortFunc(pop, func(i, j int) int { return -cmp(i, j) }) // worst first

	off := make([]int, len(offspring))
	copy(off, offspring)
	slices.SortFunc(off, cmp) // best first

	n := len(pop)
	if len(off) < n {
		n = len(off)
	}
	for i := 0; i < n; i++ {
		if cmp(off[i], pop[i]) < 0 {
			pop[i] = off[i]
		}
	}
	return pop
}
