package sorter

import "github.com/jsdoublel/symreg/internal/population"

// Archive is a Pareto archive: a list of non-dominated individuals in
// insertion order (members are not sorted). Insert rejects anything dominated by or epsilon-equal to
// an existing member, and otherwise prunes every member the new entry
// dominates before appending it. Mutated only by the single reinsertion
// task of the algorithm driver, so it needs no internal locking.
type Archive struct {
	eps     float64
	members []population.Individual
}

func NewArchive(eps float64) *Archive {
	return &Archive{eps: eps}
}

func (a *Archive) Members() []population.Individual { return a.members }

func (a *Archive) Len() int { return len(a.members) }

// Insert adds x if it is not dominated by, and not epsilon-equal to,
// any current member; it then removes every member x dominates.
// Returns whether x was inserted; after a true return, no member
// dominates x and x dominates no member.
func (a *Archive) Insert(x population.Individual) bool {
	for _, m := range a.members {
		if population.EpsilonEqual(m.Fitness, x.Fitness, a.eps) {
			return false
		}
		if population.Dominates(m.Fitness, x.Fitness, a.eps) == population.Left {
			return false
		}
	}
	kept := a.members[:0:0]
	for _, m := range a.members {
		if population.Dominates(x.Fitness, m.Fitness, a.eps) != population.Left {
			kept = append(kept, m)
		}
	}
	kept = append(kept, x)
	a.members = kept
	return true
}

// Clear empties the archive.
func (a *Archive) Clear() { a.members = nil }
