package offspring

import (
	"errors"
	"math/rand"
	"sync/atomic"

	"github.com/jsdoublel/symreg/internal/population"
)

// ErrSelectionPressureExceeded signals that OffspringSelection's
// generation budget for this call has been exhausted without producing
// an accepted child; the algorithm driver treats this the same as a
// cooperative stop, reinserting none of that generation's offspring.
var ErrSelectionPressureExceeded = errors.New("offspring: selection pressure exceeded")

// OffspringSelection accepts a child only if it is not Pareto-dominated
// by a "challenger" derived from the two parents' fitness: per
// objective, max(f1,f2) - ComparisonFactor*|f1-f2|. It tracks
// selectionPressure = evaluations/PopSize across the whole generation
// (evals is shared — and must be reset once per generation by the
// caller — across every worker producing offspring concurrently) and
// gives up once that pressure exceeds MaxSelectionPressure.
type OffspringSelection struct {
	Config               Config
	ComparisonFactor      float64
	MaxSelectionPressure float64
	PopSize              int

	evals *int64
}

// NewOffspringSelection builds a generator whose evaluation counter is
// shared with every other OffspringSelection generator produced for the
// same generation; pass the same evals pointer to all of them.
func NewOffspringSelection(cfg Config, comparisonFactor, maxPressure float64, popSize int, evals *int64) *OffspringSelection {
	return &OffspringSelection{
		Config:               cfg,
		ComparisonFactor:     comparisonFactor,
		MaxSelectionPressure: maxPressure,
		PopSize:              popSize,
		evals:                evals,
	}
}

func (o *OffspringSelection) Pressure() float64 {
	return float64(atomic.LoadInt64(o.evals)) / float64(o.PopSize)
}

func (o *OffspringSelection) Generate(rng *rand.Rand, pop []population.Individual) (population.Individual, error) {
	for {
		if o.Pressure() > o.MaxSelectionPressure {
			return population.Individual{}, ErrSelectionPressureExceeded
		}

		femaleIdx := o.Config.Female.Select(rng)
		maleIdx := o.Config.Male.Select(rng)
		female := pop[femaleIdx]
		male := pop[maleIdx]

		child, err := vary(rng, female.Genotype, male.Genotype, o.Config)
		if err != nil {
			return population.Individual{}, err
		}
		inherit, evalTree, err := localSearch(rng, child, o.Config)
		if err != nil {
			return population.Individual{}, err
		}
		fitness, err := fitnessFor(rng, evalTree, o.Config, nil)
		if err != nil {
			return population.Individual{}, err
		}
		atomic.AddInt64(o.evals, 1)

		challenger := challengerFitness(female.Fitness, male.Fitness, o.ComparisonFactor)
		if population.Dominates(challenger, fitness, 0) != population.Left {
			return population.Individual{Genotype: inherit, Fitness: fitness}, nil
		}
	}
}

// challengerFitness builds the per-objective threshold
// OffspringSelection must beat: max(f1,f2) - factor*|f1-f2|.
func challengerFitness(f1, f2 []float64, factor float64) []float64 {
	out := make([]float64, len(f1))
	for k := range f1 {
		max := f1[k]
		if f2[k] > max {
			max = f2[k]
		}
		diff := f1[k] - f2[k]
		if diff < 0 {
			diff = -diff
		}
		out[k] = max - factor*diff
	}
	return out
}
