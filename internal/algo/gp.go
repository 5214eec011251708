package algo

import (
	"math/rand"

	"github.com/jsdoublel/symreg/internal/population"
	"github.com/jsdoublel/symreg/internal/selection"
)

// RunGP runs the steady-state GP driver: initialize a
// population, then repeatedly produce a full pool of offspring in
// parallel and reinsert the best PopulationSize of population+offspring
// by first-objective fitness, until the stop predicate
// fires. Generations that stop mid-production contribute no offspring.
func RunGP(problem Problem, cfg Config) (*Result, error) {
	rootRng := rand.New(rand.NewSource(cfg.Seed))

	pop, err := initPopulation(problem, cfg, rootRng)
	if err != nil {
		return nil, err
	}

	stop := newStopState(problem.Budget, cfg.Generations, cfg.TimeLimit)
	for !stop.Stop() {
		offspringPop, err := produceOffspring(problem, cfg, pop, rootRng, stop)
		if err == ErrStopped {
			break
		}
		if err != nil {
			return nil, err
		}

		pop = reinsertSteadyState(pop, offspringPop)
		gen := stop.advance()

		if problem.Report != nil {
			problem.Report(Report{Generation: gen, Elapsed: stop.elapsed(), Best: bestSingleObjective(pop), Population: pop})
		}
	}

	best := bestSingleObjective(pop)
	return &Result{
		Population:  pop,
		BestFront:   []population.Individual{best},
		Generations: stop.generationCount(),
	}, nil
}

// reinsertSteadyState keeps the best PopulationSize individuals out of
// the combined population and offspring pools, by first-objective
// fitness, using selection.KeepBest over abstract indices.
func reinsertSteadyState(pop, offspringPop []population.Individual) []population.Individual {
	combined := make([]population.Individual, 0, len(pop)+len(offspringPop))
	combined = append(combined, pop...)
	combined = append(combined, offspringPop...)

	cmp := selection.ByObjective(firstObjective(combined))

	popIdx := indexRange(0, len(pop))
	offIdx := indexRange(len(pop), len(combined))
	kept := selection.KeepBest(popIdx, offIdx, cmp)

	out := make([]population.Individual, len(kept))
	for i, idx := range kept {
		out[i] = combined[idx]
	}
	return out
}

func firstObjective(pop []population.Individual) []float64 {
	out := make([]float64, len(pop))
	for i, ind := range pop {
		out[i] = ind.Fitness[0]
	}
	return out
}

func indexRange(start, end int) []int {
	out := make([]int, end-start)
	for i := range out {
		out[i] = start + i
	}
	return out
}

func bestSingleObjective(pop []population.Individual) population.Individual {
	best := pop[0]
	for _, ind := range pop[1:] {
		if ind.Fitness[0] < best.Fitness[0] {
			best = ind
		}
	}
	return best
}
