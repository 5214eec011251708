package algo

import (
	"math/rand"
	"sort"

	"github.com/jsdoublel/symreg/internal/population"
	"github.com/jsdoublel/symreg/internal/sorter"
)

// RunNSGA2 runs the NSGA-II driver: initialize, then
// repeatedly produce a pool of offspring, non-dominated sort the
// combined population+offspring, and fill the next generation front by
// front, breaking ties within the last admitted front by crowding
// distance, until the stop predicate fires. An archive of
// non-dominated individuals is maintained across
// generations from each round's first front.
func RunNSGA2(problem Problem, cfg Config, srt sorter.Sorter) (*Result, error) {
	rootRng := rand.New(rand.NewSource(cfg.Seed))

	pop, err := initPopulation(problem, cfg, rootRng)
	if err != nil {
		return nil, err
	}

	archive := sorter.NewArchive(cfg.Epsilon)
	for _, ind := range pop {
		archive.Insert(ind)
	}

	stop := newStopState(problem.Budget, cfg.Generations, cfg.TimeLimit)
	var fronts [][]int
	for !stop.Stop() {
		offspringPop, err := produceOffspring(problem, cfg, pop, rootRng, stop)
		if err == ErrStopped {
			break
		}
		if err != nil {
			return nil, err
		}

		combined := make([]population.Individual, 0, len(pop)+len(offspringPop))
		combined = append(combined, pop...)
		combined = append(combined, offspringPop...)

		fitness := make([][]float64, len(combined))
		for i, ind := range combined {
			fitness[i] = ind.Fitness
		}
		fronts = srt.Sort(fitness, cfg.Epsilon)
		assignRankAndCrowding(combined, fronts, fitness)

		pop = fillNextGeneration(combined, fronts, cfg.PopulationSize)
		gen := stop.advance()

		for _, idx := range fronts[0] {
			archive.Insert(combined[idx])
		}

		if problem.Report != nil {
			problem.Report(Report{
				Generation: gen,
				Elapsed:    stop.elapsed(),
				Best:       bestByRank(pop),
				Population: pop,
				Fronts:     fronts,
			})
		}
	}

	return &Result{
		Population:  pop,
		BestFront:   archive.Members(),
		Generations: stop.generationCount(),
	}, nil
}

// assignRankAndCrowding writes each individual's Pareto rank (front
// index, 0 = best) and NSGA-II crowding distance in place.
func assignRankAndCrowding(combined []population.Individual, fronts [][]int, fitness [][]float64) {
	for rank, front := range fronts {
		distances := sorter.CrowdingDistance(front, fitness)
		for _, idx := range front {
			combined[idx].Rank = rank
			combined[idx].Distance = distances[idx]
		}
	}
}

// fillNextGeneration admits fronts in rank order until the next front
// would overflow size, then fills the remainder from that front sorted
// by descending crowding distance.
func fillNextGeneration(combined []population.Individual, fronts [][]int, size int) []population.Individual {
	next := make([]population.Individual, 0, size)
	for _, front := range fronts {
		if len(next)+len(front) <= size {
			for _, idx := range front {
				next = append(next, combined[idx])
			}
			continue
		}
		remaining := size - len(next)
		if remaining <= 0 {
			break
		}
		ordered := make([]int, len(front))
		copy(ordered, front)
		sort.SliceStable(ordered, func(a, b int) bool {
			return combined[ordered[a]].Distance > combined[ordered[b]].Distance
		})
		for _, idx := range ordered[:remaining] {
			next = append(next, combined[idx])
		}
		break
	}
	return next
}

func bestByRank(pop []population.Individual) population.Individual {
	best := pop[0]
	for _, ind := range pop[1:] {
		if ind.Rank < best.Rank || (ind.Rank == best.Rank && ind.Distance > best.Distance) {
			best = ind
		}
	}
	return best
}
