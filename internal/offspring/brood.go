package offspring

import (
	"context"
	"math/rand"

	"github.com/jsdoublel/symreg/internal/population"
	"golang.org/x/sync/errgroup"
)

// Brood selects one parent pair and produces Size children from it,
// returning the best per Config.Better.
type Brood struct {
	Config Config
	Size   int
}

// Generate runs the Size candidate pipelines concurrently (bounded by
// Config.NProcs), one independently-seeded *rand.Rand per candidate so
// the fan-out stays deterministic for a given rng draw, exactly as
// internal/algo's initPopulation/produceOffspring seed their worker
// pool from a root rng before fanning out.
func (b Brood) Generate(rng *rand.Rand, pop []population.Individual) (population.Individual, error) {
	femaleIdx := b.Config.Female.Select(rng)
	maleIdx := b.Config.Male.Select(rng)
	female := pop[femaleIdx].Genotype
	male := pop[maleIdx].Genotype

	n := b.Size
	if n < 1 {
		n = 1
	}
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	candidates := make([]population.Individual, n)
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(b.Config.nprocs())
	for i := range candidates {
		i := i
		g.Go(func() error {
			r := rand.New(rand.NewSource(seeds[i]))
			child, err := vary(r, female, male, b.Config)
			if err != nil {
				return err
			}
			inherit, evalTree, err := localSearch(r, child, b.Config)
			if err != nil {
				return err
			}
			fitness, err := fitnessFor(r, evalTree, b.Config, nil)
			if err != nil {
				return err
			}
			candidates[i] = population.Individual{Genotype: inherit, Fitness: fitness}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return population.Individual{}, err
	}

	best := candidates[0]
	for _, cand := range candidates[1:] {
		if b.Config.better(cand.Fitness, best.Fitness) {
			best = cand
		}
	}
	return best, nil
}
