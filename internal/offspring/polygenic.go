package offspring

import (
	"context"
	"math/rand"

	"github.com/jsdoublel/symreg/internal/population"
	"golang.org/x/sync/errgroup"
)

// Polygenic re-samples a fresh parent pair for each of Size attempts and
// returns the best result. Unlike Brood, every
// candidate may come from a different pair of parents.
type Polygenic struct {
	Config Config
	Size   int
}

// Generate runs the Size attempts concurrently (bounded by
// Config.NProcs), one independently-seeded *rand.Rand per attempt, the
// same seed-then-fan-out pattern Brood.Generate and internal/algo's
// worker pools use.
func (p Polygenic) Generate(rng *rand.Rand, pop []population.Individual) (population.Individual, error) {
	n := p.Size
	if n < 1 {
		n = 1
	}
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	candidates := make([]population.Individual, n)
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(p.Config.nprocs())
	for i := range candidates {
		i := i
		g.Go(func() error {
			r := rand.New(rand.NewSource(seeds[i]))
			cand, err := generateOne(r, pop, p.Config, nil)
			if err != nil {
				return err
			}
			candidates[i] = cand
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return population.Individual{}, err
	}

	best := candidates[0]
	for _, cand := range candidates[1:] {
		if p.Config.better(cand.Fitness, best.Fitness) {
			best = cand
		}
	}
	return best, nil
}
