package algo

import (
	"context"
	"errors"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/jsdoublel/symreg/internal/dataset"
	"github.com/jsdoublel/symreg/internal/eval"
	"github.com/jsdoublel/symreg/internal/expr"
	"github.com/jsdoublel/symreg/internal/offspring"
	"github.com/jsdoublel/symreg/internal/population"
)

// ErrStopped is returned by produceOffspring when the cooperative stop
// predicate (or an offspring.ErrSelectionPressureExceeded from one of
// the slots) fired before a full pool of offspring was produced. A
// generation that does not finish contributes no offspring at all, so
// the driver discards the partial batch rather than reinserting it.
var ErrStopped = errors.New("algo: stopped before generation completed")

// Problem bundles everything a driver needs beyond Config: how to
// create an initial tree, how to score one, the shared evaluation
// budget, and a per-generation factory for the offspring generator
// (selectors are rebuilt from the current population every generation,
// so this is a factory rather than a fixed value).
type Problem struct {
	Objectives   int
	CreateTree   func(rng *rand.Rand) (*expr.Tree, error)
	Evaluator    eval.Evaluator
	Budget       *eval.Budget
	Range        dataset.Range
	NewGenerator func(pop []population.Individual) offspring.Generator
	Report       ReportFunc
}

// initPopulation creates and evaluates PopulationSize individuals in
// parallel, one goroutine per worker slot bounded by cfg.nprocs(), each
// with its own *rand.Rand derived from a sequentially-drawn seed so
// that construction stays deterministic for a given Config.Seed while
// the work itself runs concurrently.
func initPopulation(problem Problem, cfg Config, rootRng *rand.Rand) ([]population.Individual, error) {
	seeds := make([]int64, cfg.PopulationSize)
	for i := range seeds {
		seeds[i] = rootRng.Int63()
	}

	pop := make([]population.Individual, cfg.PopulationSize)
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(cfg.nprocs())
	for i := range pop {
		i := i
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seeds[i]))
			tree, err := problem.CreateTree(rng)
			if err != nil {
				return err
			}
			fitness, err := problem.Evaluator.Evaluate(problem.Range, tree, nil)
			if err != nil {
				return err
			}
			problem.Budget.Consume(1)
			pop[i] = population.Individual{Genotype: tree, Fitness: fitness}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pop, nil
}

// produceOffspring runs cfg.PoolSize offspring-generation tasks
// concurrently (bounded by cfg.nprocs()), each polling stop once before
// its single Generate attempt; a failed attempt is not retried, and any
// error other than offspring.ErrSelectionPressureExceeded ends the run
// with that error. The first slot to observe stop, or to receive
// offspring.ErrSelectionPressureExceeded, cancels the shared context so
// siblings abandon their attempt quickly; produceOffspring then returns
// ErrStopped and no offspring.
func produceOffspring(problem Problem, cfg Config, pop []population.Individual, rootRng *rand.Rand, stop *stopState) ([]population.Individual, error) {
	gen := problem.NewGenerator(pop)

	seeds := make([]int64, cfg.PoolSize)
	for i := range seeds {
		seeds[i] = rootRng.Int63()
	}

	offspringPop := make([]population.Individual, cfg.PoolSize)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.nprocs())
	for i := range offspringPop {
		i := i
		g.Go(func() error {
			if stop.Stop() || ctx.Err() != nil {
				cancel()
				return ErrStopped
			}
			rng := rand.New(rand.NewSource(seeds[i]))
			child, err := gen.Generate(rng, pop)
			if errors.Is(err, offspring.ErrSelectionPressureExceeded) {
				cancel()
				return ErrStopped
			}
			if err != nil {
				return err
			}
			problem.Budget.Consume(1)
			offspringPop[i] = child
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrStopped) {
			return nil, ErrStopped
		}
		return nil, err
	}
	return offspringPop, nil
}
