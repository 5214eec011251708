// Package offspring implements the offspring generator:
// selection, crossover, mutation, optional local search with Lamarckian
// inheritance, evaluation and transposition-cache consult/insert, plus
// the Basic/Brood/Polygenic/OffspringSelection variants.
package offspring

import (
	"math/rand"

	"github.com/jsdoublel/symreg/internal/cache"
	"github.com/jsdoublel/symreg/internal/dataset"
	"github.com/jsdoublel/symreg/internal/eval"
	"github.com/jsdoublel/symreg/internal/expr"
	"github.com/jsdoublel/symreg/internal/interp"
	"github.com/jsdoublel/symreg/internal/nlopt"
	"github.com/jsdoublel/symreg/internal/population"
	"github.com/jsdoublel/symreg/internal/selection"
	"github.com/jsdoublel/symreg/internal/variation"
)

// Config parameterizes every generator variant in this package. Cache
// is set once here and never swapped after the generational loop
// starts.
type Config struct {
	Female, Male selection.Selector
	Crossover    variation.CrossoverConfig
	Mutation     variation.MultiMutation

	CrossoverProbability   float64
	MutationProbability    float64
	LocalSearchProbability float64
	LamarckianProbability  float64
	LocalSearchIterations  int

	Evaluator eval.Evaluator
	Range     dataset.Range

	Interp       *interp.Interpreter
	Data         dataset.Dataset
	Target       []float64
	OptimizeOpts nlopt.Options

	// Cache and Zobrist are both nil to disable the transposition cache
	// entirely; both non-nil to enable it.
	Cache   *cache.Transposition
	Zobrist *cache.ZobristTable

	// Better reports whether a's fitness is preferred to b's; Brood and
	// Polygenic use it to pick the best of k candidates. Defaults to a
	// first-objective comparison (lower is better) when nil.
	Better func(a, b []float64) bool

	// NProcs bounds Brood/Polygenic's internal k-way fan-out; 0 or
	// negative means sequential (one worker).
	NProcs int
}

func (cfg Config) better(a, b []float64) bool {
	if cfg.Better != nil {
		return cfg.Better(a, b)
	}
	return a[0] < b[0]
}

func (cfg Config) nprocs() int {
	if cfg.NProcs <= 0 {
		return 1
	}
	return cfg.NProcs
}

// Generator produces one offspring from a population.
type Generator interface {
	Generate(rng *rand.Rand, pop []population.Individual) (population.Individual, error)
}

// Basic is the plain offspring generator: one crossover/mutation/local-
// search/evaluate pass per call.
type Basic struct {
	Config Config
}

func (b Basic) Generate(rng *rand.Rand, pop []population.Individual) (population.Individual, error) {
	return generateOne(rng, pop, b.Config, nil)
}

// generateOne runs the per-call pipeline: select, crossover, mutate,
// optionally local-search, then evaluate. scratch, if non-nil, is
// passed through to the evaluator to avoid
// per-call allocation.
func generateOne(rng *rand.Rand, pop []population.Individual, cfg Config, scratch []float64) (population.Individual, error) {
	femaleIdx := cfg.Female.Select(rng)
	maleIdx := cfg.Male.Select(rng)
	female := pop[femaleIdx].Genotype
	male := pop[maleIdx].Genotype

	child, err := vary(rng, female, male, cfg)
	if err != nil {
		return population.Individual{}, err
	}

	inherit, evalTree, err := localSearch(rng, child, cfg)
	if err != nil {
		return population.Individual{}, err
	}

	fitness, err := fitnessFor(rng, evalTree, cfg, scratch)
	if err != nil {
		return population.Individual{}, err
	}

	return population.Individual{Genotype: inherit, Fitness: fitness}, nil
}

func vary(rng *rand.Rand, female, male *expr.Tree, cfg Config) (*expr.Tree, error) {
	var child *expr.Tree
	var err error
	if rng.Float64() < cfg.CrossoverProbability {
		child, err = variation.Crossover(rng, female, male, cfg.Crossover)
		if err != nil {
			return nil, err
		}
	} else {
		child = female.Clone()
	}
	if rng.Float64() < cfg.MutationProbability {
		mutated, err := cfg.Mutation.Mutate(rng, child)
		switch err {
		case nil:
			child = mutated
		case variation.ErrNoMutationTarget:
			// no eligible target; child passes through unmutated.
		default:
			return nil, err
		}
	}
	return child, nil
}

// localSearch runs the coefficient optimizer with probability
// LocalSearchProbability, returning the tree the offspring inherits
// (reverted unless the Lamarckian coin lands) and the tree fitness
// should be measured against (always the optimized one when local
// search ran, in the Baldwin-effect style).
func localSearch(rng *rand.Rand, child *expr.Tree, cfg Config) (inherit, evalTree *expr.Tree, err error) {
	if cfg.Interp == nil || cfg.LocalSearchIterations <= 0 || rng.Float64() >= cfg.LocalSearchProbability {
		return child, child, nil
	}
	opts := cfg.OptimizeOpts
	opts.Iterations = cfg.LocalSearchIterations
	optimized, _, err := nlopt.Optimize(cfg.Interp, child, cfg.Data, cfg.Range, cfg.Target, opts)
	if err != nil {
		return nil, nil, err
	}
	if rng.Float64() < cfg.LamarckianProbability {
		return optimized, optimized, nil
	}
	return child, optimized, nil
}

// fitnessFor evaluates evalTree, consulting and updating the
// transposition cache first: a cache hit must skip re-evaluation so
// that two structurally
// identical offspring in the same generation call the evaluator exactly
// once between them.
func fitnessFor(_ *rand.Rand, evalTree *expr.Tree, cfg Config, scratch []float64) ([]float64, error) {
	if cfg.Cache == nil || cfg.Zobrist == nil {
		return cfg.Evaluator.Evaluate(cfg.Range, evalTree, scratch)
	}
	fp := cfg.Zobrist.Fingerprint(evalTree)
	if cached, ok := cfg.Cache.Lookup(fp); ok {
		cfg.Cache.InsertOrUpdate(fp, cached)
		return cached.Fitness, nil
	}
	fitness, err := cfg.Evaluator.Evaluate(cfg.Range, evalTree, scratch)
	if err != nil {
		return nil, err
	}
	cfg.Cache.InsertOrUpdate(fp, population.Individual{Genotype: evalTree, Fitness: fitness})
	return fitness, nil
}
