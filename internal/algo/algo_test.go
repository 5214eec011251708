package algo

import (
	"math/rand"
	"testing"
	"time"

	"github.com/jsdoublel/symreg/internal/creator"
	"github.com/jsdoublel/symreg/internal/dataset"
	"github.com/jsdoublel/symreg/internal/dispatch"
	"github.com/jsdoublel/symreg/internal/eval"
	"github.com/jsdoublel/symreg/internal/expr"
	"github.com/jsdoublel/symreg/internal/interp"
	"github.com/jsdoublel/symreg/internal/offspring"
	"github.com/jsdoublel/symreg/internal/population"
	"github.com/jsdoublel/symreg/internal/selection"
	"github.com/jsdoublel/symreg/internal/sorter"
	"github.com/jsdoublel/symreg/internal/symbol"
	"github.com/jsdoublel/symreg/internal/variation"
)

func buildProblem(t *testing.T, objectives int) (Problem, Config) {
	t.Helper()
	xs := []float64{1, 2, 3, 4, 5, 6}
	ds, err := dataset.NewMatrix([]string{"x"}, [][]float64{xs})
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	v, _ := ds.GetVariableByName("x")
	target := make([]float64, len(xs))
	for i, x := range xs {
		target[i] = 2*x + 1
	}

	primSet, err := symbol.New([]symbol.Primitive{
		{Type: symbol.Add, Enabled: true, Frequency: 1, MinArity: 2, MaxArity: 2},
		{Type: symbol.Mul, Enabled: true, Frequency: 1, MinArity: 2, MaxArity: 2},
	}, []symbol.VariableInfo{{Name: "x", Hash: v.Hash}})
	if err != nil {
		t.Fatalf("symbol.New: %v", err)
	}

	table, err := dispatch.NewTable([]symbol.Type{symbol.Add, symbol.Mul})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	ip := interp.New(table)

	creatorCfg := creator.Config{Primitives: primSet, VariableProb: 0.8, ConstantStd: 1}
	createTree := func(rng *rand.Rand) (*expr.Tree, error) {
		return creator.Grow(rng, creatorCfg, 7, 1, 3)
	}

	var evaluator eval.Evaluator = &eval.LeastSquares{Interp: ip, Data: ds, Target: target}
	if objectives == 2 {
		evaluator = &eval.MultiEvaluator{
			Evaluators: []eval.Evaluator{
				&eval.LeastSquares{Interp: ip, Data: ds, Target: target},
				&eval.LengthEvaluator{MaxLength: 15},
			},
		}
	}

	rng := dataset.Range{Start: 0, End: len(xs)}
	mutCfg := variation.MutationConfig{Primitives: primSet, Creator: creatorCfg, MaxLength: 15, MaxDepth: 5}

	problem := Problem{
		Objectives: objectives,
		CreateTree: createTree,
		Evaluator:  evaluator,
		Budget:     eval.NewBudget(0),
		Range:      rng,
		NewGenerator: func(pop []population.Individual) offspring.Generator {
			cmp := selection.ByObjective(firstObjective(pop))
			return offspring.Basic{Config: offspring.Config{
				Female:                 selection.NewTournament(len(pop), 3, cmp),
				Male:                   selection.NewTournament(len(pop), 3, cmp),
				Crossover:              variation.CrossoverConfig{InternalProbability: 0.9, MaxLength: 15, MaxDepth: 5},
				Mutation:               variation.MultiMutation{Config: mutCfg},
				CrossoverProbability:   0.9,
				MutationProbability:    0.25,
				Evaluator:              evaluator,
				Range:                  rng,
			}}
		},
	}

	cfg := Config{
		Generations:    3,
		PopulationSize: 12,
		PoolSize:       12,
		Seed:           42,
		Epsilon:        1e-9,
		NProcs:         2,
		TimeLimit:      5 * time.Second,
	}
	return problem, cfg
}

func TestRunGPReturnsFullPopulationAndBest(t *testing.T) {
	problem, cfg := buildProblem(t, 1)
	result, err := RunGP(problem, cfg)
	if err != nil {
		t.Fatalf("RunGP: %v", err)
	}
	if len(result.Population) != cfg.PopulationSize {
		t.Fatalf("expected population size %d, got %d", cfg.PopulationSize, len(result.Population))
	}
	if result.Generations == 0 {
		t.Fatal("expected at least one completed generation")
	}
	if len(result.BestFront) != 1 {
		t.Fatalf("expected a single best individual, got %d", len(result.BestFront))
	}
}

func TestRunNSGA2FillsPopulationAndArchive(t *testing.T) {
	problem, cfg := buildProblem(t, 2)
	result, err := RunNSGA2(problem, cfg, sorter.Hierarchical{})
	if err != nil {
		t.Fatalf("RunNSGA2: %v", err)
	}
	if len(result.Population) != cfg.PopulationSize {
		t.Fatalf("expected population size %d, got %d", cfg.PopulationSize, len(result.Population))
	}
	if len(result.BestFront) == 0 {
		t.Fatal("expected a non-empty archive")
	}
	for _, ind := range result.BestFront {
		if len(ind.Fitness) != 2 {
			t.Fatalf("expected 2 objectives, got %d", len(ind.Fitness))
		}
	}
}

func TestRunGPStopsOnGenerationLimit(t *testing.T) {
	problem, cfg := buildProblem(t, 1)
	cfg.Generations = 1
	result, err := RunGP(problem, cfg)
	if err != nil {
		t.Fatalf("RunGP: %v", err)
	}
	if result.Generations != 1 {
		t.Fatalf("expected exactly 1 generation, got %d", result.Generations)
	}
}
