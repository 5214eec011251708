// Package algo implements two algorithm drivers: a
// steady-state GP driver and an NSGA-II driver, sharing initialization,
// parallel offspring production, and a cooperative stop predicate.
package algo

import (
	"time"

	"github.com/jsdoublel/symreg/internal/population"
)

// Config is the GA configuration record. RunGP and RunNSGA2 read
// Generations, PopulationSize, PoolSize, TimeLimit, Seed, Epsilon and
// NProcs; they do not read the other fields. The evaluation budget the
// drivers enforce is Problem.Budget, and the operator and local-search
// settings they use are those of the generator Problem.NewGenerator
// returns.
type Config struct {
	Generations            int
	Evaluations            int64 // evaluation budget record; not read by the drivers
	Iterations             int   // local-search iterations per offspring
	PopulationSize         int
	PoolSize               int
	CrossoverProbability   float64
	MutationProbability    float64
	LocalSearchProbability float64
	LamarckianProbability  float64
	TimeLimit              time.Duration
	Seed                   int64
	Epsilon                float64
	NProcs                 int
}

func (c Config) nprocs() int {
	if c.NProcs <= 0 {
		return 1
	}
	return c.NProcs
}

// Report is passed to a driver's pluggable report callback once per
// generation.
type Report struct {
	Generation int
	Elapsed    time.Duration
	Best       population.Individual
	Population []population.Individual
	Fronts     [][]int // populated only by the NSGA-II driver
}

// ReportFunc is a user-supplied per-generation reporter; by convention
// it may print statistics, but the core never requires one.
type ReportFunc func(Report)

// Result is what a driver returns: the full final population, the best
// front (the single best individual for the GP driver, the Pareto
// archive's members for NSGA-II), and the number of completed
// generations.
type Result struct {
	Population  []population.Individual
	BestFront   []population.Individual
	Generations int
}
