// Package population defines the Individual record shared across the
// evaluator, selection, sorter, cache and algorithm-driver packages,
// plus the dominance predicate the multi-objective engine is built on.
package population

import (
	"math"

	"github.com/jsdoublel/symreg/internal/expr"
)

// Individual pairs a genotype with its fitness vector and the two
// NSGA-II bookkeeping fields (domination rank and crowding distance).
// Default fitness is +Inf per objective.
type Individual struct {
	Genotype *expr.Tree
	Fitness  []float64
	Rank     int
	Distance float64
}

// New builds an Individual with fitness defaulted to +Inf across
// objectives.
func New(genotype *expr.Tree, objectives int) Individual {
	fitness := make([]float64, objectives)
	for i := range fitness {
		fitness[i] = math.Inf(1)
	}
	return Individual{Genotype: genotype, Fitness: fitness}
}
