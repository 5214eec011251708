// Package eval implements the evaluator family: a
// single-objective least-squares base evaluator with linear scaling,
// structural and diversity evaluators, the Aggregate/Multi composing
// wrappers, and the information-criterion evaluators (MDL/BIC/AIC).
package eval

import (
	"sync/atomic"

	"github.com/jsdoublel/symreg/internal/dataset"
	"github.com/jsdoublel/symreg/internal/expr"
)

// ErrMax is the sentinel fitness substituted for any non-finite
// evaluator output, so downstream comparison and sorting never has to
// special-case NaN/Inf.
const ErrMax = 1e300

// Counters tracks per-evaluator call volume with atomic increments, safe
// for concurrent use across worker goroutines.
type Counters struct {
	calls     int64
	residuals int64
	jacobians int64
}

func (c *Counters) Calls() int64     { return atomic.LoadInt64(&c.calls) }
func (c *Counters) Residuals() int64 { return atomic.LoadInt64(&c.residuals) }
func (c *Counters) Jacobians() int64 { return atomic.LoadInt64(&c.jacobians) }

func (c *Counters) bumpCall()     { atomic.AddInt64(&c.calls, 1) }
func (c *Counters) bumpResidual() { atomic.AddInt64(&c.residuals, 1) }
func (c *Counters) bumpJacobian() { atomic.AddInt64(&c.jacobians, 1) }

// Budget is a process-wide evaluation budget. Drivers must check
// Exhausted before generating further offspring; the check is
// advisory, not enforced inside Evaluate, so a generation can finish
// the batch it already started.
type Budget struct {
	max  int64
	used int64
}

func NewBudget(max int64) *Budget { return &Budget{max: max} }

func (b *Budget) Exhausted() bool {
	if b == nil || b.max <= 0 {
		return false
	}
	return atomic.LoadInt64(&b.used) >= b.max
}

func (b *Budget) Consume(n int64) {
	if b == nil {
		return
	}
	atomic.AddInt64(&b.used, n)
}

func (b *Budget) Used() int64 {
	if b == nil {
		return 0
	}
	return atomic.LoadInt64(&b.used)
}

// Evaluator scores a single individual over a dataset range. scratch, if
// non-nil and large enough, is reused to avoid per-call allocation;
// implementations that don't need scratch space ignore it.
type Evaluator interface {
	Evaluate(rng dataset.Range, individual *expr.Tree, scratch []float64) ([]float64, error)
	Counters() *Counters
}

// clamp replaces any non-finite entry of v with ErrMax in place and
// returns v.
func clamp(v []float64) []float64 {
	for i, x := range v {
		if isNonFinite(x) {
			v[i] = ErrMax
		}
	}
	return v
}

func isNonFinite(x float64) bool {
	return x != x || x > ErrMax || x < -ErrMax
}
