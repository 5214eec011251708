package algo

import (
	"sync/atomic"
	"time"

	"github.com/jsdoublel/symreg/internal/eval"
)

// stopState is the cooperative stop predicate:
// budget_exhausted() OR generation >= max_generations OR elapsed >
// time_limit. Both drivers poll it between generations, and every
// offspring task polls it once before its single Generate attempt.
type stopState struct {
	budget     *eval.Budget
	maxGen     int
	timeLimit  time.Duration
	start      time.Time
	generation int64
}

func newStopState(budget *eval.Budget, maxGen int, timeLimit time.Duration) *stopState {
	return &stopState{budget: budget, maxGen: maxGen, timeLimit: timeLimit, start: time.Now()}
}

func (s *stopState) Stop() bool {
	if s.budget.Exhausted() {
		return true
	}
	if s.timeLimit > 0 && time.Since(s.start) > s.timeLimit {
		return true
	}
	return s.maxGen > 0 && int(atomic.LoadInt64(&s.generation)) >= s.maxGen
}

func (s *stopState) generationCount() int {
	return int(atomic.LoadInt64(&s.generation))
}

func (s *stopState) advance() int {
	return int(atomic.AddInt64(&s.generation, 1))
}

func (s *stopState) elapsed() time.Duration {
	return time.Since(s.start)
}
