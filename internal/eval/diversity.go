package eval

import (
	"context"
	"math/rand"
	"slices"

	"github.com/jsdoublel/symreg/internal/dataset"
	"github.com/jsdoublel/symreg/internal/expr"
	"golang.org/x/sync/errgroup"
)

// DiversityEvaluator rewards individuals that are structurally different
// from a random sample of the current population. It precomputes each
// population member's sorted subtree-hash multiset once per generation
// via Precompute, then reports the negated average Jaccard distance of
// an individual's own hash multiset against SampleSize random draws.
// The negation turns "more different" into a lower, and so better,
// value under the shared minimize-fitness convention.
type DiversityEvaluator struct {
	SampleSize int
	Mode       expr.HashMode
	Rng        *rand.Rand

	// NProcs bounds the concurrent fan-out over SampleSize draws; 0 or
	// negative means sequential (one worker).
	NProcs int

	population [][]uint64
	counters   Counters
}

func (e *DiversityEvaluator) Counters() *Counters { return &e.counters }

func (e *DiversityEvaluator) nprocs() int {
	if e.NProcs <= 0 {
		return 1
	}
	return e.NProcs
}

// Precompute refreshes the population's sorted hash vectors; call once
// per generation before evaluating any individual against it.
func (e *DiversityEvaluator) Precompute(population []*expr.Tree) {
	e.population = make([][]uint64, len(population))
	for i, t := range population {
		h := t.NodeHashes(e.Mode)
		slices.Sort(h)
		e.population[i] = h
	}
}

// Evaluate draws k = min(SampleSize, n) random population members and
// averages their Jaccard distance to individual. The draw indices come
// from k seeds pulled sequentially off e.Rng (keeping the shared rng
// access single-threaded and the sequence deterministic for a given
// seed), then the per-draw distance computation fans out concurrently
// bounded by NProcs, mirroring internal/offspring's Brood/Polygenic
// seed-then-fan-out pattern.
func (e *DiversityEvaluator) Evaluate(_ dataset.Range, individual *expr.Tree, _ []float64) ([]float64, error) {
	e.counters.bumpCall()
	n := len(e.population)
	if n == 0 {
		return clamp([]float64{0}), nil
	}
	h := individual.NodeHashes(e.Mode)
	slices.Sort(h)

	k := e.SampleSize
	if k > n {
		k = n
	}
	seeds := make([]int64, k)
	for i := range seeds {
		seeds[i] = e.Rng.Int63()
	}

	distances := make([]float64, k)
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(e.nprocs())
	for i := range seeds {
		i := i
		g.Go(func() error {
			r := rand.New(rand.NewSource(seeds[i]))
			j := r.Intn(n)
			distances[i] = jaccardDistance(h, e.population[j])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sum := 0.0
	for _, d := range distances {
		sum += d
	}
	return clamp([]float64{-sum / float64(k)}), nil
}

// jaccardDistance treats a and b (both sorted) as multisets and returns
// 1 - |intersection|/|union|, generalizing set Jaccard distance to
// repeated hash values within a single tree.
func jaccardDistance(a, b []uint64) float64 {
	i, j, intersection := 0, 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			intersection++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return 1 - float64(intersection)/float64(union)
}
