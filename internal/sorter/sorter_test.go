package sorter

import (
	"slices"
	"testing"

	"github.com/jsdoublel/symreg/internal/population"
)

// toyFitness is a small two-objective fitness set with a known front
// structure:
// {(0,7), (1,5), (2,3), (4,2), (7,1), (10,0), (2,6), (4,4), (10,2), (6,6), (9,5)}.
func toyFitness() [][]float64 {
	return [][]float64{
		{0, 7}, {1, 5}, {2, 3}, {4, 2}, {7, 1}, {10, 0},
		{2, 6}, {4, 4}, {10, 2}, {6, 6}, {9, 5},
	}
}

func normalizeFronts(fronts [][]int) [][]int {
	out := make([][]int, len(fronts))
	for i, f := range fronts {
		c := slices.Clone(f)
		slices.Sort(c)
		out[i] = c
	}
	return out
}

func frontsEqual(a, b [][]int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !slices.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func TestAllSortersAgreeOnToyFronts(t *testing.T) {
	want := [][]int{
		{0, 1, 2, 3, 4, 5},
		{6, 7, 8},
		{9, 10},
	}
	fitness := toyFitness()

	sorters := map[string]Sorter{
		"RankIntersect":       RankIntersect{},
		"RankOrdinal":         RankOrdinal{},
		"MergeSort":           MergeSort{},
		"BestOrder":           BestOrder{},
		"Deductive":           Deductive{},
		"Hierarchical":        Hierarchical{},
		"EfficientSequential": EfficientSequential{},
		"EfficientBinary":     EfficientBinary{},
		"DominanceDegree":     DominanceDegree{},
	}
	for name, s := range sorters {
		t.Run(name, func(t *testing.T) {
			got := normalizeFronts(s.Sort(fitness, 0))
			if !frontsEqual(got, want) {
				t.Fatalf("%s: got fronts %v, want %v", name, got, want)
			}
		})
	}
}

func TestAllDuplicatesFormSingleFront(t *testing.T) {
	fitness := make([][]float64, 5)
	for i := range fitness {
		fitness[i] = []float64{1, 1}
	}
	sorters := map[string]Sorter{
		"RankIntersect":       RankIntersect{},
		"RankOrdinal":         RankOrdinal{},
		"MergeSort":           MergeSort{},
		"Deductive":           Deductive{},
		"Hierarchical":        Hierarchical{},
		"EfficientSequential": EfficientSequential{},
		"EfficientBinary":     EfficientBinary{},
		"DominanceDegree":     DominanceDegree{},
	}
	for name, s := range sorters {
		t.Run(name, func(t *testing.T) {
			fronts := s.Sort(fitness, 0)
			if len(fronts) != 1 || len(fronts[0]) != 5 {
				t.Fatalf("%s: got %v, want a single front of 5", name, fronts)
			}
		})
	}
}

func TestCrowdingDistanceBoundaryIsInfinite(t *testing.T) {
	fitness := [][]float64{{0, 10}, {5, 5}, {10, 0}}
	front := []int{0, 1, 2}
	d := CrowdingDistance(front, fitness)
	if d[0] <= 1e300 || d[2] <= 1e300 {
		t.Fatalf("boundary points should have +Inf distance, got %v, %v", d[0], d[2])
	}
	if d[1] >= 1e300 {
		t.Fatalf("interior point should have finite distance, got %v", d[1])
	}
}

func TestArchiveRejectsDominatedAndEpsilonEqual(t *testing.T) {
	a := NewArchive(1e-9)
	mk := func(f ...float64) population.Individual {
		return population.Individual{Fitness: f}
	}
	if !a.Insert(mk(1, 5)) {
		t.Fatal("first insert should succeed")
	}
	if a.Insert(mk(2, 6)) {
		t.Fatal("dominated point should be rejected")
	}
	if a.Insert(mk(1, 5)) {
		t.Fatal("epsilon-equal point should be rejected")
	}
	if !a.Insert(mk(0, 10)) {
		t.Fatal("non-dominated point should be accepted")
	}
	if a.Len() != 2 {
		t.Fatalf("want 2 members, got %d", a.Len())
	}
}
