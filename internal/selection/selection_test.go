package selection

import (
	"math/rand"
	"testing"
)

func TestTournamentPrefersBetterFitness(t *testing.T) {
	fitness := []float64{5, 4, 3, 2, 1} // index 4 is best (lowest)
	cmp := ByObjective(fitness)
	sel := NewTournament(len(fitness), 4, cmp)
	rng := rand.New(rand.NewSource(1))

	counts := make(map[int]int)
	for i := 0; i < 500; i++ {
		counts[sel.Select(rng)]++
	}
	if counts[4] == 0 {
		t.Errorf("best individual (index 4) was never selected")
	}
	if counts[4] < counts[0] {
		t.Errorf("best individual selected less often than worst: best=%d worst=%d", counts[4], counts[0])
	}
}

func TestRankTournamentMatchesOrdering(t *testing.T) {
	fitness := []float64{5, 4, 3, 2, 1}
	cmp := ByObjective(fitness)
	sel := NewRankTournament(len(fitness), 2, cmp)
	if sel.byRank[0] != 4 {
		t.Errorf("expected rank 0 to be index 4 (lowest fitness), got %d", sel.byRank[0])
	}
	if sel.byRank[len(sel.byRank)-1] != 0 {
		t.Errorf("expected last rank to be index 0 (highest fitness), got %d", sel.byRank[len(sel.byRank)-1])
	}
}

func TestRandomCoversWholeRange(t *testing.T) {
	sel := NewRandom(3)
	rng := rand.New(rand.NewSource(2))
	seen := make(map[int]bool)
	for i := 0; i < 200; i++ {
		seen[sel.Select(rng)] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected all 3 indices reachable, saw %d", len(seen))
	}
}

func TestProportionalFavorsBetterIndividuals(t *testing.T) {
	fitness := []float64{100, 1} // index 1 much better
	cmp := ByObjective(fitness)
	sel := NewProportional(len(fitness), cmp)
	rng := rand.New(rand.NewSource(3))
	counts := map[int]int{}
	for i := 0; i < 1000; i++ {
		counts[sel.Select(rng)]++
	}
	if counts[1] <= counts[0] {
		t.Errorf("expected better individual (1) selected more often: counts=%v", counts)
	}
}

func TestKeepBestKeepsPopulationSize(t *testing.T) {
	fitness := []float64{5, 4, 3, 2, 1, 0.5, 0.2}
	cmp := ByObjective(fitness)
	pop := []int{0, 1, 2}
	offspring := []int{3, 4, 5, 6}
	out := KeepBest(pop, offspring, cmp)
	if len(out) != len(pop) {
		t.Fatalf("expected %d survivors, got %d", len(pop), len(out))
	}
	for _, idx := range out {
		if fitness[idx] > 2 {
			t.Errorf("survivor %d has fitness %v, worse than expected top-3 cutoff", idx, fitness[idx])
		}
	}
}

func TestReplaceWorstSwapsOneForOne(t *testing.T) {
	fitness := []float64{10, 9, 8, 0.1, 0.2}
	cmp := ByObjective(fitness)
	pop := []int{0, 1, 2}
	offspring := []int{3, 4}
	out := ReplaceWorst(pop, offspring, cmp)
	if len(out) != len(pop) {
		t.Fatalf("expected population size preserved, got %d", len(out))
	}
	found := map[int]bool{}
	for _, idx := range out {
		found[idx] = true
	}
	if !found[3] || !found[4] {
		t.Errorf("expected both offspring (3,4) to replace the two worst of pop, got %v", out)
	}
	if found[0] {
		t.Errorf("expected worst population member (0) to be replaced, got %v", out)
	}
}

func TestByRankAndCrowdingPrefersLowerRank(t *testing.T) {
	rank := []int{1, 0, 1}
	distance := []float64{0.5, 0.1, 10}
	cmp := ByRankAndCrowding(rank, distance)
	if cmp(1, 0) >= 0 {
		t.Errorf("expected index 1 (rank 0) to beat index 0 (rank 1)")
	}
	if cmp(2, 0) >= 0 {
		t.Errorf("expected index 2 (higher crowding distance, same rank) to beat index 0")
	}
}
