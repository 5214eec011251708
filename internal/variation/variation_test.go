package variation

import (
	"math/rand"
	"testing"

	"github.com/jsdoublel/symreg/internal/creator"
	"github.com/jsdoublel/symreg/internal/expr"
	"github.com/jsdoublel/symreg/internal/symbol"
)

func testPrimitives(t *testing.T) *symbol.Set {
	t.Helper()
	prims := []symbol.Primitive{
		{Type: symbol.Add, Enabled: true, Frequency: 1, MinArity: 2, MaxArity: 4},
		{Type: symbol.Mul, Enabled: true, Frequency: 1, MinArity: 2, MaxArity: 4},
		{Type: symbol.Sin, Enabled: true, Frequency: 1, MinArity: 1, MaxArity: 1},
		{Type: symbol.Sub, Enabled: true, Frequency: 1, MinArity: 2, MaxArity: 2},
	}
	vars := []symbol.VariableInfo{{Name: "x", Hash: 1}, {Name: "y", Hash: 2}}
	set, err := symbol.New(prims, vars)
	if err != nil {
		t.Fatalf("symbol.New: %v", err)
	}
	return set
}

func grownTree(t *testing.T, rng *rand.Rand, prims *symbol.Set, target int) *expr.Tree {
	t.Helper()
	tree, err := creator.Grow(rng, creator.Config{Primitives: prims}, target, 0, 6)
	if err != nil {
		t.Fatalf("Grow: %v", err)
	}
	return tree
}

func TestCrossoverProducesValidTree(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	prims := testPrimitives(t)
	a := grownTree(t, rng, prims, 12)
	b := grownTree(t, rng, prims, 12)

	cfg := CrossoverConfig{InternalProbability: 0.9, MaxLength: 40, MaxDepth: 12}
	child, err := Crossover(rng, a, b, cfg)
	if err != nil {
		t.Fatalf("Crossover: %v", err)
	}
	if child.Length()+1 > cfg.MaxLength {
		t.Errorf("child length %d exceeds MaxLength %d", child.Length()+1, cfg.MaxLength)
	}
	if _, err := expr.FromNodes(child.Nodes()); err != nil {
		t.Errorf("crossover result is not a well-formed tree: %v", err)
	}
}

func mutConfig(prims *symbol.Set) MutationConfig {
	return MutationConfig{
		Primitives: prims,
		Creator:    creator.Config{Primitives: prims},
		MaxLength:  40,
		MaxDepth:   12,
	}.withDefaults()
}

func TestOnePointChangesOnlyLeafValue(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	prims := testPrimitives(t)
	tree := grownTree(t, rng, prims, 10)
	cfg := mutConfig(prims)

	out, err := OnePoint(rng, tree, cfg)
	if err != nil {
		t.Fatalf("OnePoint: %v", err)
	}
	if out.Length() != tree.Length() {
		t.Errorf("OnePoint changed tree length: %d -> %d", tree.Length(), out.Length())
	}
}

func TestDiscretePointUsesPool(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	prims := testPrimitives(t)
	tree := grownTree(t, rng, prims, 10)
	cfg := mutConfig(prims)

	out, err := DiscretePoint(rng, tree, cfg)
	if err != nil {
		t.Fatalf("DiscretePoint: %v", err)
	}
	if out.Length() != tree.Length() {
		t.Errorf("DiscretePoint changed tree length: %d -> %d", tree.Length(), out.Length())
	}
	for i, n := range out.Nodes() {
		if n.Value == tree.Node(i).Value {
			continue
		}
		inPool := false
		for _, v := range cfg.DiscreteValues {
			inPool = inPool || n.Value == v
		}
		if !inPool {
			t.Errorf("node %d value %g is not from the discrete pool", i, n.Value)
		}
	}
}

func TestChangeVariableSwapsHash(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	prims := testPrimitives(t)
	var tree *expr.Tree
	for i := 0; i < 50; i++ {
		tree = grownTree(t, rng, prims, 10)
		found := false
		for _, n := range tree.Nodes() {
			if n.IsVariable() {
				found = true
				break
			}
		}
		if found {
			break
		}
	}
	cfg := mutConfig(prims)
	out, err := ChangeVariable(rng, tree, cfg)
	if err != nil {
		t.Fatalf("ChangeVariable: %v", err)
	}
	swapped := false
	for i, n := range out.Nodes() {
		if n.IsVariable() && n.HashValue != tree.Node(i).HashValue {
			swapped = true
		}
	}
	if !swapped {
		t.Error("ChangeVariable left every variable hash unchanged")
	}
}

func TestChangeFunctionPreservesArity(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	prims := testPrimitives(t)
	tree := grownTree(t, rng, prims, 10)
	cfg := mutConfig(prims)

	out, err := ChangeFunction(rng, tree, cfg)
	if err != nil {
		t.Fatalf("ChangeFunction: %v", err)
	}
	if out.Length() != tree.Length() {
		t.Errorf("ChangeFunction changed tree length: %d -> %d", tree.Length(), out.Length())
	}
}

func TestReplaceSubtreeRespectsBudget(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	prims := testPrimitives(t)
	tree := grownTree(t, rng, prims, 10)
	cfg := mutConfig(prims)

	out, err := ReplaceSubtree(rng, tree, cfg)
	if err != nil {
		t.Fatalf("ReplaceSubtree: %v", err)
	}
	if out.Length()+1 > cfg.MaxLength {
		t.Errorf("ReplaceSubtree result length %d exceeds MaxLength %d", out.Length()+1, cfg.MaxLength)
	}
}

func TestInsertSubtreeIncreasesArity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	prims := testPrimitives(t)
	var tree *expr.Tree
	for i := 0; i < 50; i++ {
		tree = grownTree(t, rng, prims, 6)
		found := false
		for _, n := range tree.Nodes() {
			if !n.IsLeaf() && symbol.IsCommutative(n.Type) {
				_, max := prims.ArityRange(n.Type)
				if int(n.Arity) < max {
					found = true
					break
				}
			}
		}
		if found {
			break
		}
	}
	cfg := mutConfig(prims)
	out, err := InsertSubtree(rng, tree, cfg)
	if err != nil {
		t.Fatalf("InsertSubtree: %v", err)
	}
	if out.Length() <= tree.Length() {
		t.Errorf("InsertSubtree did not grow the tree: %d -> %d", tree.Length(), out.Length())
	}
}

func TestRemoveSubtreeDecreasesArity(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	prims := testPrimitives(t)
	var tree *expr.Tree
	for i := 0; i < 50; i++ {
		tree = grownTree(t, rng, prims, 10)
		found := false
		for _, n := range tree.Nodes() {
			if n.IsLeaf() {
				continue
			}
			min, _ := prims.ArityRange(n.Type)
			if int(n.Arity) > min {
				found = true
				break
			}
		}
		if found {
			break
		}
	}
	cfg := mutConfig(prims)
	out, err := RemoveSubtree(rng, tree, cfg)
	if err != nil {
		t.Fatalf("RemoveSubtree: %v", err)
	}
	if out.Length() >= tree.Length() {
		t.Errorf("RemoveSubtree did not shrink the tree: %d -> %d", tree.Length(), out.Length())
	}
}

func TestShuffleSubtreesPreservesLength(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	prims := testPrimitives(t)
	tree := grownTree(t, rng, prims, 10)
	cfg := mutConfig(prims)

	out, err := ShuffleSubtrees(rng, tree, cfg)
	if err != nil {
		t.Fatalf("ShuffleSubtrees: %v", err)
	}
	if out.Length() != tree.Length() {
		t.Errorf("ShuffleSubtrees changed tree length: %d -> %d", tree.Length(), out.Length())
	}
}

func TestMultiMutationAlwaysSucceedsOnNonTrivialTree(t *testing.T) {
	rng := rand.New(rand.NewSource(10))
	prims := testPrimitives(t)
	mm := MultiMutation{Config: mutConfig(prims)}

	for i := 0; i < 30; i++ {
		tree := grownTree(t, rng, prims, 12)
		if _, err := mm.Mutate(rng, tree); err != nil {
			t.Fatalf("MultiMutation.Mutate: %v", err)
		}
	}
}

func TestMultiMutationHonorsZeroWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	prims := testPrimitives(t)
	mm := MultiMutation{
		Config: mutConfig(prims),
		Weights: map[string]float64{
			"OnePoint": 1,
		},
	}
	tree := grownTree(t, rng, prims, 10)
	out, err := mm.Mutate(rng, tree)
	if err != nil {
		t.Fatalf("MultiMutation.Mutate: %v", err)
	}
	if out.Length() != tree.Length() {
		t.Errorf("expected only OnePoint (length-preserving) to run, got length %d -> %d", tree.Length(), out.Length())
	}
}
