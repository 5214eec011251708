package creator

import (
	"math/rand"
	"testing"

	"github.com/jsdoublel/symreg/internal/symbol"
)

func testPrimitives(t *testing.T) *symbol.Set {
	t.Helper()
	prims := []symbol.Primitive{
		{Type: symbol.Add, Enabled: true, Frequency: 1, MinArity: 2, MaxArity: 2},
		{Type: symbol.Mul, Enabled: true, Frequency: 1, MinArity: 2, MaxArity: 2},
		{Type: symbol.Sin, Enabled: true, Frequency: 1, MinArity: 1, MaxArity: 1},
	}
	set, err := symbol.New(prims, []symbol.VariableInfo{{Name: "x", Hash: 42}})
	if err != nil {
		t.Fatalf("symbol.New: %v", err)
	}
	return set
}

func TestCreatorsRespectMaxDepth(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cfg := Config{Primitives: testPrimitives(t)}

	tree, err := Grow(rng, cfg, 10, 0, 3)
	if err != nil {
		t.Fatalf("Grow: %v", err)
	}
	if tree.Node(tree.Root()).Depth > 3 {
		t.Errorf("Grow tree depth %d exceeds maxDepth 3", tree.Node(tree.Root()).Depth)
	}

	bTree, err := Balanced(rng, cfg, 10, 0, 3)
	if err != nil {
		t.Fatalf("Balanced: %v", err)
	}
	if bTree.Node(bTree.Root()).Depth > 3 {
		t.Errorf("Balanced tree depth %d exceeds maxDepth 3", bTree.Node(bTree.Root()).Depth)
	}

	pTree, err := PTC2(rng, cfg, 10, 0, 3)
	if err != nil {
		t.Fatalf("PTC2: %v", err)
	}
	if pTree.Node(pTree.Root()).Depth > 3 {
		t.Errorf("PTC2 tree depth %d exceeds maxDepth 3", pTree.Node(pTree.Root()).Depth)
	}
}

func TestBalancedRespectsLengthBudget(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	cfg := Config{Primitives: testPrimitives(t)}
	tree, err := Balanced(rng, cfg, 5, 0, 10)
	if err != nil {
		t.Fatalf("Balanced: %v", err)
	}
	if tree.Length()+1 > 5+2 {
		t.Errorf("Balanced tree length %d far exceeds target 5", tree.Length()+1)
	}
}

func TestPTC2ProducesValidTree(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	cfg := Config{Primitives: testPrimitives(t)}
	for i := 0; i < 20; i++ {
		tree, err := PTC2(rng, cfg, 8, 0, 6)
		if err != nil {
			t.Fatalf("PTC2: %v", err)
		}
		if tree.Length()+1 == 0 {
			t.Errorf("empty tree produced")
		}
	}
}
