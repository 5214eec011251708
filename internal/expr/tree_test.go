package expr

import (
	"testing"

	"github.com/jsdoublel/symreg/internal/symbol"
)

func addTree(t *testing.T, a, b, c float64) *Tree {
	t.Helper()
	nodes := []Node{
		NewConstant(a),
		NewConstant(b),
		NewFunction(symbol.Add, 2, false),
	}
	tr, err := FromNodes(nodes)
	if err != nil {
		t.Fatalf("FromNodes: %v", err)
	}
	return tr
}

func TestBuildFromPostfixLengthDepth(t *testing.T) {
	tr := addTree(t, 2, 3, 0)
	if got := tr.Length(); got != 2 {
		t.Errorf("Length() = %d, want 2", got)
	}
	if got := tr.Node(tr.Root()).Depth; got != 1 {
		t.Errorf("root depth = %d, want 1", got)
	}
	for _, i := range tr.Indices(tr.Root()) {
		if tr.Node(i).Depth != 0 {
			t.Errorf("leaf %d depth = %d, want 0", i, tr.Node(i).Depth)
		}
	}
}

func TestInvalidStructure(t *testing.T) {
	nodes := []Node{NewFunction(symbol.Add, 2, false)} // no children available
	if _, err := FromNodes(nodes); err == nil {
		t.Fatal("expected error for malformed postfix tree")
	}
}

func TestCoefficientsRoundTrip(t *testing.T) {
	nodes := []Node{
		NewVariable(1, 0.5),
		NewVariable(2, 1.5),
		NewFunction(symbol.Add, 2, false),
	}
	tr, err := FromNodes(nodes)
	if err != nil {
		t.Fatalf("FromNodes: %v", err)
	}
	coefs := tr.Coefficients()
	if len(coefs) != 2 {
		t.Fatalf("len(Coefficients()) = %d, want 2", len(coefs))
	}
	if err := tr.SetCoefficients(coefs); err != nil {
		t.Fatalf("SetCoefficients: %v", err)
	}
	got := tr.Coefficients()
	for i := range coefs {
		if got[i] != coefs[i] {
			t.Errorf("coefficient %d = %v, want %v", i, got[i], coefs[i])
		}
	}
}

func TestHashRelaxedCommutesChildOrder(t *testing.T) {
	ab := []Node{NewVariable(1, 1), NewVariable(2, 1), NewFunction(symbol.Add, 2, false)}
	ba := []Node{NewVariable(2, 1), NewVariable(1, 1), NewFunction(symbol.Add, 2, false)}
	trAB, _ := FromNodes(ab)
	trBA, _ := FromNodes(ba)
	if trAB.Hash(Relaxed) != trBA.Hash(Relaxed) {
		t.Error("relaxed hash should be invariant to commutative child order")
	}
	if trAB.Hash(Strict) == trBA.Hash(Strict) {
		t.Error("strict hash should distinguish child order (with overwhelming probability)")
	}
}

func TestLengthInvariant(t *testing.T) {
	nodes := []Node{
		NewVariable(1, 1),
		NewVariable(2, 1),
		NewFunction(symbol.Add, 2, false),
		NewConstant(4),
		NewFunction(symbol.Mul, 2, false),
	}
	tr, err := FromNodes(nodes)
	if err != nil {
		t.Fatalf("FromNodes: %v", err)
	}
	for i, n := range tr.Nodes() {
		sum := 0
		for _, c := range tr.Indices(i) {
			sum += tr.Node(c).Length + 1
		}
		if n.Arity > 0 && sum != n.Length {
			t.Errorf("node %d: length %d != sum(child length+1) %d", i, n.Length, sum)
		}
	}
}
