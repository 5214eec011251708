package expr

import (
	"errors"
	"fmt"
)

// ErrInvalidStructure is returned when a postfix node slice does not form
// a well-formed tree (arities don't match the available window).
var ErrInvalidStructure = errors.New("invalid tree structure")

// Tree is an ordered postfix sequence of nodes (children before parent).
// The zero value is an empty tree; construct via FromNodes.
type Tree struct {
	nodes []Node
}

// FromNodes wraps a raw postfix slice and recomputes cached fields,
// failing if the arities don't describe a valid tree.
func FromNodes(nodes []Node) (*Tree, error) {
	t := &Tree{nodes: nodes}
	if err := t.UpdateNodes(); err != nil {
		return nil, err
	}
	return t, nil
}

// Nodes returns the tree's postfix node slice. Callers must not mutate it
// directly except through the Tree's own methods, or cached fields (and
// invariants) will go stale.
func (t *Tree) Nodes() []Node { return t.nodes }

func (t *Tree) Length() int {
	if len(t.nodes) == 0 {
		return 0
	}
	return t.nodes[len(t.nodes)-1].Length
}

// Root returns the index of the tree's root (the last postfix entry).
func (t *Tree) Root() int { return len(t.nodes) - 1 }

func (t *Tree) Node(i int) Node { return t.nodes[i] }

// SetNode replaces node i's immutable-looking fields without touching
// cached Length/Depth/Level/Parent; callers that change structure must
// call UpdateNodes afterward.
func (t *Tree) SetNode(i int, n Node) { t.nodes[i] = n }

// UpdateNodes recomputes Length and Depth in left-to-right (postfix)
// passes that walk each node's children backwards through the array,
// then Level and Parent in a recursive walk down from the root. It is
// not a single pass and keeps no stack. Returns ErrInvalidStructure if
// an arity walks off the front of the array.
func (t *Tree) UpdateNodes() error {
	n := len(t.nodes)
	if n == 0 {
		return nil
	}
	for i := range t.nodes {
		t.nodes[i].hashValid = false
		arity := int(t.nodes[i].Arity)
		if arity == 0 {
			t.nodes[i].Length = 0
			continue
		}
		length := 0
		idx := i - 1
		for c := 0; c < arity; c++ {
			if idx < 0 {
				return fmt.Errorf("%w: node %d arity %d exceeds available window", ErrInvalidStructure, i, arity)
			}
			length += t.nodes[idx].Length + 1
			idx -= t.nodes[idx].Length + 1
		}
		if idx != i-length-1 {
			return fmt.Errorf("%w: node %d children are not contiguous", ErrInvalidStructure, i)
		}
		t.nodes[i].Length = length
	}
	// depth: max(child depth)+1, single left-to-right pass using Length to
	// locate children.
	for i := range t.nodes {
		arity := int(t.nodes[i].Arity)
		if arity == 0 {
			t.nodes[i].Depth = 0
			continue
		}
		maxDepth := -1
		for _, c := range t.children(i) {
			if t.nodes[c].Depth > maxDepth {
				maxDepth = t.nodes[c].Depth
			}
		}
		t.nodes[i].Depth = maxDepth + 1
	}
	// level and parent: top-down, root first.
	root := n - 1
	t.nodes[root].Level = 0
	t.nodes[root].Parent = root
	t.setLevelsFrom(root)
	return nil
}

func (t *Tree) setLevelsFrom(i int) {
	for _, c := range t.children(i) {
		t.nodes[c].Level = t.nodes[i].Level + 1
		t.nodes[c].Parent = i
		t.setLevelsFrom(c)
	}
}

// children returns the root indices of node i's Arity immediate children,
// left to right.
func (t *Tree) children(i int) []int {
	arity := int(t.nodes[i].Arity)
	out := make([]int, arity)
	idx := i - 1
	for c := arity - 1; c >= 0; c-- {
		out[c] = idx
		idx -= t.nodes[idx].Length + 1
	}
	return out
}

// Indices yields the root indices of node i's Arity immediate children,
// right-to-left.
func (t *Tree) Indices(i int) []int {
	arity := int(t.nodes[i].Arity)
	out := make([]int, 0, arity)
	idx := i - 1
	for c := 0; c < arity; c++ {
		out = append(out, idx)
		idx -= t.nodes[idx].Length + 1
	}
	return out
}

// Span returns the contiguous postfix window [lo, hi] (inclusive)
// occupied by the subtree rooted at i.
func (t *Tree) Span(i int) (lo, hi int) {
	return i - t.nodes[i].Length, i
}

// Coefficients returns, in postfix order, the Value of every node with
// Optimize set.
func (t *Tree) Coefficients() []float64 {
	out := make([]float64, 0)
	for _, n := range t.nodes {
		if n.Optimize {
			out = append(out, n.Value)
		}
	}
	return out
}

var ErrCoefficientCount = errors.New("coefficient count mismatch")

// SetCoefficients assigns values, in postfix order, to every node with
// Optimize set. len(values) must equal len(Coefficients()).
func (t *Tree) SetCoefficients(values []float64) error {
	idx := 0
	for i := range t.nodes {
		if t.nodes[i].Optimize {
			if idx >= len(values) {
				return fmt.Errorf("%w: tree needs more than %d", ErrCoefficientCount, len(values))
			}
			t.nodes[i].Value = values[idx]
			idx++
		}
	}
	if idx != len(values) {
		return fmt.Errorf("%w: tree needs %d, got %d", ErrCoefficientCount, idx, len(values))
	}
	return nil
}

// CoefficientIndices returns the postfix node index of each optimizable
// coefficient, in the same order as Coefficients.
func (t *Tree) CoefficientIndices() []int {
	out := make([]int, 0)
	for i, n := range t.nodes {
		if n.Optimize {
			out = append(out, i)
		}
	}
	return out
}

// Clone returns a deep, independent copy of the tree.
func (t *Tree) Clone() *Tree {
	nodes := make([]Node, len(t.nodes))
	copy(nodes, t.nodes)
	return &Tree{nodes: nodes}
}

// Param returns the node's effective evaluation parameter: the
// coefficient value for every node (constants carry their literal in
// Value too, so callers never need to special-case them).
func (n Node) Param() float64 { return n.Value }
