// Package expr implements the postfix expression-tree model: the Node
// record, Tree invariants, and structural hashing.
package expr

import "github.com/jsdoublel/symreg/internal/symbol"

// Node is a fixed-shape record in a Tree's postfix array.
//
// Children before parent: for a non-leaf at index i, its Arity children
// occupy the Arity contiguous subtree windows immediately to the left of
// i, walked right-to-left (see Tree.Indices).
type Node struct {
	Type      symbol.Type
	Arity     uint8
	Length    int // number of descendants (subtree size - 1)
	Depth     int // depth below this node (leaf = 0)
	Level     int // distance from root (root = 0)
	Parent    int // index of parent node (root is its own parent)
	Enabled   bool
	Optimize  bool // whether Value is a free coefficient
	Value     float64
	HashValue uint64 // seed hash (e.g. variable column hash)

	calculatedHash uint64
	hashValid      bool
}

// IsLeaf reports whether n has no children.
func (n Node) IsLeaf() bool { return n.Arity == 0 }

// IsVariable reports whether n reads a dataset column.
func (n Node) IsVariable() bool { return n.Type == symbol.Variable }

// IsConstant reports whether n is a literal numeric leaf.
func (n Node) IsConstant() bool { return n.Type == symbol.Constant }

// NewVariable builds a variable leaf bound to the given column hash, with
// its weight coefficient set to weight and marked optimizable.
func NewVariable(hash uint64, weight float64) Node {
	return Node{Type: symbol.Variable, Arity: 0, Enabled: true, Optimize: true, Value: weight, HashValue: hash}
}

// NewConstant builds a non-optimized numeric literal leaf.
func NewConstant(value float64) Node {
	return Node{Type: symbol.Constant, Arity: 0, Enabled: true, Optimize: false, Value: value}
}

// NewFunction builds an internal node of the given type and arity, with
// a structural coefficient of 1 that is optimizable only when optimize
// is true (as used by scaled functions).
func NewFunction(t symbol.Type, arity int, optimize bool) Node {
	return Node{Type: t, Arity: uint8(arity), Enabled: true, Optimize: optimize, Value: 1}
}
