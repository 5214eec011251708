package expr

import (
	"slices"

	"github.com/jsdoublel/symreg/internal/symbol"
)

// HashMode selects how commutative operators are canonicalized when
// hashing.
type HashMode int

const (
	// Strict hashes children in their stored (postfix) order.
	Strict HashMode = iota
	// Relaxed sorts children hashes before combining them, so that
	// commutative operators with permuted children hash identically.
	Relaxed
)

// Hash recomputes and caches the structural hash of the whole tree,
// rooted at Root(). Strict mode distinguishes child order; relaxed mode
// treats commutative operators' children as an unordered set.
func (t *Tree) Hash(mode HashMode) uint64 {
	for i := range t.nodes {
		t.nodes[i].hashValid = false
	}
	return t.hashAt(t.Root(), mode)
}

func (t *Tree) hashAt(i int, mode HashMode) uint64 {
	n := &t.nodes[i]
	if n.hashValid {
		return n.calculatedHash
	}
	h := fnvSeed(uint64(n.Type), uint64(n.Arity))
	if n.IsVariable() {
		h = fnvMix(h, n.HashValue)
	}
	children := t.children(i)
	if len(children) > 0 {
		childHashes := make([]uint64, len(children))
		for idx, c := range children {
			childHashes[idx] = t.hashAt(c, mode)
		}
		if mode == Relaxed && commutativeArity(*n) {
			slices.Sort(childHashes)
		}
		for _, ch := range childHashes {
			h = fnvMix(h, ch)
		}
	}
	n.calculatedHash = h
	n.hashValid = true
	return h
}

// NodeHashes returns the structural hash of every node in the tree, in
// postfix order, computing the whole-tree hash first so every node's
// cache is populated. Used by diversity-based evaluators to compare
// individuals as multisets of subtree hashes.
func (t *Tree) NodeHashes(mode HashMode) []uint64 {
	t.Hash(mode)
	out := make([]uint64, len(t.nodes))
	for i := range t.nodes {
		out[i] = t.nodes[i].calculatedHash
	}
	return out
}

// commutativeArity reports whether node n's operator is commutative,
// consulting the symbol package's static classification.
func commutativeArity(n Node) bool {
	return symbol.IsCommutative(n.Type)
}

const (
	fnvOffset = 14695981039346656037
	fnvPrime  = 1099511628211
)

func fnvSeed(parts ...uint64) uint64 {
	h := uint64(fnvOffset)
	for _, p := range parts {
		h = fnvMix(h, p)
	}
	return h
}

func fnvMix(h, v uint64) uint64 {
	for i := 0; i < 8; i++ {
		h ^= (v >> (8 * i)) & 0xff
		h *= fnvPrime
	}
	return h
}
