// Package cache implements Zobrist structural fingerprinting and a
// bounded concurrent transposition cache.
package cache

import (
	"math/rand"

	"github.com/jsdoublel/symreg/internal/expr"
	"github.com/jsdoublel/symreg/internal/symbol"
)

// ZobristTable holds one random 64-bit value per (node type, postfix
// position) pair, generated once at construction time and owned by the
// algorithm driver rather than kept as a package-level singleton. The
// table is a fixed NumTypes x maxLength grid rather than a
// dynamically-extending structure.
type ZobristTable struct {
	values [][]uint64 // values[typeIndex][position]
}

// NewZobristTable allocates and fills a table wide enough for any tree
// with at most maxLength+1 nodes, drawing its random values from rng so
// that a run's fingerprints are reproducible given the run seed.
func NewZobristTable(rng *rand.Rand, maxLength int) *ZobristTable {
	rows := symbol.NumTypes()
	cols := maxLength + 1
	values := make([][]uint64, rows)
	for i := range values {
		row := make([]uint64, cols)
		for j := range row {
			row[j] = rng.Uint64()
		}
		values[i] = row
	}
	return &ZobristTable{values: values}
}

// computeHash returns the per-node Zobrist value for a node of the
// given type sitting at postfix position pos, XORing in the node's own
// HashValue (the variable column hash) for variable leaves, matching
// zobrist.hpp's ComputeHash.
func (z *ZobristTable) computeHash(n expr.Node, pos int) uint64 {
	row := z.values[int(n.Type)]
	col := pos
	if col >= len(row) {
		col = len(row) - 1 // degrade gracefully for trees beyond the table's sizing budget
	}
	h := row[col]
	if n.IsVariable() {
		h ^= n.HashValue
	}
	return h
}

// Fingerprint XORs every node's Zobrist value into a single structural
// fingerprint usable as a transposition-cache key.
func (z *ZobristTable) Fingerprint(tree *expr.Tree) uint64 {
	var h uint64
	for i, n := range tree.Nodes() {
		h ^= z.computeHash(n, i)
	}
	return h
}
