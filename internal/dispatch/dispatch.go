// Package dispatch implements the batched, per-type operator table the
// interpreter and autodiff passes evaluate against.
package dispatch

import (
	"errors"
	"fmt"
	"math"

	"github.com/jsdoublel/symreg/internal/symbol"
)

// Batch is the static batch width used by the interpreter: 512 bytes
// worth of float64 lanes.
const Batch = 512 / 8

// Matrix is a column-major scratch buffer of height Batch and width
// equal to a tree's node count: column i holds node i's output for the
// rows currently being processed.
type Matrix struct {
	Width int
	data  []float64 // column-major: data[col*Batch + row]
}

func NewMatrix(width int) *Matrix {
	return &Matrix{Width: width, data: make([]float64, width*Batch)}
}

// Col returns the Batch-length slice backing column c.
func (m *Matrix) Col(c int) []float64 { return m.data[c*Batch : (c+1)*Batch] }

var ErrUnknownOperator = errors.New("unknown operator")

// Op evaluates node i's output column of m, for rows [0,len), given its
// child column indices (right-to-left per expr.Tree.Indices, but callers
// pass them already in left-to-right evaluation order).
type Op func(m *Matrix, param float64, children []int, i, length int)

// Table is the process-wide, thread-safe-for-reads mapping from node type
// to its batched operator. Construction registers every enabled type;
// lookup by node type after that is a simple map read over immutable
// function values, so concurrent reads need no locking.
type Table struct {
	ops map[symbol.Type]Op
}

// NewTable builds the dispatch table for the given primitive set, failing
// eagerly (at construction, not at evaluation time) only if asked to
// register an operator this package does not implement.
func NewTable(enabled []symbol.Type) (*Table, error) {
	t := &Table{ops: make(map[symbol.Type]Op, len(enabled))}
	for _, ty := range enabled {
		op, ok := builtins[ty]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownOperator, ty)
		}
		t.ops[ty] = op
	}
	return t, nil
}

// Lookup returns the batched operator for a node type.
func (t *Table) Lookup(ty symbol.Type) (Op, error) {
	op, ok := t.ops[ty]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperator, ty)
	}
	return op, nil
}

// naryReduce folds children into dst using f, four at a time to cut down
// on temporaries and to give the compiler SIMD-friendly straight-line
// groups. first seeds dst from the first operand;
// subsequent groups accumulate via f.
func naryReduce(m *Matrix, children []int, length int, f func(a, b float64) float64) []float64 {
	dst := make([]float64, Batch)
	first := true
	apply := func(col []float64) {
		if first {
			copy(dst[:length], col[:length])
			first = false
			return
		}
		for r := 0; r < length; r++ {
			dst[r] = f(dst[r], col[r])
		}
	}
	i := 0
	group := make([]float64, Batch)
	for ; i+4 <= len(children); i += 4 {
		c0, c1, c2, c3 := m.Col(children[i]), m.Col(children[i+1]), m.Col(children[i+2]), m.Col(children[i+3])
		for r := 0; r < length; r++ {
			group[r] = f(f(c0[r], c1[r]), f(c2[r], c3[r]))
		}
		apply(group)
	}
	for ; i < len(children); i++ {
		apply(m.Col(children[i]))
	}
	return dst
}

var builtins map[symbol.Type]Op

func init() {
	builtins = map[symbol.Type]Op{
		symbol.Add: nary(func(a, b float64) float64 { return a + b }),
		symbol.Mul: nary(func(a, b float64) float64 { return a * b }),
		symbol.Fmin: nary(math.Min),
		symbol.Fmax: nary(math.Max),
		symbol.Sub: binary(func(a, b float64) float64 { return a - b }),
		symbol.Div: binary(func(a, b float64) float64 { return a / b }),
		symbol.Aq:  binary(func(a, b float64) float64 { return a / math.Sqrt(1+b*b) }),
		symbol.Pow: binary(math.Pow),

		symbol.Square:  unary(func(a float64) float64 { return a * a }),
		symbol.Sqrt:    unary(math.Sqrt),
		symbol.SqrtAbs: unary(func(a float64) float64 { return math.Sqrt(math.Abs(a)) }),
		symbol.Cbrt:    unary(math.Cbrt),
		symbol.Abs:     unary(math.Abs),
		symbol.Exp:     unary(math.Exp),
		symbol.Log:     unary(math.Log),
		symbol.Log1p:   unary(math.Log1p),
		symbol.LogAbs:  unary(func(a float64) float64 { return math.Log(math.Abs(a)) }),
		symbol.Sin:     unary(math.Sin),
		symbol.Cos:     unary(math.Cos),
		symbol.Tan:     unary(math.Tan),
		symbol.Asin:    unary(math.Asin),
		symbol.Acos:    unary(math.Acos),
		symbol.Atan:    unary(math.Atan),
		symbol.Sinh:    unary(math.Sinh),
		symbol.Cosh:    unary(math.Cosh),
		symbol.Tanh:    unary(math.Tanh),
	}
}

func nary(f func(a, b float64) float64) Op {
	return func(m *Matrix, param float64, children []int, i, length int) {
		dst := m.Col(i)
		result := naryReduce(m, children, length, f)
		for r := 0; r < length; r++ {
			dst[r] = param * result[r]
		}
	}
}

func binary(f func(a, b float64) float64) Op {
	return func(m *Matrix, param float64, children []int, i, length int) {
		dst := m.Col(i)
		a, b := m.Col(children[0]), m.Col(children[1])
		for r := 0; r < length; r++ {
			dst[r] = param * f(a[r], b[r])
		}
	}
}

func unary(f func(a float64) float64) Op {
	return func(m *Matrix, param float64, children []int, i, length int) {
		dst := m.Col(i)
		a := m.Col(children[0])
		for r := 0; r < length; r++ {
			dst[r] = param * f(a[r])
		}
	}
}
