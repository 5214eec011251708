// Package symbol defines the closed vocabulary of expression-tree node
// types and the primitive set used to constrain tree construction and
// variation.
package symbol

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"gonum.org/v1/gonum/stat/distuv"
)

// Type identifies the operation (or terminal kind) a Node carries.
type Type uint8

const (
	Constant Type = iota
	Variable

	Add
	Sub
	Mul
	Div
	Aq // analytic quotient: x1 / sqrt(1+x2^2)
	Pow
	Square
	Sqrt
	SqrtAbs
	Cbrt
	Abs
	Exp
	Log
	Log1p
	LogAbs
	Sin
	Cos
	Tan
	Asin
	Acos
	Atan
	Sinh
	Cosh
	Tanh
	Fmin
	Fmax

	numTypes
)

var names = map[Type]string{
	Constant: "constant", Variable: "variable",
	Add: "add", Sub: "sub", Mul: "mul", Div: "div", Aq: "aq", Pow: "pow",
	Square: "square", Sqrt: "sqrt", SqrtAbs: "sqrtabs", Cbrt: "cbrt", Abs: "abs",
	Exp: "exp", Log: "log", Log1p: "log1p", LogAbs: "logabs",
	Sin: "sin", Cos: "cos", Tan: "tan", Asin: "asin", Acos: "acos", Atan: "atan",
	Sinh: "sinh", Cosh: "cosh", Tanh: "tanh", Fmin: "fmin", Fmax: "fmax",
}

func (t Type) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// NumTypes returns the number of node types in the closed vocabulary,
// used to size Zobrist and dispatch tables.
func NumTypes() int { return int(numTypes) }

// MinArity/MaxArity are the intrinsic arity bounds of each node type,
// independent of any run's PrimitiveSet restriction.
func MinArity(t Type) int {
	switch t {
	case Constant, Variable:
		return 0
	case Sub, Div, Aq, Pow, Fmin, Fmax:
		return 2
	case Square, Sqrt, SqrtAbs, Cbrt, Abs, Exp, Log, Log1p, LogAbs,
		Sin, Cos, Tan, Asin, Acos, Atan, Sinh, Cosh, Tanh:
		return 1
	case Add, Mul:
		return 2
	default:
		return 0
	}
}

func MaxArity(t Type) int {
	switch t {
	case Add, Mul, Fmin, Fmax:
		return 255
	case Sub, Div, Aq, Pow:
		return 2
	case Constant, Variable:
		return 0
	default:
		return 1
	}
}

// IsCommutative reports whether reordering a node's children preserves
// its value, used by relaxed hashing and InsertSubtree.
func IsCommutative(t Type) bool {
	switch t {
	case Add, Mul, Fmin, Fmax:
		return true
	default:
		return false
	}
}

var ErrInvalidArity = errors.New("invalid arity range")

// Primitive is a single node type's configuration within a run.
type Primitive struct {
	Type             Type
	Enabled          bool
	Frequency        float64
	MinArity         int
	MaxArity         int
}

// Set is the primitive set: which node types are enabled for a run, with
// what sampling frequency and arity range. Zero value is invalid; use New.
type Set struct {
	primitives map[Type]*Primitive
	variables  []VariableInfo
}

// VariableInfo names an input column and its stable hash, mirroring the
// dataset's variable table.
type VariableInfo struct {
	Name string
	Hash uint64
}

// New builds a primitive set, validating that every enabled type's arity
// range is non-empty and within the type's intrinsic bounds.
func New(primitives []Primitive, variables []VariableInfo) (*Set, error) {
	s := &Set{primitives: make(map[Type]*Primitive, len(primitives)), variables: variables}
	for _, p := range primitives {
		pc := p
		if pc.MinArity > pc.MaxArity {
			return nil, fmt.Errorf("%w: type %s has min %d > max %d", ErrInvalidArity, pc.Type, pc.MinArity, pc.MaxArity)
		}
		if pc.MinArity < MinArity(pc.Type) || pc.MaxArity > MaxArity(pc.Type) {
			return nil, fmt.Errorf("%w: type %s arity [%d,%d] outside intrinsic bounds [%d,%d]",
				ErrInvalidArity, pc.Type, pc.MinArity, pc.MaxArity, MinArity(pc.Type), MaxArity(pc.Type))
		}
		s.primitives[pc.Type] = &pc
	}
	return s, nil
}

func (s *Set) Enabled(t Type) bool {
	p, ok := s.primitives[t]
	return ok && p.Enabled
}

func (s *Set) ArityRange(t Type) (min, max int) {
	p, ok := s.primitives[t]
	if !ok {
		return 0, 0
	}
	return p.MinArity, p.MaxArity
}

func (s *Set) Variables() []VariableInfo { return s.variables }

// Functions returns every enabled function type (arity >= 1), i.e. all
// types excluding Constant/Variable, in ascending Type order.
func (s *Set) Functions() []Type {
	out := make([]Type, 0, len(s.primitives))
	for t, p := range s.primitives {
		if p.Enabled && t != Constant && t != Variable {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return out
}

var ErrNoSymbol = errors.New("no symbol satisfies requested arity range")

// SampleFunction draws a function type by frequency weight among enabled
// types whose arity range overlaps [minArity, maxArity].
func (s *Set) SampleFunction(rng *rand.Rand, minArity, maxArity int, candidates []Type) (Type, error) {
	type cand struct {
		t Type
		w float64
	}
	pool := make([]cand, 0, len(candidates))
	for _, t := range candidates {
		p, ok := s.primitives[t]
		if !ok || !p.Enabled || t == Constant || t == Variable {
			continue
		}
		if p.MaxArity < minArity || p.MinArity > maxArity {
			continue
		}
		pool = append(pool, cand{t, p.Frequency})
	}
	if len(pool) == 0 {
		return 0, ErrNoSymbol
	}
	weights := make([]float64, len(pool))
	for i, c := range pool {
		weights[i] = c.w
	}
	cat := distuv.NewCategorical(weights, rng)
	return pool[int(cat.Rand())].t, nil
}

// AllFunctionTypes enumerates every function type in the closed
// vocabulary (excluding Constant/Variable), useful as a default
// candidate list for SampleFunction.
func AllFunctionTypes() []Type {
	out := make([]Type, 0, int(numTypes)-2)
	for t := Type(2); t < numTypes; t++ {
		out = append(out, t)
	}
	return out
}
