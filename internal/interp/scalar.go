package interp

import (
	"math"

	"github.com/jsdoublel/symreg/internal/symbol"
)

// evalRaw computes the unscaled function value f(children) for a single
// row, i.e. the node's output before its structural coefficient is
// applied (node output = param * f(children)). Mirrors the dispatch
// table's per-type math one row at a time, used by the scalar autodiff
// passes which need f(children) to seed the derivative table in
// derivative.go.
func evalRaw(t symbol.Type, children []float64) float64 {
	switch t {
	case symbol.Add:
		s := 0.0
		for _, c := range children {
			s += c
		}
		return s
	case symbol.Mul:
		p := 1.0
		for _, c := range children {
			p *= c
		}
		return p
	case symbol.Fmin:
		m := children[0]
		for _, c := range children[1:] {
			m = math.Min(m, c)
		}
		return m
	case symbol.Fmax:
		m := children[0]
		for _, c := range children[1:] {
			m = math.Max(m, c)
		}
		return m
	case symbol.Sub:
		return children[0] - children[1]
	case symbol.Div:
		return children[0] / children[1]
	case symbol.Aq:
		return children[0] / math.Sqrt(1+children[1]*children[1])
	case symbol.Pow:
		return math.Pow(children[0], children[1])
	case symbol.Square:
		return children[0] * children[0]
	case symbol.Sqrt:
		return math.Sqrt(children[0])
	case symbol.SqrtAbs:
		return math.Sqrt(math.Abs(children[0]))
	case symbol.Cbrt:
		return math.Cbrt(children[0])
	case symbol.Abs:
		return math.Abs(children[0])
	case symbol.Exp:
		return math.Exp(children[0])
	case symbol.Log:
		return math.Log(children[0])
	case symbol.Log1p:
		return math.Log1p(children[0])
	case symbol.LogAbs:
		return math.Log(math.Abs(children[0]))
	case symbol.Sin:
		return math.Sin(children[0])
	case symbol.Cos:
		return math.Cos(children[0])
	case symbol.Tan:
		return math.Tan(children[0])
	case symbol.Asin:
		return math.Asin(children[0])
	case symbol.Acos:
		return math.Acos(children[0])
	case symbol.Atan:
		return math.Atan(children[0])
	case symbol.Sinh:
		return math.Sinh(children[0])
	case symbol.Cosh:
		return math.Cosh(children[0])
	case symbol.Tanh:
		return math.Tanh(children[0])
	default:
		return math.NaN()
	}
}
