package interp

import (
	"errors"
	"fmt"
	"math"

	"github.com/jsdoublel/symreg/internal/symbol"
)

// ErrUnsupportedDerivative is returned when a derivative is requested for
// a node type with no closed-form rule.
var ErrUnsupportedDerivative = errors.New("unsupported derivative")

// partials computes, for an internal node of type t with the given child
// primal values and its own (unscaled) output f(children), the partial
// derivative of f with respect to each child. This is the shared rule
// table driving forward-jet, forward-scalar and reverse-mode autodiff.
func partials(t symbol.Type, children []float64, f float64) ([]float64, error) {
	out := make([]float64, len(children))
	switch t {
	case symbol.Add:
		for i := range out {
			out[i] = 1
		}
	case symbol.Sub:
		out[0], out[1] = 1, -1
	case symbol.Mul:
		prefix := make([]float64, len(children)+1)
		suffix := make([]float64, len(children)+1)
		prefix[0], suffix[len(children)] = 1, 1
		for i, v := range children {
			prefix[i+1] = prefix[i] * v
		}
		for i := len(children) - 1; i >= 0; i-- {
			suffix[i] = suffix[i+1] * children[i]
		}
		for i := range out {
			out[i] = prefix[i] * suffix[i+1]
		}
	case symbol.Div:
		a, b := children[0], children[1]
		out[0] = 1 / b
		out[1] = -a / (b * b)
	case symbol.Aq:
		a, b := children[0], children[1]
		denom := math.Sqrt(1 + b*b)
		out[0] = 1 / denom
		out[1] = -a * b / (denom * denom * denom)
	case symbol.Pow:
		a, b := children[0], children[1]
		out[0] = b * math.Pow(a, b-1)
		out[1] = f * math.Log(a)
	case symbol.Square:
		out[0] = 2 * children[0]
	case symbol.Sqrt:
		out[0] = 1 / (2 * f)
	case symbol.SqrtAbs:
		out[0] = math.Copysign(1, children[0]) / (2 * f)
	case symbol.Cbrt:
		out[0] = 1 / (3 * f * f)
	case symbol.Abs:
		out[0] = math.Copysign(1, children[0])
	case symbol.Exp:
		out[0] = f
	case symbol.Log:
		out[0] = 1 / children[0]
	case symbol.Log1p:
		out[0] = 1 / (1 + children[0])
	case symbol.LogAbs:
		out[0] = 1 / children[0]
	case symbol.Sin:
		out[0] = math.Cos(children[0])
	case symbol.Cos:
		out[0] = -math.Sin(children[0])
	case symbol.Tan:
		c := math.Cos(children[0])
		out[0] = 1 / (c * c)
	case symbol.Asin:
		out[0] = 1 / math.Sqrt(1-children[0]*children[0])
	case symbol.Acos:
		out[0] = -1 / math.Sqrt(1-children[0]*children[0])
	case symbol.Atan:
		out[0] = 1 / (1 + children[0]*children[0])
	case symbol.Sinh:
		out[0] = math.Cosh(children[0])
	case symbol.Cosh:
		out[0] = math.Sinh(children[0])
	case symbol.Tanh:
		out[0] = 1 - f*f
	case symbol.Fmin, symbol.Fmax:
		best := 0
		for i, v := range children {
			if (t == symbol.Fmin && v < children[best]) || (t == symbol.Fmax && v > children[best]) {
				best = i
			}
		}
		out[best] = 1
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDerivative, t)
	}
	return out, nil
}
