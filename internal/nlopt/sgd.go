package nlopt

import "math"

// UpdateRule turns a gradient into a step, the first-order
// alternative to Levenberg-Marquardt. Implementations may hold
// per-parameter state of the same shape as the gradient; state is
// allocated lazily on the first Step call so a single rule value can be
// reused across differently-sized problems.
type UpdateRule interface {
	Step(gradient []float64) []float64
}

// Constant applies a fixed learning rate with no memory.
type Constant struct {
	LR float64
}

func (c *Constant) Step(g []float64) []float64 {
	step := make([]float64, len(g))
	for i, v := range g {
		step[i] = c.LR * v
	}
	return step
}

// Momentum accumulates an exponentially decayed velocity.
type Momentum struct {
	LR, Beta float64
	v        []float64
}

func (m *Momentum) Step(g []float64) []float64 {
	m.v = lazy(m.v, len(g))
	step := make([]float64, len(g))
	for i, gi := range g {
		m.v[i] = m.Beta*m.v[i] + gi
		step[i] = m.LR * m.v[i]
	}
	return step
}

// RMSProp scales the learning rate by a decayed mean-square gradient.
type RMSProp struct {
	LR, Beta, Eps float64
	s             []float64
}

func (r *RMSProp) Step(g []float64) []float64 {
	eps := r.Eps
	if eps == 0 {
		eps = 1e-8
	}
	r.s = lazy(r.s, len(g))
	step := make([]float64, len(g))
	for i, gi := range g {
		r.s[i] = r.Beta*r.s[i] + (1-r.Beta)*gi*gi
		step[i] = r.LR * gi / (math.Sqrt(r.s[i]) + eps)
	}
	return step
}

// AdaDelta replaces RMSProp's fixed learning rate with a ratio of
// accumulated update magnitudes to accumulated gradient magnitudes.
type AdaDelta struct {
	Beta, Eps float64
	sg, su    []float64
}

func (a *AdaDelta) Step(g []float64) []float64 {
	eps := a.Eps
	if eps == 0 {
		eps = 1e-8
	}
	a.sg = lazy(a.sg, len(g))
	a.su = lazy(a.su, len(g))
	step := make([]float64, len(g))
	for i, gi := range g {
		a.sg[i] = a.Beta*a.sg[i] + (1-a.Beta)*gi*gi
		delta := math.Sqrt(a.su[i]+eps) / math.Sqrt(a.sg[i]+eps) * gi
		a.su[i] = a.Beta*a.su[i] + (1-a.Beta)*delta*delta
		step[i] = delta
	}
	return step
}

// AdaMax is Adam with the second moment replaced by an infinity-norm
// running maximum.
type AdaMax struct {
	LR, Beta1, Beta2, Eps float64
	m, u                  []float64
	t                     int
}

func (a *AdaMax) Step(g []float64) []float64 {
	eps := a.Eps
	if eps == 0 {
		eps = 1e-8
	}
	a.m = lazy(a.m, len(g))
	a.u = lazy(a.u, len(g))
	a.t++
	step := make([]float64, len(g))
	bias := 1 - math.Pow(a.Beta1, float64(a.t))
	for i, gi := range g {
		a.m[i] = a.Beta1*a.m[i] + (1-a.Beta1)*gi
		a.u[i] = math.Max(a.Beta2*a.u[i], math.Abs(gi))
		step[i] = a.LR / bias * a.m[i] / (a.u[i] + eps)
	}
	return step
}

// Adam combines a first-moment and bias-corrected second-moment
// estimate.
type Adam struct {
	LR, Beta1, Beta2, Eps float64
	m, v                  []float64
	t                     int
}

func (a *Adam) Step(g []float64) []float64 {
	eps := a.Eps
	if eps == 0 {
		eps = 1e-8
	}
	a.m = lazy(a.m, len(g))
	a.v = lazy(a.v, len(g))
	a.t++
	bias1 := 1 - math.Pow(a.Beta1, float64(a.t))
	bias2 := 1 - math.Pow(a.Beta2, float64(a.t))
	step := make([]float64, len(g))
	for i, gi := range g {
		a.m[i] = a.Beta1*a.m[i] + (1-a.Beta1)*gi
		a.v[i] = a.Beta2*a.v[i] + (1-a.Beta2)*gi*gi
		mHat := a.m[i] / bias1
		vHat := a.v[i] / bias2
		step[i] = a.LR * mHat / (math.Sqrt(vHat) + eps)
	}
	return step
}

// YamAdam is Adam with the first moment renormalized by its own bias
// correction before computing the step, per the original's YamAdam rule.
type YamAdam struct {
	LR, Beta1, Beta2, Eps float64
	m, v                  []float64
	t                     int
}

func (y *YamAdam) Step(g []float64) []float64 {
	eps := y.Eps
	if eps == 0 {
		eps = 1e-8
	}
	y.m = lazy(y.m, len(g))
	y.v = lazy(y.v, len(g))
	y.t++
	bias1 := 1 - math.Pow(y.Beta1, float64(y.t))
	step := make([]float64, len(g))
	for i, gi := range g {
		prevM := y.m[i]
		y.m[i] = y.Beta1*y.m[i] + (1-y.Beta1)*gi
		mHat := y.m[i] / bias1
		diff := y.m[i] - prevM
		y.v[i] = y.Beta2*y.v[i] + (1-y.Beta2)*diff*diff
		step[i] = y.LR * mHat / (math.Sqrt(y.v[i]) + eps)
	}
	return step
}

// AmsGrad keeps a running maximum of the second-moment estimate so the
// effective learning rate never increases, fixing Adam's convergence
// counterexample.
type AmsGrad struct {
	LR, Beta1, Beta2, Eps float64
	m, v, vHatMax         []float64
}

func (a *AmsGrad) Step(g []float64) []float64 {
	eps := a.Eps
	if eps == 0 {
		eps = 1e-8
	}
	a.m = lazy(a.m, len(g))
	a.v = lazy(a.v, len(g))
	a.vHatMax = lazy(a.vHatMax, len(g))
	step := make([]float64, len(g))
	for i, gi := range g {
		a.m[i] = a.Beta1*a.m[i] + (1-a.Beta1)*gi
		a.v[i] = a.Beta2*a.v[i] + (1-a.Beta2)*gi*gi
		a.vHatMax[i] = math.Max(a.vHatMax[i], a.v[i])
		step[i] = a.LR * a.m[i] / (math.Sqrt(a.vHatMax[i]) + eps)
	}
	return step
}

// Yogi replaces AmsGrad's multiplicative second-moment update with an
// additive sign-controlled one, improving behavior on sparse gradients.
type Yogi struct {
	LR, Beta1, Beta2, Eps float64
	m, v                  []float64
}

func (y *Yogi) Step(g []float64) []float64 {
	eps := y.Eps
	if eps == 0 {
		eps = 1e-8
	}
	y.m = lazy(y.m, len(g))
	y.v = lazy(y.v, len(g))
	step := make([]float64, len(g))
	for i, gi := range g {
		y.m[i] = y.Beta1*y.m[i] + (1-y.Beta1)*gi
		g2 := gi * gi
		y.v[i] -= (1 - y.Beta2) * math.Copysign(1, y.v[i]-g2) * g2
		step[i] = y.LR * y.m[i] / (math.Sqrt(math.Abs(y.v[i])) + eps)
	}
	return step
}

func lazy(s []float64, n int) []float64 {
	if s == nil {
		return make([]float64, n)
	}
	return s
}

// SGDOptions configures the first-order loop.
type SGDOptions struct {
	MaxEpochs int
	Tol       float64 // defaults to 1e-8 when zero
}

// SGD runs the first-order loop: at each epoch compute
// the least-squares gradient J^T r, derive a step via rule, and descend;
// stop at MaxEpochs or once the step's infinity norm falls below Tol.
func SGD(cf *CostFunction, init []float64, rule UpdateRule, opts SGDOptions) ([]float64, Summary, error) {
	tol := opts.Tol
	if tol == 0 {
		tol = 1e-8
	}
	params := append([]float64(nil), init...)
	initialCost, err := cf.SSE(params)
	if err != nil {
		return nil, Summary{}, err
	}
	epoch := 0
	for ; epoch < opts.MaxEpochs; epoch++ {
		resid, jac, err := cf.Eval(params)
		if err != nil {
			return nil, Summary{}, err
		}
		grad := gradient(jac, resid)
		step := rule.Step(grad)
		maxStep := 0.0
		for i, s := range step {
			params[i] -= s
			if a := math.Abs(s); a > maxStep {
				maxStep = a
			}
		}
		if maxStep < tol {
			epoch++
			break
		}
	}
	cost, err := cf.SSE(params)
	if err != nil {
		return nil, Summary{}, err
	}
	return params, Summary{
		InitialCost:         initialCost,
		FinalCost:           cost,
		Iterations:          epoch,
		FunctionEvaluations: cf.FunctionEvaluations,
		JacobianEvaluations: cf.JacobianEvaluations,
		Success:             cost < initialCost,
	}, nil
}
