package metrics

import "gonum.org/v1/gonum/mat"

// FisherInformation returns the observed Fisher information matrix for a
// nonlinear least-squares model under Gaussian noise of variance sigma2:
// (1/sigma2) * J^T J, where jacobian is d(model)/d(params) over the
// fitted range. This is the matrix the MDL evaluator's parameter
// codelength term diagonalizes.
func FisherInformation(jacobian *mat.Dense, sigma2 float64) *mat.Dense {
	var jtj mat.Dense
	jtj.Mul(jacobian.T(), jacobian)
	jtj.Scale(1/sigma2, &jtj)
	return &jtj
}

// Diagonal returns the diagonal entries of a square matrix.
func Diagonal(m *mat.Dense) []float64 {
	n, _ := m.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = m.At(i, i)
	}
	return out
}
