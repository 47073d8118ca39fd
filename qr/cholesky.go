package qr

import (
	"math"

	"github.com/cxzhong/blaster/rmat"
)

// CholeskyFactorize computes the upper-triangular Cholesky factor R of
// a symmetric positive-(semi)definite Gram matrix (spec §4.B's other
// named strategy: "Gram-based Cholesky with precision safeguards"),
// an alternative to Factorize for callers that already have a basis's
// Gram matrix (B·B^T) rather than the basis itself.
//
// Unlike Factorize, CholeskyFactorize tolerates a non-positive pivot:
// it is the expected outcome once the dependent vector's contribution
// has been driven to (numerically) zero, per spec §4.D's note that the
// kernel treats a non-positive diagonal as something to repair rather
// than an error. The degenerate index, if any, is returned so the
// caller can drop it. A pivot is considered degenerate below
// tolerance.
func CholeskyFactorize(gram [][]float64, tolerance float64) (r *rmat.Matrix, degenerate int) {
	n := len(gram)
	r = rmat.New(n)
	degenerate = -1

	// Work on a private copy so the caller's Gram matrix is untouched.
	g := make([][]float64, n)
	for i := range g {
		g[i] = append([]float64(nil), gram[i]...)
	}

	for i := 0; i < n; i++ {
		d := g[i][i]
		if d <= tolerance {
			if degenerate == -1 {
				degenerate = i
			}
			d = tolerance
		}
		rii := math.Sqrt(d)
		r.Set(i, i, rii)

		row := make([]float64, n)
		for j := i + 1; j < n; j++ {
			row[j] = g[i][j] / rii
			r.Set(i, j, row[j])
		}
		for j := i + 1; j < n; j++ {
			for k := j; k < n; k++ {
				g[j][k] -= row[j] * row[k]
			}
		}
	}
	return r, degenerate
}
