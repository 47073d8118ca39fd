// Package qr implements the QR factorizer collaborator (spec §4.B):
// dense high-precision R-factor computation for an integer basis,
// via either Householder reflections or Gram-based Cholesky.
package qr

import (
	"fmt"
	"math"
	"math/big"

	"github.com/cxzhong/blaster/intmat"
	"github.com/cxzhong/blaster/rmat"
)

// ErrRankDeficient is returned when B is numerically rank-deficient
// (spec §4.B: "Fails when B is numerically rank-deficient (fatal;
// returned to caller)").
type ErrRankDeficient struct {
	Row int
}

func (e *ErrRankDeficient) Error() string {
	return fmt.Sprintf("qr: basis is numerically rank-deficient at row %d", e.Row)
}

// Factorize computes the R-factor of the QR decomposition of B^T via
// Householder reflections, following the reflect-and-accumulate
// structure of a dense Householder QR (see DESIGN.md: grounded on
// katalvlaran-lvlath's QR routine, generalized from a generic float
// matrix type to a basis supplied as arbitrary-precision integers).
// Factorize is a pure function of B; safe to call concurrently on
// distinct bases.
func Factorize(b *intmat.Matrix) (*rmat.Matrix, error) {
	n := b.Rows
	if b.Cols != n {
		panic(fmt.Errorf("qr.Factorize: non-square basis %dx%d", b.Rows, b.Cols))
	}

	// A holds a float64 working copy of B^T: column k of A is row k of
	// B, i.e. A[:,k] is the k-th lattice vector. Householder reflections
	// triangularize A in place; the result is R.
	a := make([][]float64, n)
	for i := range a {
		a[i] = make([]float64, n)
	}
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			f, _ := new(big.Float).SetInt(b.At(row, col)).Float64()
			a[col][row] = f
		}
	}

	v := make([]float64, n)
	for k := 0; k < n; k++ {
		var norm float64
		for i := k; i < n; i++ {
			norm += a[i][k] * a[i][k]
		}
		norm = math.Sqrt(norm)
		if norm < 1e-12 {
			return nil, &ErrRankDeficient{Row: k}
		}

		alpha := -math.Copysign(norm, a[k][k])
		for i := range v {
			v[i] = 0
		}
		for i := k; i < n; i++ {
			v[i] = a[i][k]
		}
		v[k] -= alpha

		var beta float64
		for i := k; i < n; i++ {
			beta += v[i] * v[i]
		}
		if beta < 1e-300 {
			// v is (numerically) zero: column k is already aligned with
			// e_k; nothing to reflect.
			continue
		}
		tau := 2.0 / beta

		for j := k; j < n; j++ {
			var sum float64
			for i := k; i < n; i++ {
				sum += v[i] * a[i][j]
			}
			for i := k; i < n; i++ {
				a[i][j] -= tau * v[i] * sum
			}
		}
	}

	r := rmat.New(n)
	for i := 0; i < n; i++ {
		if a[i][i] < 0 {
			// Flip the sign convention row-wise so the diagonal is
			// positive, per spec §3 ("Diagonal entries R[i,i] are
			// positive by convention").
			for j := i; j < n; j++ {
				a[i][j] = -a[i][j]
			}
		}
		if a[i][i] <= 0 {
			return nil, &ErrRankDeficient{Row: i}
		}
		for j := i; j < n; j++ {
			r.Set(i, j, a[i][j])
		}
	}
	return r, nil
}
