// Package rmat implements the R-factor: a dense, upper-triangular
// matrix of 64-bit floats representing the Gram-Schmidt profile of a
// lattice basis, re-derived by a QR routine on every driver pass
// rather than persisted (spec §3).
package rmat

import "fmt"

// Matrix is a row-major N×N upper-triangular matrix of float64. Cap
// allows a Matrix to be allocated once at the driver's maximum block
// width and reused at a smaller logical size N for the last
// (possibly narrower) block of a partition, per spec §6 ("N is the
// effective width (may be ≤ w for the last block)").
type Matrix struct {
	N    int
	Cap  int
	Data []float64
}

// New allocates a Matrix with logical size and backing capacity both n.
func New(n int) *Matrix {
	return &Matrix{N: n, Cap: n, Data: make([]float64, n*n)}
}

// NewWithCap allocates a Matrix with backing capacity cap but logical
// size n <= cap.
func NewWithCap(n, cap int) *Matrix {
	if n > cap {
		panic(fmt.Errorf("rmat.NewWithCap: n=%d exceeds cap=%d", n, cap))
	}
	return &Matrix{N: n, Cap: cap, Data: make([]float64, cap*cap)}
}

func (m *Matrix) At(i, j int) float64     { return m.Data[i*m.Cap+j] }
func (m *Matrix) Set(i, j int, v float64) { m.Data[i*m.Cap+j] = v }

// Clone returns a densely-packed (Cap == N) deep copy of m.
func (m *Matrix) Clone() *Matrix {
	out := New(m.N)
	for i := 0; i < m.N; i++ {
		for j := 0; j < m.N; j++ {
			out.Set(i, j, m.At(i, j))
		}
	}
	return out
}

// Sub returns a new Matrix holding a copy of the principal submatrix
// R[lo:hi, lo:hi]. Valid because the Gram-Schmidt profile of a
// contiguous index range of an upper-triangular R is itself the
// correctly-scaled R-factor of the sub-lattice spanned by that index
// range (used by the BKZ kernel to enumerate within a sub-block).
func (m *Matrix) Sub(lo, hi int) *Matrix {
	n := hi - lo
	out := New(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, m.At(lo+i, lo+j))
		}
	}
	return out
}

// CopyInto writes src's entries into the receiver starting at
// (rowOff, colOff), used to splice a block's locally-reduced R-window
// back into the global R when Options.Debug is set (spec §9 Open
// Questions: the write-back path is non-observable, kept here only
// because it is cheap and testable in isolation).
func (dst *Matrix) CopyInto(src *Matrix, rowOff, colOff int) {
	for i := 0; i < src.N; i++ {
		for j := 0; j < src.N; j++ {
			dst.Set(rowOff+i, colOff+j, src.At(i, j))
		}
	}
}

// AddColumnMultiple performs column j += c * column i, restricted to
// rows [0, upTo) (upTo defaults to N when callers pass m.N), used by
// the size-reduction kernel.
func (m *Matrix) AddColumnMultiple(j, i int, c float64, upTo int) {
	if c == 0 {
		return
	}
	for r := 0; r < upTo; r++ {
		m.Set(r, j, m.At(r, j)+c*m.At(r, i))
	}
}

// SwapColumns exchanges columns i and j across all N rows.
func (m *Matrix) SwapColumns(i, j int) {
	for r := 0; r < m.N; r++ {
		a, b := m.At(r, i), m.At(r, j)
		m.Set(r, i, b)
		m.Set(r, j, a)
	}
}

// NegateColumn flips the sign of every entry in column j.
func (m *Matrix) NegateColumn(j int) {
	for r := 0; r < m.N; r++ {
		m.Set(r, j, -m.At(r, j))
	}
}

// Diag returns the diagonal entries R[i,i], i.e. the Gram-Schmidt norms.
func (m *Matrix) Diag() []float64 {
	d := make([]float64, m.N)
	for i := range d {
		d[i] = m.At(i, i)
	}
	return d
}
