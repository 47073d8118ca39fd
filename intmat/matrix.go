// Package intmat implements the exact integer matrix kernel: dense
// integer GEMM and in-place right-multiplication of a column strip,
// used to compose block transforms into the global basis and
// unimodular transform under exact (arbitrary-precision) arithmetic.
package intmat

import (
	"fmt"
	"math/big"
)

// Matrix is a row-major n×m matrix of arbitrary-precision integers. A
// non-zero Stride greater than Cols allows Matrix to describe a view
// into a wider backing store, so a column strip of a larger matrix can
// be addressed without copying.
type Matrix struct {
	Rows, Cols int
	Stride     int
	Data       []*big.Int
}

// New allocates a rows×cols Matrix of zero entries.
func New(rows, cols int) *Matrix {
	data := make([]*big.Int, rows*cols)
	for i := range data {
		data[i] = new(big.Int)
	}
	return &Matrix{Rows: rows, Cols: cols, Stride: cols, Data: data}
}

// Identity allocates the n×n identity matrix.
func Identity(n int) *Matrix {
	m := New(n, n)
	for i := 0; i < n; i++ {
		m.At(i, i).SetInt64(1)
	}
	return m
}

// At returns a pointer to the entry at (i, j), usable both to read and
// to mutate in place.
func (m *Matrix) At(i, j int) *big.Int {
	return m.Data[i*m.Stride+j]
}

// Set assigns v (copied) to entry (i, j).
func (m *Matrix) Set(i, j int, v *big.Int) {
	m.At(i, j).Set(v)
}

// Clone returns a deep, densely-packed (Stride == Cols) copy of m.
func (m *Matrix) Clone() *Matrix {
	out := New(m.Rows, m.Cols)
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			out.At(i, j).Set(m.At(i, j))
		}
	}
	return out
}

// Equal reports whether a and b have the same shape and entries.
func (a *Matrix) Equal(b *Matrix) bool {
	if a.Rows != b.Rows || a.Cols != b.Cols {
		return false
	}
	for i := 0; i < a.Rows; i++ {
		for j := 0; j < a.Cols; j++ {
			if a.At(i, j).Cmp(b.At(i, j)) != 0 {
				return false
			}
		}
	}
	return true
}

// IsIdentity reports whether m is the n×n identity matrix.
func (m *Matrix) IsIdentity() bool {
	if m.Rows != m.Cols {
		return false
	}
	one := big.NewInt(1)
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			v := m.At(i, j)
			if i == j {
				if v.Cmp(one) != 0 {
					return false
				}
			} else if v.Sign() != 0 {
				return false
			}
		}
	}
	return true
}

// Mul computes C = A·B. Panics (fatal, a shape-mismatch is a
// programmer error) if the inner dimensions disagree.
func Mul(a, b *Matrix) *Matrix {
	if a.Cols != b.Rows {
		panic(fmt.Errorf("intmat.Mul: shape mismatch %dx%d * %dx%d", a.Rows, a.Cols, b.Rows, b.Cols))
	}
	c := New(a.Rows, b.Cols)
	tmp := new(big.Int)
	for i := 0; i < a.Rows; i++ {
		for k := 0; k < a.Cols; k++ {
			aik := a.At(i, k)
			if aik.Sign() == 0 {
				continue
			}
			for j := 0; j < b.Cols; j++ {
				tmp.Mul(aik, b.At(k, j))
				c.At(i, j).Add(c.At(i, j), tmp)
			}
		}
	}
	return c
}

// ZZRightMatMul performs the in-place update
// a[:, colStart:colStart+w] := a[:, colStart:colStart+w] · u
// where u is a w×w unimodular block transform. It is safe to call
// concurrently on disjoint column ranges [colStart, colStart+w) of the
// same underlying matrix, since each call only ever reads and writes
// within its own range. Panics on shape mismatch (fatal, programmer
// error per spec §4.A).
func ZZRightMatMul(a *Matrix, colStart, w int, u *Matrix) {
	if u.Rows != w || u.Cols != w {
		panic(fmt.Errorf("intmat.ZZRightMatMul: transform is %dx%d, want %dx%d", u.Rows, u.Cols, w, w))
	}
	if colStart < 0 || colStart+w > a.Cols {
		panic(fmt.Errorf("intmat.ZZRightMatMul: column range [%d,%d) out of bounds for %d columns", colStart, colStart+w, a.Cols))
	}
	if u.IsIdentity() {
		return
	}

	row := make([]*big.Int, w)
	for i := range row {
		row[i] = new(big.Int)
	}
	tmp := new(big.Int)

	for i := 0; i < a.Rows; i++ {
		for j := 0; j < w; j++ {
			row[j].SetInt64(0)
		}
		for k := 0; k < w; k++ {
			aik := a.At(i, colStart+k)
			if aik.Sign() == 0 {
				continue
			}
			for j := 0; j < w; j++ {
				ukj := u.At(k, j)
				if ukj.Sign() == 0 {
					continue
				}
				tmp.Mul(aik, ukj)
				row[j].Add(row[j], tmp)
			}
		}
		for j := 0; j < w; j++ {
			a.Set(i, colStart+j, row[j])
		}
	}
}

// AddColumnMultiple performs column j -= q * column i (an elementary,
// unimodular column operation), used by the size-reduction kernel.
func (m *Matrix) AddColumnMultiple(j, i int, q *big.Int) {
	if q.Sign() == 0 {
		return
	}
	tmp := new(big.Int)
	for r := 0; r < m.Rows; r++ {
		tmp.Mul(q, m.At(r, i))
		m.At(r, j).Sub(m.At(r, j), tmp)
	}
}

// SwapColumns exchanges columns i and j in place.
func (m *Matrix) SwapColumns(i, j int) {
	for r := 0; r < m.Rows; r++ {
		a, b := m.At(r, i), m.At(r, j)
		*a, *b = *b, *a
	}
}

// NegateColumn flips the sign of every entry in column j in place.
func (m *Matrix) NegateColumn(j int) {
	for r := 0; r < m.Rows; r++ {
		m.At(r, j).Neg(m.At(r, j))
	}
}

// Det computes the determinant of a square integer matrix exactly via
// fraction-free (Bareiss) Gaussian elimination, used by tests to check
// the determinant-preservation invariant without floating error.
func (m *Matrix) Det() *big.Int {
	if m.Rows != m.Cols {
		panic(fmt.Errorf("intmat.Det: non-square %dx%d", m.Rows, m.Cols))
	}
	n := m.Rows
	a := m.Clone()
	prevPivot := big.NewInt(1)
	sign := 1

	for k := 0; k < n-1; k++ {
		if a.At(k, k).Sign() == 0 {
			swapped := false
			for r := k + 1; r < n; r++ {
				if a.At(r, k).Sign() != 0 {
					a.swapRows(k, r)
					sign = -sign
					swapped = true
					break
				}
			}
			if !swapped {
				return big.NewInt(0)
			}
		}
		for i := k + 1; i < n; i++ {
			for j := k + 1; j < n; j++ {
				t1 := new(big.Int).Mul(a.At(i, j), a.At(k, k))
				t2 := new(big.Int).Mul(a.At(i, k), a.At(k, j))
				t1.Sub(t1, t2)
				t1.Quo(t1, prevPivot)
				a.At(i, j).Set(t1)
			}
			a.At(i, k).SetInt64(0)
		}
		prevPivot = a.At(k, k)
	}
	det := new(big.Int).Set(a.At(n-1, n-1))
	if sign < 0 {
		det.Neg(det)
	}
	return det
}

func (m *Matrix) swapRows(i, j int) {
	for c := 0; c < m.Cols; c++ {
		a, b := m.At(i, c), m.At(j, c)
		*a, *b = *b, *a
	}
}
