package intmat

// Transpose returns a new Matrix holding the transpose of m. Used by
// the driver (spec §4.G) to convert between the public basis
// convention (rows are lattice vectors, matching qr.Factorize's
// contract) and the column-vector convention the R/U-based kernels
// use internally (component A's ZZRightMatMul and every kernel's
// AddColumnMultiple/SwapColumns address basis vectors by column).
func Transpose(m *Matrix) *Matrix {
	out := New(m.Cols, m.Rows)
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			out.At(j, i).Set(m.At(i, j))
		}
	}
	return out
}
