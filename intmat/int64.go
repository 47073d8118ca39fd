package intmat

import (
	"fmt"
)

// Int64Matrix is the fixed-width 64-bit variant of the integer matrix
// kernel named in spec §4.A/§9 ("a 64-bit integer variant is sufficient
// only when the caller guarantees bounded growth"). It is not used by
// the default driver path; callers that opt into it get hard overflow
// detection instead of silent wraparound.
type Int64Matrix struct {
	Rows, Cols int
	Data       []int64
}

// NewInt64 allocates a rows×cols Int64Matrix of zeros.
func NewInt64(rows, cols int) *Int64Matrix {
	return &Int64Matrix{Rows: rows, Cols: cols, Data: make([]int64, rows*cols)}
}

func (m *Int64Matrix) At(i, j int) int64     { return m.Data[i*m.Cols+j] }
func (m *Int64Matrix) Set(i, j int, v int64) { m.Data[i*m.Cols+j] = v }

// ErrOverflow is returned by fixed-width operations when an
// intermediate product or sum exceeds the range of int64 (spec §7,
// OverflowFailure).
type ErrOverflow struct {
	Row, Col int
}

func (e *ErrOverflow) Error() string {
	return fmt.Sprintf("intmat: int64 overflow computing entry (%d,%d); retry in arbitrary-precision mode", e.Row, e.Col)
}

// MulAdd computes C = A·B entirely in int64 arithmetic, returning
// *ErrOverflow (fatal, per spec §7) the moment any product or running
// sum would overflow, rather than silently wrapping.
func MulAdd(a, b *Int64Matrix) (*Int64Matrix, error) {
	if a.Cols != b.Rows {
		panic(fmt.Errorf("intmat.MulAdd: shape mismatch %dx%d * %dx%d", a.Rows, a.Cols, b.Rows, b.Cols))
	}
	c := NewInt64(a.Rows, b.Cols)
	for i := 0; i < a.Rows; i++ {
		for j := 0; j < b.Cols; j++ {
			var sum int64
			for k := 0; k < a.Cols; k++ {
				x, y := a.At(i, k), b.At(k, j)
				prod := x * y
				if x != 0 && prod/x != y {
					return nil, &ErrOverflow{i, j}
				}
				next := sum + prod
				if (prod > 0 && next < sum) || (prod < 0 && next > sum) {
					return nil, &ErrOverflow{i, j}
				}
				sum = next
			}
			c.Set(i, j, sum)
		}
	}
	return c, nil
}
