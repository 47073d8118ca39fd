package reduce

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cxzhong/blaster/intmat"
	"github.com/cxzhong/blaster/rmat"
)

func newIdentityU(n int) *intmat.Matrix { return intmat.Identity(n) }

func TestSizeReduceClassicalBringsOffDiagonalBelowHalf(t *testing.T) {
	r := rmat.New(2)
	r.Set(0, 0, 2)
	r.Set(0, 1, 7)
	r.Set(1, 1, 3)
	u := newIdentityU(2)

	changed := sizeReduceWindow(r, u, 0, 2, false)
	require.True(t, changed)
	require.LessOrEqual(t, r.At(0, 1), r.At(0, 0)/2)
	require.GreaterOrEqual(t, r.At(0, 1), -r.At(0, 0)/2)
}

func TestSizeReduceNoOpWhenAlreadyReduced(t *testing.T) {
	r := rmat.New(2)
	r.Set(0, 0, 2)
	r.Set(0, 1, 0.5)
	r.Set(1, 1, 3)
	u := newIdentityU(2)

	changed := sizeReduceWindow(r, u, 0, 2, false)
	require.False(t, changed)
	require.True(t, u.IsIdentity())
}

func TestSizeReduceSeysenReachesSizeReducedInvariant(t *testing.T) {
	r := rmat.New(3)
	r.Set(0, 0, 2)
	r.Set(0, 1, 5)
	r.Set(1, 1, 2)
	r.Set(0, 2, -9)
	r.Set(1, 2, 4)
	r.Set(2, 2, 3)
	u := newIdentityU(3)

	sizeReduceWindow(r, u, 0, 3, true)

	for j := 1; j < 3; j++ {
		for i := 0; i < j; i++ {
			require.LessOrEqual(t, r.At(i, j), r.At(i, i)/2+1e-6)
			require.GreaterOrEqual(t, r.At(i, j), -r.At(i, i)/2-1e-6)
		}
	}
}

func TestSizeReduceTerminatesOnDegenerateZeroDiagonal(t *testing.T) {
	r := rmat.New(2)
	r.Set(0, 0, 0)
	r.Set(0, 1, 5)
	r.Set(1, 1, 3)
	u := newIdentityU(2)

	require.NotPanics(t, func() {
		sizeReduceWindow(r, u, 0, 2, false)
	})
}
