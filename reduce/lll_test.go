package reduce

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cxzhong/blaster/intmat"
	"github.com/cxzhong/blaster/rmat"
)

func TestAdjacentSwapPreservesOrthogonalDeterminant(t *testing.T) {
	r := rmat.New(2)
	r.Set(0, 0, 3)
	r.Set(0, 1, 1)
	r.Set(1, 1, 4)
	before := math.Abs(r.At(0, 0) * r.At(1, 1))

	u := intmat.Identity(2)
	adjacentSwap(r, u, 0)

	after := math.Abs(r.At(0, 0) * r.At(1, 1))
	require.InDelta(t, before, after, 1e-9)
	require.GreaterOrEqual(t, r.At(0, 0), 0.0)
	require.GreaterOrEqual(t, r.At(1, 1), 0.0)
	require.InDelta(t, 1.0, math.Abs(float64(u.Det().Int64())), 1e-9)
}

func TestDeepInsertionIndexAdjacentSpecializesToLovasz(t *testing.T) {
	r := rmat.New(2)
	r.Set(0, 0, 1)
	r.Set(0, 1, 0.9)
	r.Set(1, 1, 0.1)
	idx := deepInsertionIndex(r, 0, 1, 1, 0.99)
	require.Equal(t, 0, idx)

	r2 := rmat.New(2)
	r2.Set(0, 0, 1)
	r2.Set(0, 1, 0)
	r2.Set(1, 1, 2)
	idx2 := deepInsertionIndex(r2, 0, 1, 1, 0.99)
	require.Equal(t, 1, idx2)
}

func TestLLLReducesLovaszViolatingPair(t *testing.T) {
	r := rmat.New(2)
	r.Set(0, 0, 1)
	r.Set(0, 1, 0.9)
	r.Set(1, 1, 0.1)
	u := intmat.Identity(2)

	LLL(r, u, 0, 2, 0.99, 1, false)

	for l := 0; l < 1; l++ {
		rll := r.At(l, l)
		rlk := r.At(l, l+1)
		require.GreaterOrEqual(t, 0.99*rll*rll, rlk*rlk-1e-6)
	}
	require.False(t, u.IsIdentity())
}

func TestLLLLeavesAlreadyReducedBasisUntouched(t *testing.T) {
	r := rmat.New(3)
	r.Set(0, 0, 5)
	r.Set(1, 1, 6)
	r.Set(2, 2, 7)
	u := intmat.Identity(3)

	LLL(r, u, 0, 3, 0.99, 1, false)

	require.True(t, u.IsIdentity())
	require.InDelta(t, 5, r.At(0, 0), 1e-9)
	require.InDelta(t, 6, r.At(1, 1), 1e-9)
	require.InDelta(t, 7, r.At(2, 2), 1e-9)
}

func TestLLLTerminatesOnLargerRandomishProfile(t *testing.T) {
	r := rmat.New(5)
	diag := []float64{5, 1, 4, 1, 3}
	off := [][2]float64{{0, 1}, {1, 2}, {2, 3}, {3, 4}}
	for i, d := range diag {
		r.Set(i, i, d)
	}
	for _, p := range off {
		i := int(p[0])
		j := int(p[1])
		r.Set(i, j, diag[i]*0.9)
	}
	u := intmat.Identity(5)

	require.NotPanics(t, func() {
		LLL(r, u, 0, 5, 0.99, 1, false)
	})
	for l := 0; l < 4; l++ {
		rll := r.At(l, l)
		rlk := r.At(l, l+1)
		require.GreaterOrEqual(t, 0.99*rll*rll, rlk*rlk-1e-6)
	}
}

func TestLLLWithDepthGreaterThanOneStillSatisfiesAdjacentLovasz(t *testing.T) {
	r := rmat.New(3)
	r.Set(0, 0, 1)
	r.Set(1, 1, 1)
	r.Set(2, 2, 5)
	r.Set(0, 1, 0.4)
	r.Set(0, 2, 0.2)
	r.Set(1, 2, 0.3)
	u := intmat.Identity(3)

	LLL(r, u, 0, 3, 0.99, 3, false)

	for l := 0; l < 2; l++ {
		rll := r.At(l, l)
		rlk := r.At(l, l+1)
		rl1 := r.At(l+1, l+1)
		require.GreaterOrEqual(t, 0.99*rll*rll, rlk*rlk-1e-6)
		require.GreaterOrEqual(t, rl1*rl1+rlk*rlk, 0.99*rll*rll-1e-6)
	}
}
