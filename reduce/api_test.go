package reduce

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cxzhong/blaster/intmat"
	"github.com/cxzhong/blaster/qr"
)

// requireSizeReduced asserts the size-reduction invariant directly
// against a re-derived R, independent of sizeReduceWindow's own bookkeeping.
func requireSizeReduced(t *testing.T, b *intmat.Matrix) {
	t.Helper()
	r, err := qr.Factorize(b)
	require.NoError(t, err)
	for i := 0; i < r.N; i++ {
		rii := r.At(i, i)
		if rii == 0 {
			continue
		}
		half := rii/2 + numericalEpsilon
		for j := i + 1; j < r.N; j++ {
			require.LessOrEqual(t, absFloat(r.At(i, j)), half)
		}
	}
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// SizeReduce on the knapsack fixture satisfies the size-reduction
// invariant but need not satisfy Lovász, since only elementary column
// combinations run, never a swap.
func TestSizeReduceSatisfiesInvariantWithoutSwaps(t *testing.T) {
	orig := knapsackBasis()

	res, err := SizeReduce(orig)
	require.NoError(t, err)

	requireEquivalence(t, orig, res)
	requireSizeReduced(t, res.Basis)
}

func TestSeysenReduceSatisfiesInvariantWithoutSwaps(t *testing.T) {
	orig := knapsackBasis()

	res, err := SeysenReduce(orig)
	require.NoError(t, err)

	requireEquivalence(t, orig, res)
	requireSizeReduced(t, res.Basis)
}

// SizeReduce on an already-fully-LLL-reduced basis is a no-op: nothing
// left for elementary column combinations to do.
func TestSizeReduceIsNoOpOnAlreadyReducedBasis(t *testing.T) {
	orig := knapsackBasis()
	reduced, err := LLLReduce(context.Background(), orig, Options{Delta: 0.99})
	require.NoError(t, err)

	res, err := SizeReduce(reduced.Basis)
	require.NoError(t, err)

	require.True(t, res.Basis.Equal(reduced.Basis))
	require.True(t, res.Transform.IsIdentity())
}

func TestSizeReduceRejectsNonSquareBasis(t *testing.T) {
	b := intmat.New(2, 3)
	_, err := SizeReduce(b)
	require.Error(t, err)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, InvalidInput, rerr.Kind)
}

func TestSeysenReduceRejectsNonSquareBasis(t *testing.T) {
	b := intmat.New(3, 2)
	_, err := SeysenReduce(b)
	require.Error(t, err)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, InvalidInput, rerr.Kind)
}

// A basis satisfying the Lovász condition alone (scaled identity,
// delta=0.5 per S4's reasoning) is weakly LLL-reduced even though
// nothing ran to enforce size-reduction explicitly — the identity's
// off-diagonal R entries are already zero, so both conditions happen to
// hold, but IsWeaklyLLLReduced only checks the Lovász half.
func TestIsWeaklyLLLReducedOnLovaszSatisfyingBasis(t *testing.T) {
	orig := newBasis([][]int64{
		{100, 0, 0, 0},
		{0, 99, 0, 0},
		{0, 0, 98, 0},
		{0, 0, 0, 97},
	})

	ok, err := IsWeaklyLLLReduced(orig, 0.5)
	require.NoError(t, err)
	require.True(t, ok)
}

// The same basis at delta=0.99 narrowly violates Lovász (0.99*100^2 =
// 9900 > 99^2 = 9801), so IsWeaklyLLLReduced must report false even
// though the basis is already size-reduced.
func TestIsWeaklyLLLReducedFalseWhenLovaszViolated(t *testing.T) {
	orig := newBasis([][]int64{
		{100, 0, 0, 0},
		{0, 99, 0, 0},
		{0, 0, 98, 0},
		{0, 0, 0, 97},
	})

	ok, err := IsWeaklyLLLReduced(orig, 0.99)
	require.NoError(t, err)
	require.False(t, ok)
}

// A basis that is weakly LLL-reduced but not size-reduced demonstrates
// the gap between IsWeaklyLLLReduced and IsLLLReduced: start from the
// LLL-reduced knapsack basis and add 1000*row0 into row1. Row0's
// Gram-Schmidt vector is row0 itself, so adding a multiple of row0 to
// row1 only changes row1's component along that direction (R[0,1]) and
// leaves row1's orthogonal residual (R[1,1]) and every other entry
// untouched. The only Lovász comparison that reads R[0,1] is the one
// at index 0, and a larger |R[0,1]| only enlarges its right-hand side —
// Lovász still holds everywhere, but R[0,1] is now far outside
// [-R[0,0]/2, R[0,0]/2], so size-reduction is violated.
func TestIsWeaklyLLLReducedTrueButIsLLLReducedFalse(t *testing.T) {
	orig := knapsackBasis()
	reduced, err := LLLReduce(context.Background(), orig, Options{Delta: 0.99})
	require.NoError(t, err)

	b := reduced.Basis.Clone()
	scale := big.NewInt(1000)
	tmp := new(big.Int)
	for j := 0; j < b.Cols; j++ {
		tmp.Mul(b.At(0, j), scale)
		b.At(1, j).Add(b.At(1, j), tmp)
	}

	weak, err := IsWeaklyLLLReduced(b, 0.99)
	require.NoError(t, err)
	require.True(t, weak)

	full, err := IsLLLReduced(b, 0.99)
	require.NoError(t, err)
	require.False(t, full)
}
