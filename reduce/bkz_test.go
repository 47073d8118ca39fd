package reduce

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cxzhong/blaster/intmat"
	"github.com/cxzhong/blaster/rmat"
)

// buildKnapsackR builds the R-factor of the integer basis
// b0=(10,0,0), b1=(0,3,0), b2=(9,0,4), by hand Gram-Schmidt, so the
// test exercises BKZ's enumeration+insertion path without depending on
// the QR package.
func buildKnapsackR() *rmat.Matrix {
	r := rmat.New(3)
	r.Set(0, 0, 10)
	r.Set(0, 1, 0)
	r.Set(0, 2, 9)
	r.Set(1, 1, 3)
	r.Set(1, 2, 0)
	r.Set(2, 2, 4)
	return r
}

// requireColumnEquals asserts that column col of u is exactly want,
// the true correctness contract of insertEnumeratedVector: the basis
// vector landing at that position is precisely the combination of
// original columns named by coeffs, not merely a vector of the right
// norm. adjacentSwap's internal rotations leave R's own entries
// dependent on the incidental swap path taken, so u (which tracks the
// combination directly in exact integer arithmetic) is the only
// rotation-independent thing worth comparing against.
func requireColumnEquals(t *testing.T, u *intmat.Matrix, col int, want []int64) {
	t.Helper()
	for row, w := range want {
		require.Equal(t, big.NewInt(w), u.At(row, col))
	}
}

func TestInsertEnumeratedVectorBuildsExactCombination(t *testing.T) {
	r := buildKnapsackR()
	u := intmat.Identity(3)

	insertEnumeratedVector(r, u, 0, 3, []int64{-1, 0, 1})

	requireColumnEquals(t, u, 2, []int64{-1, 0, 1})
	normSq := r.At(0, 2)*r.At(0, 2) + r.At(1, 2)*r.At(1, 2) + r.At(2, 2)*r.At(2, 2)
	require.InDelta(t, 17.0, normSq, 1e-9)
	require.Equal(t, int64(1), u.Det().Int64())
}

// TestInsertEnumeratedVectorHandlesNonUnitLeadingCoefficient exercises
// the case EnumerateFixedLeading could never produce on its own: a
// combination whose window-last coefficient is 0 and whose gcd=1
// primitivity is carried entirely by the other two entries, requiring
// the Euclidean fold to run more than one round — and to flip which
// position plays modulus via swapFold — before a single ±1
// coefficient remains.
func TestInsertEnumeratedVectorHandlesNonUnitLeadingCoefficient(t *testing.T) {
	r := buildKnapsackR()
	u := intmat.Identity(3)

	insertEnumeratedVector(r, u, 0, 3, []int64{2, -3, 0})

	requireColumnEquals(t, u, 2, []int64{2, -3, 0})
	normSq := r.At(0, 2)*r.At(0, 2) + r.At(1, 2)*r.At(1, 2) + r.At(2, 2)*r.At(2, 2)
	require.InDelta(t, 481.0, normSq, 1e-6)
	require.Equal(t, int64(1), new(big.Int).Abs(u.Det()).Int64())
}

func TestBKZShortensFirstVectorOfInput(t *testing.T) {
	r := buildKnapsackR()
	u := intmat.Identity(3)
	opts := DefaultOptions()
	opts.Algorithm = AlgBKZ
	opts.Beta = 3
	opts.Tours = 3

	changed, err := BKZ(r, u, 0, 3, opts)
	require.NoError(t, err)
	require.True(t, changed)
	require.Less(t, r.At(0, 0), 10.0)
	require.InDelta(t, 1.0, math.Abs(float64(u.Det().Int64())), 1e-9)
}

func TestBKZNoOpOnWindowNarrowerThanTwo(t *testing.T) {
	r := rmat.New(1)
	r.Set(0, 0, 5)
	u := intmat.Identity(1)
	changed, err := BKZ(r, u, 0, 1, DefaultOptions())
	require.NoError(t, err)
	require.False(t, changed)
}

func TestBKZIsIdempotentOnAnAlreadyReducedBlock(t *testing.T) {
	r := rmat.New(3)
	r.Set(0, 0, 3)
	r.Set(1, 1, 4)
	r.Set(2, 2, 5)
	u := intmat.Identity(3)
	opts := DefaultOptions()
	opts.Algorithm = AlgBKZ
	opts.Beta = 3
	opts.Tours = 2

	_, err := BKZ(r, u, 0, 3, opts)
	require.NoError(t, err)

	diag := append([]float64{}, r.Diag()...)
	changed, err := BKZ(r, u, 0, 3, opts)
	require.NoError(t, err)
	require.False(t, changed)
	require.Equal(t, diag, r.Diag())
}
