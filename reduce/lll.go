package reduce

import (
	"math"

	"github.com/cxzhong/blaster/intmat"
	"github.com/cxzhong/blaster/rmat"
)

// numericalEpsilon is the small tolerance within which a Lovász test or
// a size-reduction bound is treated as satisfied (spec §4.D: "when ...
// the Lovász test is within a small relative tolerance, the kernel
// treats it as satisfied"). deepInsertionIndex and bkzWindow apply it
// as a relative factor; the size-reduction kernel and the checkers in
// api.go add it to the bound as an absolute slack.
const numericalEpsilon = 1e-10

// adjacentSwap exchanges the basis vectors at columns i and i+1 within
// [lo,hi) and repairs R with a single Givens rotation so it stays
// upper triangular, then fixes the sign of the two affected diagonal
// entries by negating columns (never rows, so the fix is itself a
// valid unimodular column operation recorded in u).
//
// Grounded on predrag3141-PSLQ's PerformTwoRowOp (DESIGN.md): that
// function applies a general unit-determinant 2x2 operation to two
// adjacent rows of an integer H matrix; here the analogous operation
// is a swap of two adjacent *columns* of the floating R-factor,
// repaired back to triangular form by a rotation instead of PSLQ's
// exact integer row combination (R is floating-point; U stays exact).
func adjacentSwap(r *rmat.Matrix, u *intmat.Matrix, i int) {
	r.SwapColumns(i, i+1)
	u.SwapColumns(i, i+1)

	a, b := r.At(i, i), r.At(i+1, i)
	hyp := math.Hypot(a, b)
	if hyp < 1e-300 {
		return
	}
	c, s := a/hyp, b/hyp

	for col := i; col < r.N; col++ {
		x, y := r.At(i, col), r.At(i+1, col)
		r.Set(i, col, c*x+s*y)
		r.Set(i+1, col, -s*x+c*y)
	}

	if r.At(i, i) < 0 {
		r.NegateColumn(i)
		u.NegateColumn(i)
	}
	if r.At(i+1, i+1) < 0 {
		r.NegateColumn(i + 1)
		u.NegateColumn(i + 1)
	}
}

// deepInsertionIndex implements Cohen's classical deep-insertion scan
// (DESIGN.md): the leftmost index i in [max(lo,k-depth), k) at which
// inserting column k before i would still satisfy the Lovász-style
// bound fails, or k itself if no such index exists (meaning: advance,
// no insertion needed). depth=1 specializes to the classical adjacent
// Lovász test.
func deepInsertionIndex(r *rmat.Matrix, lo, k, depth int, delta float64) int {
	start := k - depth
	if start < lo {
		start = lo
	}

	c := 0.0
	for l := start; l <= k; l++ {
		rlk := r.At(l, k)
		c += rlk * rlk
	}

	for i := start; i < k; i++ {
		rii := r.At(i, i)
		if delta*rii*rii > c*(1+numericalEpsilon) {
			return i
		}
		rik := r.At(i, k)
		c -= rik * rik
	}
	return k
}

// LLL runs the classical/deep-LLL state machine of spec §4.D over the
// index range [lo, hi) of r and u. u must already be wired to the
// driver's accumulated block transform (identity on first entry).
// Terminal when k reaches hi; the kernel is guaranteed to terminate
// because each insertion strictly decreases the block's potential
// (spec §4.D). Returns whether any column was swapped or reduced.
func LLL(r *rmat.Matrix, u *intmat.Matrix, lo, hi int, delta float64, depth int, useSeysen bool) bool {
	if hi-lo <= 1 {
		return false
	}
	changed := false
	k := lo + 1
	for k < hi {
		if sizeReduceWindow(r, u, lo, k+1, useSeysen) {
			changed = true
		}

		j := deepInsertionIndex(r, lo, k, depth, delta)
		if j == k {
			k++
			continue
		}

		changed = true
		for p := k; p > j; p-- {
			adjacentSwap(r, u, p-1)
		}
		if j > lo {
			k = j
		} else {
			k = lo + 1
		}
	}
	return changed
}
