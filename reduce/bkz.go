package reduce

import (
	"math"
	"math/big"

	"github.com/cxzhong/blaster/intmat"
	"github.com/cxzhong/blaster/rmat"
)

// insertEnumeratedVector splices the genuinely shortest vector found
// by an unrestricted Enumerate call into column blockEnd-1 of r/u,
// given its coefficient vector coeffs (length blockEnd-lo, coeffs[i]
// multiplies column lo+i). Enumerate places no restriction on the
// leading coefficient, so coeffs need not have a 1, or even a nonzero
// entry, in its last slot.
//
// Any genuinely shortest combination is primitive: gcd(coeffs)=1,
// since a common factor g>=2 would mean coeffs/g names a strictly
// shorter integer combination of the same columns, contradicting that
// coeffs was selected as the minimum-norm candidate. That primitivity
// is what lets a running left-to-right fold drive the whole
// coefficient vector down to a single ±1 at the last position: adding
// a multiple of a lower-indexed column into a higher-indexed one is
// the same triangularity-preserving elementary move sizeReduceClassical
// already relies on (AddColumnMultiple(j, i, ..., upTo) with i<j keeps
// r upper triangular since neither column has any nonzero entry below
// its own diagonal row), so each fold step runs the classical
// two-integer Euclidean algorithm between adjacent positions k-1 and
// k — reducing the lower one modulo the higher, then using
// adjacentSwap (the same primitive LLL's own swap chain trusts,
// lll.go) to flip which position plays modulus whenever the remainder
// is still nonzero — until position k-1 is driven to zero and position
// k holds gcd(coeffs[0..k]). Folding every position in turn leaves the
// gcd of the whole vector, ±1, at the window's last position with no
// new matrix dimension and no floating-point near-zero test anywhere.
func insertEnumeratedVector(r *rmat.Matrix, u *intmat.Matrix, lo, blockEnd int, coeffs []int64) {
	width := blockEnd - lo
	c := append([]int64(nil), coeffs...)

	for k := 1; k < width; k++ {
		for c[k-1] != 0 && c[k] != 0 {
			t := math.Round(float64(c[k-1]) / float64(c[k]))

			// col(lo+k) += t*col(lo+k-1): the lower-indexed column (k-1)
			// is the source, so triangularity survives; c[k-1] absorbs
			// the Euclidean reduction while c[k]'s value stays fixed.
			r.AddColumnMultiple(lo+k, lo+k-1, t, blockEnd)
			u.AddColumnMultiple(lo+k, lo+k-1, big.NewInt(int64(-t)))
			c[k-1] -= int64(t) * c[k]
			if c[k-1] == 0 {
				break
			}

			// The remainder is still nonzero and now smaller than c[k]:
			// swap roles so it becomes the higher-indexed modulus for
			// the next round, as the classical Euclidean algorithm does
			// when it swaps which operand is reduced modulo the other.
			swapFold(r, u, lo+k-1, c, k-1)
		}
		if c[k-1] != 0 {
			// c[k] must be zero here: move the nonzero remainder up to
			// position k so it becomes next iteration's running gcd.
			swapFold(r, u, lo+k-1, c, k-1)
		}
	}

	last := width - 1
	if c[last] == -1 {
		r.NegateColumn(lo + last)
		u.NegateColumn(lo + last)
	}
}

// swapFold swaps adjacent columns globalP, globalP+1 via adjacentSwap
// and folds the bookkeeping coefficients c[localP], c[localP+1] to
// match. adjacentSwap's rotation can additionally negate either
// resulting column to keep its repaired diagonal entry positive
// (lll.go), so which coefficient the swap carries to which position
// isn't simply "swap the two values" — it's resolved exactly, by
// comparing each new column of u against the other's pre-swap column
// (exact big.Int equality, no floating tolerance), since the two are
// related by nothing but that swap and an optional sign flip.
func swapFold(r *rmat.Matrix, u *intmat.Matrix, globalP int, c []int64, localP int) {
	rows := u.Rows
	prevLeft := make([]*big.Int, rows)
	prevRight := make([]*big.Int, rows)
	for row := 0; row < rows; row++ {
		prevLeft[row] = new(big.Int).Set(u.At(row, globalP))
		prevRight[row] = new(big.Int).Set(u.At(row, globalP+1))
	}

	adjacentSwap(r, u, globalP)

	signLeft := columnSign(u, globalP, prevRight)
	signRight := columnSign(u, globalP+1, prevLeft)
	c[localP], c[localP+1] = signLeft*c[localP+1], signRight*c[localP]
}

// columnSign reports +1 if column col of u now equals ref, or -1 if it
// equals -ref; callers only ever call it where one of those two must
// hold exactly.
func columnSign(u *intmat.Matrix, col int, ref []*big.Int) int64 {
	for row := 0; row < u.Rows; row++ {
		v := u.At(row, col)
		if v.Sign() == 0 {
			continue
		}
		if v.Cmp(ref[row]) == 0 {
			return 1
		}
		return -1
	}
	return 1
}

// bkzWindow runs one enumeration-and-insert step at window start lo per
// spec §4.F: LLL-reduce the full remaining block [lo, hi) (not just the
// β-wide enumeration sub-block — spec step 1 is explicit that the LLL
// pass covers "[j, w)"), runs the unrestricted enumeration of spec
// §4.E within the narrower [lo, lo+β) to find that sub-block's
// genuine shortest vector (not one restricted to any particular
// leading coefficient — spec §4.F step 2 asks for "the shortest
// lattice vector of that sub-block", full stop), and if it is strictly
// shorter than the sub-block's current first vector, splices it in as
// the new last column, rotates that column to position lo with adjacent
// swaps (so no size-reduction step runs against it first), and re-runs
// LLL over just [lo, lo+β). Reports whether it changed anything.
func bkzWindow(r *rmat.Matrix, u *intmat.Matrix, lo, hi int, opts Options) (bool, error) {
	blockEnd := lo + opts.Beta
	if blockEnd > hi {
		blockEnd = hi
	}
	width := blockEnd - lo
	if width < 2 {
		return false, nil
	}

	changed := LLL(r, u, lo, hi, opts.Delta, opts.Depth, opts.UseSeysen)

	sub := r.Sub(lo, blockEnd)
	pruning := lookupPruning(sub.N)
	radius := sub.At(0, 0)
	if radius <= 0 {
		return changed, nil
	}

	res, err := Enumerate(sub, pruning, radius)
	if err != nil {
		return changed, err
	}
	// Accept only if strictly shorter than the sub-block's current first
	// vector by a factor > delta^{-1/2} (spec §4.F step 3), not merely
	// by the numerical-tolerance margin alone.
	threshold := radius * math.Sqrt(opts.Delta)
	if !res.Found || math.Sqrt(res.NormSq) >= threshold*(1-numericalEpsilon) {
		return changed, nil
	}

	insertEnumeratedVector(r, u, lo, blockEnd, res.Coeffs)
	for p := blockEnd - 1; p > lo; p-- {
		adjacentSwap(r, u, p-1)
	}
	LLL(r, u, lo, blockEnd, opts.Delta, opts.Depth, opts.UseSeysen)
	return true, nil
}

// BKZ runs opts.Tours tours of the sliding-window BKZ kernel over
// [lo, hi), per spec §4.F. Returns whether any tour changed the block.
func BKZ(r *rmat.Matrix, u *intmat.Matrix, lo, hi int, opts Options) (bool, error) {
	if hi-lo <= 1 {
		return false, nil
	}
	changedEver := false
	for t := 0; t < opts.Tours; t++ {
		changedThisTour := false
		for k := lo; k < hi-1; k++ {
			changed, err := bkzWindow(r, u, k, hi, opts)
			if err != nil {
				return changedEver, err
			}
			changedThisTour = changedThisTour || changed
		}
		if !changedThisTour {
			break
		}
		changedEver = true
	}
	return changedEver, nil
}
