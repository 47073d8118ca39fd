package reduce

import (
	"math"
	"math/big"

	"github.com/cxzhong/blaster/intmat"
	"github.com/cxzhong/blaster/rmat"
)

// sizeReduceClassical implements spec §4.C's classical algorithm over
// the index range [lo, hi) of r/u: for j from lo+1 to hi-1, for i from
// j-1 down to lo, q = round(R[i,j]/R[i,i]); R[:,j] -= q*R[:,i];
// U[:,j] -= q*U[:,i]. An entry already within R[i,i]/2 (plus
// numericalEpsilon) is left as it is, so an exact tie at one half is not
// flipped to the other sign. Returns whether any column was changed.
func sizeReduceClassical(r *rmat.Matrix, u *intmat.Matrix, lo, hi int) bool {
	changed := false
	for j := lo + 1; j < hi; j++ {
		for i := j - 1; i >= lo; i-- {
			rii := r.At(i, i)
			if rii == 0 {
				continue
			}
			if math.Abs(r.At(i, j)) <= math.Abs(rii)/2+numericalEpsilon {
				continue
			}
			q := math.Round(r.At(i, j) / rii)
			if q == 0 {
				continue
			}
			r.AddColumnMultiple(j, i, -q, hi)
			u.AddColumnMultiple(j, i, big.NewInt(int64(q)))
			changed = true
		}
	}
	return changed
}

// sizeReduceSeysen is the batched alternative named in spec §4.C: all
// quotients for a pass are computed from a snapshot of R (rather than
// the progressively-updated R the classical variant reads), then
// applied simultaneously. Grounded on the "snapshot, then apply in one
// pass" idiom of the teacher's solveLinearSystemInPlace (DESIGN.md).
// Because quotients are computed from a stale snapshot they may not
// fully size-reduce in a single pass, so this repeats until a pass
// makes no change or a generous iteration bound is hit.
func sizeReduceSeysen(r *rmat.Matrix, u *intmat.Matrix, lo, hi int) bool {
	changedEver := false
	for iter := 0; iter < 2*(hi-lo)+4; iter++ {
		n := hi - lo
		quotients := make([][]float64, n)
		for i := range quotients {
			quotients[i] = make([]float64, n)
		}
		for j := lo + 1; j < hi; j++ {
			for i := j - 1; i >= lo; i-- {
				rii := r.At(i, i)
				if rii == 0 || math.Abs(r.At(i, j)) <= math.Abs(rii)/2+numericalEpsilon {
					continue
				}
				quotients[i-lo][j-lo] = math.Round(r.At(i, j) / rii)
			}
		}

		changed := false
		for j := lo + 1; j < hi; j++ {
			for i := j - 1; i >= lo; i-- {
				q := quotients[i-lo][j-lo]
				if q == 0 {
					continue
				}
				r.AddColumnMultiple(j, i, -q, hi)
				u.AddColumnMultiple(j, i, big.NewInt(int64(q)))
				changed = true
			}
		}
		if !changed {
			break
		}
		changedEver = true
	}
	return changedEver
}

// sizeReduceWindow applies the size-reduction kernel to the index
// range [lo, hi) of r and u, selecting the classical or Seysen variant
// per useSeysen. The kernel always terminates (spec §4.C: "Failure:
// none"). The basis-level public entry points are SizeReduce and
// SeysenReduce (api.go).
func sizeReduceWindow(r *rmat.Matrix, u *intmat.Matrix, lo, hi int, useSeysen bool) bool {
	if useSeysen {
		return sizeReduceSeysen(r, u, lo, hi)
	}
	return sizeReduceClassical(r, u, lo, hi)
}
