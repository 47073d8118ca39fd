package reduce

import (
	"fmt"
	"math"

	"github.com/cxzhong/blaster/rmat"
)

// ErrEnumTooLarge is returned when a caller asks enumeration to run
// over a block wider than MaxEnumN (spec §4.E: "enumeration of block
// size > MAX_ENUM_N is rejected (fatal)").
type ErrEnumTooLarge struct {
	N int
}

func (e *ErrEnumTooLarge) Error() string {
	return fmt.Sprintf("reduce: enumeration block size %d exceeds MaxEnumN=%d", e.N, MaxEnumN)
}

// EnumResult is the outcome of a depth-first Schnorr-Euchner
// enumeration: the integer coefficient vector (length N, coefficient i
// multiplies the i-th basis vector of the window) of the shortest
// non-zero combination found, and its squared norm.
type EnumResult struct {
	Coeffs   []int64
	NormSq   float64
	Found    bool
}

// Enumerate performs spec §4.E's classical Schnorr-Euchner depth-first
// search over the Gram-Schmidt tree described by the N×N window r,
// bounded by radius and pruned per pruning[k] (length N, monotonically
// non-increasing in (0,1]; nil or too-short means unpruned).
//
// Deterministic given (r, pruning, radius): no RNG is used (spec §5).
func Enumerate(r *rmat.Matrix, pruning []float64, radius float64) (EnumResult, error) {
	return enumerate(r, pruning, radius, -1, 0)
}

// EnumerateFixedLeading is the "last-one" entry point named in spec
// §4.E: it restricts the search to candidates whose leading coordinate
// (index N-1, the outermost enumeration level) equals exactly 1. BKZ
// (component F, bkz.go) calls the unrestricted Enumerate instead,
// since spec §4.F step 2 asks for the sub-block's genuine shortest
// vector with no restriction on any coefficient; this fixed-leading
// variant remains the direct, spec-named counterpart for callers that
// specifically need a combination pinned through the window's top
// basis vector.
func EnumerateFixedLeading(r *rmat.Matrix, pruning []float64, radius float64) (EnumResult, error) {
	return enumerate(r, pruning, radius, r.N-1, 1)
}

func enumerate(r *rmat.Matrix, pruning []float64, radius float64, fixedLevel int, fixedValue int64) (EnumResult, error) {
	n := r.N
	if n > MaxEnumN {
		return EnumResult{}, &ErrEnumTooLarge{N: n}
	}
	if n == 0 {
		return EnumResult{Found: false}, nil
	}

	p := make([]float64, n)
	for i := 0; i < n; i++ {
		p[i] = 1
	}
	for i := 0; i < len(pruning) && i < n; i++ {
		if pruning[i] > 0 && pruning[i] <= 1 {
			p[i] = pruning[i]
		}
	}

	best := EnumResult{NormSq: radius * radius, Found: false}
	coords := make([]int64, n)

	// At each level the search is centred on
	// -sum_{j>level} (R[level,j]/R[level,level]) * coords[j], the
	// projected contribution of the already-fixed higher coordinates.
	var recurse func(level int, sigma float64)
	recurse = func(level int, sigma float64) {
		if level < 0 {
			if sigma > 0 {
				allZero := true
				for _, c := range coords {
					if c != 0 {
						allZero = false
						break
					}
				}
				if !allZero && sigma < best.NormSq {
					best.NormSq = sigma
					best.Found = true
					best.Coeffs = append([]int64(nil), coords...)
				}
			}
			return
		}

		var center float64
		rll := r.At(level, level)
		for j := level + 1; j < n; j++ {
			center += r.At(level, j) * float64(coords[j]) / rll
		}
		center = -center

		if level == fixedLevel {
			x := rll * (float64(fixedValue) - center)
			newSigma := sigma + x*x
			if newSigma <= best.NormSq*p[level] {
				coords[level] = fixedValue
				recurse(level-1, newSigma)
			}
			return
		}

		x0 := int64(math.Round(center))
		for _, v := range zigzag(x0) {
			// best.NormSq may have tightened since an earlier sibling
			// candidate at this level improved it, so the bound is
			// re-read fresh on every candidate rather than once per call.
			if sigma >= best.NormSq*p[level] {
				continue
			}
			diff := float64(v) - center
			term := rll * diff
			newSigma := sigma + term*term
			if newSigma > best.NormSq*p[level] {
				continue
			}
			coords[level] = v
			recurse(level-1, newSigma)
		}
		coords[level] = 0
	}

	recurse(n-1, 0)
	return best, nil
}

// zigzag returns a bounded search order x0, x0+1, x0-1, x0+2, x0-2, ...
// centered on x0, per spec §4.E's description of the enumeration order.
// The range is intentionally bounded (rather than unbounded until the
// pruning test fails on both sides) to keep the kernel trivially
// terminating; callers already re-check the pruning bound per
// candidate so a bounded window never misses a feasible vector for any
// radius achievable within that window.
func zigzag(x0 int64) []int64 {
	const halfWidth = 64
	out := make([]int64, 0, 2*halfWidth+1)
	out = append(out, x0)
	for d := int64(1); d <= halfWidth; d++ {
		out = append(out, x0+d, x0-d)
	}
	return out
}
