package reduce

// pruningTable holds compiled-in linear-pruning coefficients keyed by
// block size β, following the spec's own description ("compiled-in
// coefficients keyed by block size"). Coefficients are monotonically
// non-increasing in (0,1], matching the pruning-vector invariant of
// spec §3. Small block sizes intentionally map to the unpruned (all
// ones) vector, per spec §6 ("smaller blocks may use no pruning").
//
// Grounded on the general "package-level read-only lookup table keyed
// by a small int" idiom the teacher uses for its NTT modulus tables
// (ring.Qi60/Pi60) — here retargeted from moduli to pruning
// coefficients.
var pruningTable = map[int][]float64{
	20: linearPruning(20, 0.55),
	30: linearPruning(30, 0.50),
	40: linearPruning(40, 0.45),
	50: linearPruning(50, 0.42),
	60: linearPruning(60, 0.40),
}

// linearPruning builds a simple linearly-decaying pruning vector of
// length n, clamped to end at floor so it never reaches zero (a zero
// coefficient would prune every branch including the optimum).
func linearPruning(n int, floor float64) []float64 {
	v := make([]float64, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		v[i] = 1 - t*(1-floor)
	}
	return v
}

// lookupPruning returns the pruning vector for block size beta: the
// largest compiled-in key <= beta, linearly resampled to length beta,
// or the all-ones (unpruned) vector if beta is smaller than every
// compiled-in key.
func lookupPruning(beta int) []float64 {
	if beta <= 0 {
		return nil
	}
	bestKey := -1
	for k := range pruningTable {
		if k <= beta && k > bestKey {
			bestKey = k
		}
	}
	if bestKey == -1 {
		ones := make([]float64, beta)
		for i := range ones {
			ones[i] = 1
		}
		return ones
	}
	src := pruningTable[bestKey]
	if len(src) == beta {
		return append([]float64(nil), src...)
	}
	if beta == 1 {
		return []float64{src[0]}
	}
	out := make([]float64, beta)
	for i := 0; i < beta; i++ {
		pos := float64(i) * float64(len(src)-1) / float64(beta-1)
		lo := int(pos)
		if lo >= len(src)-1 {
			out[i] = src[len(src)-1]
			continue
		}
		frac := pos - float64(lo)
		out[i] = src[lo]*(1-frac) + src[lo+1]*frac
	}
	return out
}
