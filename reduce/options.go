// Package reduce implements the segmented parallel lattice reduction
// engine: the driver (component G) and its in-block kernels
// (size-reduction, LLL/deep-LLL, enumeration, BKZ — components C-F).
package reduce

import (
	"fmt"
	"runtime"
)

// Algorithm selects which in-block kernel the driver dispatches.
type Algorithm int

const (
	AlgLLL Algorithm = iota
	AlgDeepLLL
	AlgBKZ
)

func (a Algorithm) String() string {
	switch a {
	case AlgLLL:
		return "LLL"
	case AlgDeepLLL:
		return "deep-LLL"
	case AlgBKZ:
		return "BKZ"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// MaxEnumN bounds the block size enumeration (component E) will accept,
// per spec §4.E ("enumeration of block size > MAX_ENUM_N is rejected").
const MaxEnumN = 128

// Options is a literal configuration struct in the teacher's
// ParametersLiteral style (public fields, defaults filled in by
// DefaultOptions, validated once by resolved rather than scattered
// through the kernels — spec §7: kernels never fail, only the driver
// validates).
type Options struct {
	Algorithm Algorithm
	Delta     float64
	BlockSize int
	Depth     int
	Beta      int
	Tours     int
	Cores     int
	UseSeysen bool
	Verbose   bool

	// Debug enables writing a block's locally-reduced R-window back into
	// the global R before the next QR recompute overwrites it anyway.
	// Per spec §9 this is non-observable; see DESIGN.md.
	Debug bool

	// MaxPasses bounds the driver loop as a safety net against failing
	// to detect convergence (spec §9, "Termination tolerances ... are
	// left implementation-defined").
	MaxPasses int
}

// DefaultOptions returns the spec's documented defaults (§4.G).
func DefaultOptions() Options {
	return Options{
		Algorithm: AlgLLL,
		Delta:     0.99,
		BlockSize: 0, // 0 means "choose adaptively", filled in by resolved.
		Depth:     1,
		Beta:      0,
		Tours:     1,
		Cores:     runtime.NumCPU(),
		UseSeysen: false,
		Verbose:   false,
		Debug:     false,
		MaxPasses: 1000,
	}
}

// resolved returns a copy of opts with n-dependent defaults filled in:
// an adaptive block size clamped to [8,128] per spec §3, and validates
// every field, returning *Error{Kind: InvalidInput} on the first
// violation found (spec §7).
func (o Options) resolved(n int) (Options, error) {
	out := o
	if out.Cores <= 0 {
		out.Cores = runtime.NumCPU()
	}
	if out.Cores <= 0 {
		out.Cores = 1
	}
	if out.Depth <= 0 {
		out.Depth = 1
	}
	if out.Tours <= 0 {
		out.Tours = 1
	}
	if out.MaxPasses <= 0 {
		out.MaxPasses = 1000
	}

	if out.BlockSize <= 0 {
		w := int(isqrt(n))
		if w < 8 {
			w = 8
		}
		if w > 128 {
			w = 128
		}
		if w > n {
			w = n
		}
		out.BlockSize = w
	}

	if n <= 0 {
		return out, newError(InvalidInput, fmt.Errorf("basis dimension must be positive, got %d", n))
	}
	if out.Delta <= 0.25 || out.Delta > 1 {
		return out, newError(InvalidInput, fmt.Errorf("delta=%v out of range (0.25,1]", out.Delta))
	}
	if out.BlockSize <= 0 || out.BlockSize > n {
		return out, newError(InvalidInput, fmt.Errorf("block_size=%d out of range (0,%d]", out.BlockSize, n))
	}
	if out.Algorithm == AlgBKZ {
		if out.Beta <= 0 {
			out.Beta = out.BlockSize
		}
		if out.Beta > out.BlockSize {
			return out, newError(InvalidInput, fmt.Errorf("beta=%d exceeds block_size=%d", out.Beta, out.BlockSize))
		}
		if out.Beta > MaxEnumN {
			return out, newError(InvalidInput, fmt.Errorf("beta=%d exceeds MaxEnumN=%d", out.Beta, MaxEnumN))
		}
	}
	return out, nil
}

func isqrt(n int) int {
	if n <= 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}
