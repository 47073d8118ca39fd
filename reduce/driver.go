package reduce

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"sync"
	"time"

	"github.com/cxzhong/blaster/intmat"
	"github.com/cxzhong/blaster/internal/workerpool"
	"github.com/cxzhong/blaster/qr"
	"github.com/cxzhong/blaster/rmat"
)

// convergenceTolerance bounds the relative change in the diagonal
// profile between passes treated as "no change" for the driver's
// quick-exit check (spec §4.G step 1).
const convergenceTolerance = 1e-9

// driverState carries the mutable state of one reduceLattice run: a is
// the integer basis in column-vector form (column i is the i-th
// lattice vector, matching ZZRightMatMul's and every kernel's column
// addressing), u is the cumulative unimodular transform such that the
// current a equals the initial a right-multiplied by u.
type driverState struct {
	a *intmat.Matrix
	u *intmat.Matrix
}

// reduceLattice is the segmented parallel driver of spec §4.G. b's rows
// are lattice vectors (matching qr.Factorize's contract); the returned
// Result.Basis uses the same row convention.
func reduceLattice(ctx context.Context, b *intmat.Matrix, opts Options) (*Result, error) {
	if b.Rows != b.Cols {
		return nil, newError(InvalidInput, fmt.Errorf("basis must be square, got %dx%d", b.Rows, b.Cols))
	}
	n := b.Rows
	opts, err := opts.resolved(n)
	if err != nil {
		return nil, err
	}

	detB := b.Det()

	st := &driverState{
		a: intmat.Transpose(b),
		u: intmat.Identity(n),
	}

	// Verbose mode prints progress (spec §7); a nil logger disables every
	// call below rather than branching on opts.Verbose at each site.
	var logger *log.Logger
	if opts.Verbose {
		logger = log.New(os.Stderr, "", 0)
		logger.Printf("reduce: starting %s, n=%d, block_size=%d, delta=%v", opts.Algorithm, n, opts.BlockSize, opts.Delta)
	}

	start := time.Now()
	var (
		r                 *rmat.Matrix
		lastProfile       []float64
		zeroChangeStreak  int
		offset            int
		passes            int
		kernelInvocations int
		timedOut          bool
	)

	for passes < opts.MaxPasses {
		select {
		case <-ctx.Done():
			timedOut = true
		default:
		}
		if timedOut {
			if logger != nil {
				logger.Printf("reduce: pass %d: context done, stopping", passes)
			}
			break
		}

		r, err = qr.Factorize(intmat.Transpose(st.a))
		if err != nil {
			return nil, newError(NumericalFailure, err)
		}
		passes++

		profile := rmat.GetProfile(r)
		if lastProfile != nil && profileUnchanged(lastProfile, profile) {
			if logger != nil {
				logger.Printf("reduce: pass %d: Gram-Schmidt profile unchanged, converged", passes)
			}
			break
		}
		lastProfile = profile

		blocks := Partition(n, opts.BlockSize, offset)
		localTransforms := make([]*intmat.Matrix, len(blocks))
		if err := runBlocksInParallel(r, blocks, localTransforms, offset, opts); err != nil {
			return nil, err
		}
		kernelInvocations += len(blocks)

		nonIdentity := 0
		for i, blk := range blocks {
			if !localTransforms[i].IsIdentity() {
				nonIdentity++
				intmat.ZZRightMatMul(st.a, blk.Lo, blk.Width(), localTransforms[i])
				intmat.ZZRightMatMul(st.u, blk.Lo, blk.Width(), localTransforms[i])
			}
		}

		boundaryChanged, err := runGlobalSizeReduction(st, n, opts)
		if err != nil {
			return nil, err
		}
		kernelInvocations++

		offset = NextOffset(opts.BlockSize, offset)

		if logger != nil {
			logger.Printf("reduce: pass %d: %d/%d blocks changed, boundary_changed=%v", passes, nonIdentity, len(blocks), boundaryChanged)
		}

		if nonIdentity == 0 && !boundaryChanged {
			zeroChangeStreak++
			if zeroChangeStreak >= 2 {
				if logger != nil {
					logger.Printf("reduce: pass %d: converged, no changes for 2 consecutive passes", passes)
				}
				break
			}
		} else {
			zeroChangeStreak = 0
		}
	}

	finalR, err := qr.Factorize(intmat.Transpose(st.a))
	if err != nil {
		return nil, newError(NumericalFailure, err)
	}

	if logger != nil {
		logger.Printf("reduce: finished after %d passes, %d kernel invocations, %s", passes, kernelInvocations, time.Since(start))
	}

	metrics := computeMetrics(finalR, detB, TimeProfile{
		Total:             time.Since(start),
		Passes:            passes,
		KernelInvocations: kernelInvocations,
		TimedOut:          timedOut,
	})

	return &Result{
		Basis:     intmat.Transpose(st.a),
		Transform: intmat.Transpose(st.u),
		Metrics:   metrics,
	}, nil
}

// profileUnchanged reports whether every entry of cur is within
// convergenceTolerance (relative) of the corresponding entry of prev.
func profileUnchanged(prev, cur []float64) bool {
	for i := range cur {
		denom := math.Abs(prev[i])
		if denom < 1 {
			denom = 1
		}
		if math.Abs(cur[i]-prev[i])/denom > convergenceTolerance {
			return false
		}
	}
	return true
}

// runBlocksInParallel dispatches the in-block kernel (spec §4.G steps
// 2-3) over disjoint R-windows via internal/workerpool, writing each
// block's local unimodular transform into transforms[i]. The R-windows
// themselves are private copies (rmat.Matrix.Sub), so this is safe to
// run concurrently without locking R.
func runBlocksInParallel(r *rmat.Matrix, blocks []Block, transforms []*intmat.Matrix, offset int, opts Options) error {
	pool := workerpool.New(opts.Cores)
	var mu sync.Mutex
	var debugWrites []func()

	for i, blk := range blocks {
		i, blk := i, blk
		pool.Go(func() error {
			width := blk.Width()
			sub := r.Sub(blk.Lo, blk.Hi)
			localU := intmat.Identity(width)

			var err error
			switch {
			case opts.Algorithm == AlgBKZ && offset == 0:
				_, err = BKZ(sub, localU, 0, width, opts)
			case opts.Algorithm == AlgDeepLLL:
				LLL(sub, localU, 0, width, opts.Delta, opts.Depth, opts.UseSeysen)
			default:
				// Plain LLL for AlgLLL, and for AlgBKZ at the staggered
				// offset (spec §9 Open Question: enumeration is skipped on
				// a misaligned block to avoid wasted/incoherent work).
				LLL(sub, localU, 0, width, opts.Delta, 1, opts.UseSeysen)
			}
			if err != nil {
				return err
			}

			transforms[i] = localU
			if opts.Debug {
				mu.Lock()
				debugWrites = append(debugWrites, func() { r.CopyInto(sub, blk.Lo, blk.Lo) })
				mu.Unlock()
			}
			return nil
		})
	}

	if err := pool.Wait(); err != nil {
		return newError(NumericalFailure, err)
	}
	for _, w := range debugWrites {
		w()
	}
	return nil
}

// runGlobalSizeReduction implements spec §4.G step 5: an
// inter-block size-reduction pass over the full [0,n) range so column
// pairs that straddle a block boundary (never visited by any in-block
// kernel) still get size-reduced. It needs R freshly recomputed from
// the basis the block transforms just produced, since the pass-start R
// (used to drive the in-block kernels) is now stale outside of
// whichever sub-windows Options.Debug happened to write back.
func runGlobalSizeReduction(st *driverState, n int, opts Options) (bool, error) {
	r, err := qr.Factorize(intmat.Transpose(st.a))
	if err != nil {
		return false, newError(NumericalFailure, err)
	}
	uSR := intmat.Identity(n)
	changed := sizeReduceWindow(r, uSR, 0, n, opts.UseSeysen)
	if changed {
		intmat.ZZRightMatMul(st.a, 0, n, uSR)
		intmat.ZZRightMatMul(st.u, 0, n, uSR)
	}
	return changed, nil
}
