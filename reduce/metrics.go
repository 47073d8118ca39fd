package reduce

import (
	"math/big"
	"time"

	"github.com/cxzhong/blaster/intmat"
	"github.com/cxzhong/blaster/rmat"
)

// TimeProfile records how the driver's pass loop spent its time, per
// spec §6's "TimeProfile" (renamed from its Python counterpart into
// the teacher's PascalCase-struct convention).
type TimeProfile struct {
	Total             time.Duration
	Passes            int
	KernelInvocations int
	TimedOut          bool
}

// Metrics bundles the quality summary spec §6 names: root Hermite
// factor, profile slope, potential, and the pass's TimeProfile.
type Metrics struct {
	RootHermiteFactor float64
	Slope             float64
	Potential         float64
	Time              TimeProfile
}

// Result is every reduction entry point's return value: the reduced
// basis, the unimodular transform that produced it from the input
// basis, and the run's Metrics.
type Result struct {
	Basis     *intmat.Matrix
	Transform *intmat.Matrix
	Metrics   Metrics
}

func computeMetrics(r *rmat.Matrix, detB *big.Int, tp TimeProfile) Metrics {
	profile := rmat.GetProfile(r)
	return Metrics{
		RootHermiteFactor: rmat.RootHermiteFactor(r, detB),
		Slope:             rmat.Slope(profile),
		Potential:         rmat.Potential(profile),
		Time:              tp,
	}
}
