package rmat

import (
	"math"
	"math/big"

	"github.com/ALTree/bigfloat"
)

// GetProfile returns the log Gram-Schmidt profile (log R[i,i] for each
// i), the quantity spec §6's slope and potential metrics are defined
// over.
func GetProfile(r *Matrix) []float64 {
	profile := make([]float64, r.N)
	for i := 0; i < r.N; i++ {
		profile[i] = math.Log(r.At(i, i))
	}
	return profile
}

// Slope fits a line to (i, profile[i]) by ordinary least squares and
// returns its slope, following the same "reduce a slice to a small
// float64 summary" shape as the teacher's bignum.Stats helper.
func Slope(profile []float64) float64 {
	n := len(profile)
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range profile {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	nf := float64(n)
	denom := nf*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (nf*sumXY - sumX*sumY) / denom
}

// Potential returns Σ (n-i)·log R[i,i], a quantity strictly decreasing
// across productive LLL/BKZ swaps (spec GLOSSARY).
func Potential(profile []float64) float64 {
	n := len(profile)
	var p float64
	for i, y := range profile {
		p += float64(n-i) * y
	}
	return p
}

// RootHermiteFactor computes rhf = (‖B'_0‖ / |det B|^{1/n})^{1/n} using
// arbitrary-precision log/pow (github.com/ALTree/bigfloat) for the
// determinant term, since |det B| can vastly exceed float64 range for
// non-trivial lattices while the final rhf value is always near 1.
func RootHermiteFactor(r *Matrix, detB *big.Int) float64 {
	n := r.N
	if n == 0 {
		return 1
	}

	const prec = 256
	absDet := new(big.Float).SetPrec(prec).SetInt(new(big.Int).Abs(detB))
	logDet := bigfloat.Log(absDet)

	nf := new(big.Float).SetPrec(prec).SetInt64(int64(n))
	logDetOverN := new(big.Float).SetPrec(prec).Quo(logDet, nf)

	normB0 := r.At(0, 0)
	logNormB0 := new(big.Float).SetPrec(prec).SetFloat64(math.Log(normB0))

	logRHF := new(big.Float).SetPrec(prec).Sub(logNormB0, logDetOverN)
	logRHF.Quo(logRHF, nf)

	rhf := bigfloat.Exp(logRHF)
	out, _ := rhf.Float64()
	return out
}
