// Package bignum provides small helpers around math/big used to build
// and round the arbitrary-precision integer entries of lattice bases,
// transforms, and the random test fixtures that exercise them.
package bignum

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// NewInt allocates a new *big.Int from a value of one of the accepted
// types: string, uint, uint64, int64, int, or *big.Int.
func NewInt(x interface{}) (y *big.Int) {
	y = new(big.Int)

	if x == nil {
		return
	}

	switch x := x.(type) {
	case string:
		y.SetString(x, 0)
	case uint:
		y.SetUint64(uint64(x))
	case uint64:
		y.SetUint64(x)
	case int64:
		y.SetInt64(x)
	case int:
		y.SetInt64(int64(x))
	case *big.Int:
		y.Set(x)
	default:
		panic(fmt.Sprintf("bignum.NewInt: accepted types are string, uint, uint64, int, int64, *big.Int, but is %T", x))
	}

	return
}

// RandInt generates a uniformly random integer in [0, max).
func RandInt(reader io.Reader, max *big.Int) (n *big.Int) {
	var err error
	if n, err = rand.Int(reader, max); err != nil {
		panic(fmt.Errorf("bignum.RandInt: %w", err))
	}
	return
}

// DivRound sets i to round(a/b), rounding half away from zero.
func DivRound(a, b, i *big.Int) {
	_a := new(big.Int).Set(a)
	i.Quo(_a, b)
	r := new(big.Int).Rem(_a, b)
	r2 := new(big.Int).Mul(r, NewInt(2))
	if r2.CmpAbs(b) != -1 {
		if _a.Sign() == b.Sign() {
			i.Add(i, NewInt(1))
		} else {
			i.Sub(i, NewInt(1))
		}
	}
}
