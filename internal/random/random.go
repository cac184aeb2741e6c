package random

import (
	"math"
	"math/rand/v2"
)

var (
	intNFunc    = rand.Int64N
	uint64NFunc = rand.Uint64N
	uint64Func  = rand.Uint64
	float64Func = rand.Float64
)

// IntN returns a non-negative pseudo-random number in [0,n).
func IntN(n int64) int64 {
	return intNFunc(n)
}

// Between returns a pseudo-random number in [low,high]. Bounds given in
// the wrong order are swapped.
func Between(low, high int64) int64 {
	if low > high {
		low, high = high, low
	}
	if low == high {
		return low
	}

	span := uint64(high) - uint64(low)
	switch {
	case span < math.MaxInt64:
		return low + IntN(int64(span)+1)
	case span == math.MaxUint64:
		return int64(uint64Func())
	default:
		// Offsets past MaxInt64 wrap back into [low,high].
		return low + int64(uint64NFunc(span+1))
	}
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func Float64() float64 {
	return float64Func()
}

// SetIntNForTest overrides the random source and returns a restore function.
func SetIntNForTest(fn func(int64) int64) func() {
	previous := intNFunc
	intNFunc = fn
	return func() {
		intNFunc = previous
	}
}

// SetFloat64ForTest overrides the float source and returns a restore function.
func SetFloat64ForTest(fn func() float64) func() {
	previous := float64Func
	float64Func = fn
	return func() {
		float64Func = previous
	}
}
