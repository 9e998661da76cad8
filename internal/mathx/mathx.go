// Package mathx holds small generic helpers for firmware arithmetic.
package mathx

import "golang.org/x/exp/constraints"

// Clamp limits v to [lo, hi]. If lo > hi, the bounds are swapped.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Scale maps v from [inLo, inHi] onto [outLo, outHi] with integer
// arithmetic, truncating toward zero. Values outside the input range are
// clamped first. A degenerate input range maps everything to outLo.
func Scale[T constraints.Signed](v, inLo, inHi, outLo, outHi T) T {
	if inHi == inLo {
		return outLo
	}
	v = Clamp(v, inLo, inHi)
	return outLo + (v-inLo)*(outHi-outLo)/(inHi-inLo)
}

// Wrap returns i modulo n in [0, n). n must be positive.
func Wrap(i, n int) int {
	if n <= 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
