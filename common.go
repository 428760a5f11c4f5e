package parsort

import (
	"fmt"
	"math"
	"math/bits"
)

// Sentinel is the padding value used to extend an input to a power-of-two
// length. It sorts to the tail, so padding can be discarded by keeping only
// the first N elements of a sorted padded buffer.
const Sentinel uint32 = math.MaxUint32

/*
NextPowerOfTwo returns the smallest power of two that is greater than or
equal to n.

NextPowerOfTwo(0) and NextPowerOfTwo(1) both return 1.

NextPowerOfTwo panics if n is negative, or if the result would not fit
in an int.
*/
func NextPowerOfTwo(n int) int {
	if n < 0 {
		panic(fmt.Sprintf("invalid length: %v", n))
	}
	if n <= 1 {
		return 1
	}
	shift := bits.Len(uint(n - 1))
	if shift >= bits.UintSize-1 {
		panic(fmt.Sprintf("length too large: %v", n))
	}
	return 1 << shift
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Log2 returns the base-2 logarithm of m, which must be a power of two.
func Log2(m int) int {
	if !IsPowerOfTwo(m) {
		panic(fmt.Sprintf("not a power of two: %v", m))
	}
	return bits.TrailingZeros(uint(m))
}
