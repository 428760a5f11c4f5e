// Package sequential provides the sequential baseline sort and sequential
// implementations of the functions provided by the parallel package. The
// baseline is the ground truth every other engine is validated against,
// and the leaf case of the parallel merge engine.
//
// Do and Range also run the dispatches of a single-unit software device,
// in the same batches package parallel would use.
package sequential

import (
	"fmt"
	"slices"

	"github.com/exascience/parsort/internal"
)

// Sort returns a sorted copy of input, in non-decreasing order. The input
// is not modified.
func Sort(input []uint32) []uint32 {
	result := make([]uint32, len(input))
	copy(result, input)
	slices.Sort(result)
	return result
}

// Do receives zero or more thunks and executes them sequentially, from left
// to right.
func Do(thunks ...func()) {
	for _, thunk := range thunks {
		thunk()
	}
}

// Range receives a range, a batch count n, and a range function f, divides
// the range into batches, and invokes the range function for each of these
// batches sequentially, covering the half-open interval from low to high,
// including low but excluding high.
//
// The batches are determined the same way as in parallel.Range, so the
// range function observes the same subranges in both implementations.
//
// Range panics if high < low, or if n < 0.
func Range(low, high, n int, f func(low, high int)) {
	var recur func(int, int, int)
	recur = func(low, high, n int) {
		switch {
		case n == 1:
			f(low, high)
		case n > 1:
			batchSize := ((high - low - 1) / n) + 1
			half := n / 2
			mid := low + batchSize*half
			if mid >= high {
				f(low, high)
				return
			}
			recur(low, mid, half)
			recur(mid, high, n-half)
		default:
			panic(fmt.Sprintf("invalid number of batches: %v", n))
		}
	}
	recur(low, high, internal.ComputeNofBatches(low, high, n))
}
