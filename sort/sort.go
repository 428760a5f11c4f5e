/*
Package sort provides a fork-join parallel merge sort for slices of
uint32, and a parallel sortedness check.
*/
package sort

import (
	"slices"
	"sync/atomic"

	"github.com/exascience/parsort/speculative"
)

const isSortedGrainSize = 0x2800

/*
IsSorted determines in parallel whether data is sorted in
non-decreasing order. It attempts to terminate early when the return
value is false.
*/
func IsSorted(data []uint32) bool {
	size := len(data)
	if size < isSortedGrainSize {
		return slices.IsSorted(data)
	}
	var done atomic.Bool
	defer done.Store(true)
	return speculative.RangeAnd(1, size, 0, func(low, high int) bool {
		for i := low; i < high; i++ {
			if ((i % 1024) == 0) && done.Load() {
				return false
			}
			if data[i] < data[i-1] {
				return false
			}
		}
		return true
	})
}
