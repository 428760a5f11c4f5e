package sort

import (
	"runtime"

	"github.com/exascience/parsort/parallel"
	"github.com/exascience/parsort/sequential"
)

// ChunkThreshold is the length at or below which Sort stops fanning out and
// sorts sequentially.
const ChunkThreshold = 20000

// Sort returns a new slice with all elements of input in non-decreasing
// order. The input is not modified.
//
// Sort uses a fork-join merge sort. The initial fan-out depth is
// runtime.GOMAXPROCS(0), and it is halved on every level of recursion, so
// the number of concurrently sorting goroutines stays around the number of
// available logical CPUs.
func Sort(input []uint32) []uint32 {
	return SortDepth(input, runtime.GOMAXPROCS(0))
}

// SortDepth is like Sort, but with an explicit fan-out depth. A depth of 1
// or less sorts sequentially.
func SortDepth(input []uint32, depth int) []uint32 {
	size := len(input)
	if size <= 1 {
		result := make([]uint32, size)
		copy(result, input)
		return result
	}
	if size <= ChunkThreshold || depth <= 1 {
		return sequential.Sort(input)
	}
	// Each branch reads only its own half and writes only its own result.
	mid := size / 2
	var left, right []uint32
	parallel.Do(
		func() { left = SortDepth(input[:mid], depth/2) },
		func() { right = SortDepth(input[mid:], depth/2) },
	)
	return Merge(left, right)
}

// Merge merges two slices that are each sorted in non-decreasing order into
// a new sorted slice. On ties, the element from left comes first.
func Merge(left, right []uint32) []uint32 {
	merged := make([]uint32, len(left)+len(right))
	i, j, k := 0, 0, 0
	for i < len(left) && j < len(right) {
		if left[i] <= right[j] {
			merged[k] = left[i]
			i++
		} else {
			merged[k] = right[j]
			j++
		}
		k++
	}
	k += copy(merged[k:], left[i:])
	copy(merged[k:], right[j:])
	return merged
}
