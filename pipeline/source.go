package pipeline

import "context"

// A Source generates data batches for pipelines.
type Source interface {
	// Prepare receives the pipeline context and returns the total size
	// of all data batches.
	Prepare(ctx context.Context) (size int)

	// Fetch gets a data batch of the requested size from the source.
	// It returns the size of the data batch that it was actually able
	// to fetch, or 0 if the source is depleted.
	Fetch(size int) (fetched int)

	// Data returns the last fetched data batch.
	Data() interface{}
}

type sliceSource[E any] struct {
	slice []E
	index int
	data  []E
}

// Slice returns a Source whose batches are consecutive subslices of
// slice. The subslices share storage with slice.
func Slice[E any](slice []E) Source {
	return &sliceSource[E]{slice: slice}
}

func (src *sliceSource[E]) Prepare(context.Context) int {
	return len(src.slice)
}

func (src *sliceSource[E]) Fetch(n int) (fetched int) {
	high := min(src.index+n, len(src.slice))
	src.data = src.slice[src.index:high]
	fetched = high - src.index
	src.index = high
	return
}

func (src *sliceSource[E]) Data() interface{} {
	return src.data
}
