package bench

import (
	"math/rand/v2"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"

	"github.com/exascience/parsort/internal"
	"github.com/exascience/parsort/parallel"
	"github.com/exascience/parsort/pipeline"
	"github.com/exascience/parsort/sort"
)

// generateBatch is the number of elements filled from one random source.
const generateBatch = 1 << 16

// Generate returns n uniformly distributed random values. The result
// depends only on n and seed. Batches of the result are filled in
// parallel, each from its own source.
func Generate(n int, seed uint64) []uint32 {
	input := make([]uint32, n)
	batches := (n + generateBatch - 1) / generateBatch
	parallel.Range(0, batches, 0, func(low, high int) {
		for b := low; b < high; b++ {
			r := rand.New(rand.NewPCG(seed, uint64(b)))
			for i, end := b*generateBatch, min((b+1)*generateBatch, n); i < end; i++ {
				input[i] = r.Uint32()
			}
		}
	})
	return input
}

// Validate checks that got equals want, the output of the baseline engine.
// The error names the engine, and the first differing index or the
// lengths.
func Validate(name string, got, want []uint32) error {
	if len(got) != len(want) {
		return errors.Newf("%s: length %d, want %d", name, len(got), len(want))
	}
	if slices.Equal(got, want) {
		return nil
	}
	i := 0
	for got[i] == want[i] {
		i++
	}
	return errors.Newf("%s: first mismatch at index %d of %d: got %d, want %d (output sorted: %t)",
		name, i, len(got), got[i], want[i], sort.IsSorted(got))
}

// digestChunk is the number of elements encoded per batch.
const digestChunk = 1 << 14

// Digest returns the xxhash64 of the little-endian encoding of data.
// Batches are encoded in parallel, and hashed in order.
func Digest(data []uint32) uint64 {
	d := xxhash.New()
	var sum uint64
	var p pipeline.Pipeline
	p.Source(pipeline.Slice(data))
	p.NofBatches(max(1, len(data)/digestChunk))
	p.Add(
		pipeline.Par(pipeline.Receive(func(_ int, batch interface{}) interface{} {
			return internal.EncodeUint32s(batch.([]uint32))
		})),
		pipeline.Ord(
			pipeline.Receive(func(_ int, buf interface{}) interface{} {
				_, _ = d.Write(buf.([]byte))
				return buf
			}),
			pipeline.Finalize(func() { sum = d.Sum64() }),
		),
	)
	if err := p.Run(); err != nil {
		panic(err)
	}
	return sum
}
