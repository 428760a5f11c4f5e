package pipeline_test

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/exascience/parsort/pipeline"
)

func Example() {
	var p pipeline.Pipeline
	p.Source(pipeline.Slice([]int{1, 2, 3, 4, 5, 6, 7, 8}))
	p.NofBatches(4)
	var squares []int
	p.Add(
		pipeline.Par(pipeline.Receive(func(_ int, data interface{}) interface{} {
			batch := data.([]int)
			result := make([]int, len(batch))
			for i, x := range batch {
				result[i] = x * x
			}
			return result
		})),
		pipeline.Ord(pipeline.Receive(func(_ int, data interface{}) interface{} {
			squares = append(squares, data.([]int)...)
			return data
		})),
	)
	if err := p.Run(); err != nil {
		fmt.Println(err)
	}
	fmt.Println(squares)

	// Output:
	// [1 4 9 16 25 36 49 64]
}

func TestOrderedAfterParallel(t *testing.T) {
	input := make([]int, 100000)
	for i := range input {
		input[i] = i
	}
	var p pipeline.Pipeline
	p.Source(pipeline.Slice(input))
	p.NofBatches(97)
	var seqNos []int
	var output []int
	finalized := false
	p.Add(
		pipeline.Par(pipeline.Receive(func(_ int, data interface{}) interface{} {
			return slices.Clone(data.([]int))
		})),
		pipeline.Ord(
			pipeline.Receive(func(seqNo int, data interface{}) interface{} {
				seqNos = append(seqNos, seqNo)
				output = append(output, data.([]int)...)
				return data
			}),
			pipeline.Finalize(func() { finalized = true }),
		),
	)
	if err := p.Run(); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(input, output) {
		t.Error("ordered node did not receive batches in order")
	}
	for i, seqNo := range seqNos {
		if seqNo != i {
			t.Fatalf("sequence numbers %v", seqNos)
		}
	}
	if !finalized {
		t.Error("finalizer not called")
	}
}

func TestEmptySource(t *testing.T) {
	var p pipeline.Pipeline
	p.Source(pipeline.Slice([]byte{}))
	calls := 0
	p.Add(pipeline.Ord(pipeline.Receive(func(_ int, data interface{}) interface{} {
		calls++
		return data
	})))
	if err := p.Run(); err != nil || calls != 0 {
		t.Errorf("Run() = %v after %d calls", err, calls)
	}
}

func TestCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var p pipeline.Pipeline
	p.Source(pipeline.Slice(make([]int, 1000)))
	p.NofBatches(1000)
	p.Add(pipeline.Ord(pipeline.Receive(func(seqNo int, data interface{}) interface{} {
		if seqNo == 10 {
			cancel()
		}
		return data
	})))
	if err := p.RunWithContext(ctx, cancel); err == nil {
		t.Error("canceled pipeline returned no error")
	}
}

func TestParallelPanic(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil || !strings.Contains(fmt.Sprint(r), "bad batch") {
			t.Errorf("recovered %v", r)
		}
	}()
	var p pipeline.Pipeline
	p.Source(pipeline.Slice(make([]int, 100)))
	p.Add(pipeline.Par(pipeline.Receive(func(seqNo int, data interface{}) interface{} {
		if seqNo == 1 {
			panic("bad batch")
		}
		return data
	})))
	_ = p.Run()
}
