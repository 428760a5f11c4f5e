package sort

import (
	"math/rand"
	"reflect"
	"runtime"
	"slices"
	"testing"

	"github.com/exascience/parsort/sequential"
)

func makeRandomSlice(size int, seed int64) []uint32 {
	r := rand.New(rand.NewSource(seed))
	result := make([]uint32, size)
	for i := range result {
		result[i] = r.Uint32()
	}
	return result
}

func TestSort(t *testing.T) {
	for _, size := range []int{
		0, 1, 2, 3, 1000, 1024,
		ChunkThreshold - 1, ChunkThreshold, ChunkThreshold + 1,
		25000, 32768, 100*0x600 + 7,
	} {
		orgSlice := makeRandomSlice(size, int64(size))
		input := slices.Clone(orgSlice)
		want := sequential.Sort(orgSlice)

		got := Sort(input)
		if len(got) != size {
			t.Fatalf("Sort of %d elements returned %d elements", size, len(got))
		}
		if !slices.Equal(got, want) {
			t.Errorf("Sort of %d elements incorrect", size)
		}
		if !slices.Equal(input, orgSlice) {
			t.Errorf("Sort of %d elements modified its input", size)
		}
	}
}

func TestSortDepths(t *testing.T) {
	orgSlice := makeRandomSlice(200000, 42)
	want := sequential.Sort(orgSlice)
	for _, depth := range []int{-1, 0, 1, 2, 3, 8, 64, 4 * runtime.GOMAXPROCS(0)} {
		if got := SortDepth(orgSlice, depth); !slices.Equal(got, want) {
			t.Errorf("SortDepth with depth %d incorrect", depth)
		}
	}
}

func TestSortScenarios(t *testing.T) {
	t.Run("Duplicates", func(t *testing.T) {
		got := Sort([]uint32{5, 3, 3, 1})
		if !reflect.DeepEqual(got, []uint32{1, 3, 3, 5}) {
			t.Errorf("Sort([5 3 3 1]) = %v", got)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if got := Sort(nil); len(got) != 0 {
			t.Errorf("Sort(nil) = %v", got)
		}
		if got := Sort([]uint32{}); len(got) != 0 {
			t.Errorf("Sort([]) = %v", got)
		}
	})

	t.Run("Single", func(t *testing.T) {
		if got := Sort([]uint32{7}); !reflect.DeepEqual(got, []uint32{7}) {
			t.Errorf("Sort([7]) = %v", got)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		once := Sort(makeRandomSlice(60000, 7))
		twice := Sort(once)
		if !slices.Equal(once, twice) {
			t.Error("sorting a sorted slice changed it")
		}
	})

	t.Run("AllEqual", func(t *testing.T) {
		input := make([]uint32, 50000)
		for i := range input {
			input[i] = 9
		}
		if got := Sort(input); !slices.Equal(got, input) {
			t.Error("sorting equal elements changed them")
		}
	})

	t.Run("Reverse", func(t *testing.T) {
		input := make([]uint32, 70000)
		for i := range input {
			input[i] = uint32(len(input) - i)
		}
		if got := Sort(input); !IsSorted(got) {
			t.Error("sorting reversed input did not sort it")
		}
	})
}

func TestMerge(t *testing.T) {
	for _, tc := range []struct {
		left, right, want []uint32
	}{
		{nil, nil, []uint32{}},
		{[]uint32{1, 2}, nil, []uint32{1, 2}},
		{nil, []uint32{1, 2}, []uint32{1, 2}},
		{[]uint32{1, 3, 5}, []uint32{2, 4, 6}, []uint32{1, 2, 3, 4, 5, 6}},
		{[]uint32{3, 3}, []uint32{3}, []uint32{3, 3, 3}},
		{[]uint32{7, 8, 9}, []uint32{1}, []uint32{1, 7, 8, 9}},
	} {
		if got := Merge(tc.left, tc.right); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Merge(%v, %v) = %v, want %v", tc.left, tc.right, got, tc.want)
		}
	}
}

func TestIsSorted(t *testing.T) {
	data := Sort(makeRandomSlice(100000, 3))
	if !IsSorted(data) {
		t.Error("IsSorted reported a sorted slice as unsorted")
	}
	data[len(data)/3], data[len(data)/3+1] = data[len(data)/3+1], data[len(data)/3]
	if data[len(data)/3] != data[len(data)/3+1] && IsSorted(data) {
		t.Error("IsSorted missed a swapped pair")
	}
	if !IsSorted(nil) || !IsSorted([]uint32{1}) {
		t.Error("IsSorted of trivial slices should be true")
	}
}

func BenchmarkSort(b *testing.B) {
	orgSlice := makeRandomSlice(2000000, 1)

	b.Run("SequentialSort", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			sequential.Sort(orgSlice)
		}
	})

	b.Run("ParallelSort", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			Sort(orgSlice)
		}
	})
}
