package parsort

import "testing"

func TestNextPowerOfTwo(t *testing.T) {
	for _, tc := range []struct{ n, want int }{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{4, 4},
		{5, 8},
		{1000, 1024},
		{1024, 1024},
		{1025, 2048},
		{2000000, 2097152},
	} {
		if got := NextPowerOfTwo(tc.n); got != tc.want {
			t.Errorf("NextPowerOfTwo(%d) = %d, want %d", tc.n, got, tc.want)
		}
		if !IsPowerOfTwo(NextPowerOfTwo(tc.n)) {
			t.Errorf("NextPowerOfTwo(%d) is not a power of two", tc.n)
		}
	}
}

func TestNextPowerOfTwoNegative(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for a negative length")
		}
	}()
	NextPowerOfTwo(-1)
}

func TestLog2(t *testing.T) {
	for m, want := range map[int]int{1: 0, 2: 1, 1024: 10, 1 << 20: 20} {
		if got := Log2(m); got != want {
			t.Errorf("Log2(%d) = %d, want %d", m, got, want)
		}
	}
}
