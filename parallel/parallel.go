// Package parallel provides the fork-join primitives the sorting engines are
// built on.
//
// Every function here blocks until all the work it spawned has terminated.
// Panics in spawned goroutines are recovered and re-raised in the invoking
// goroutine, so a failing branch never disappears silently.
package parallel

import (
	"fmt"
	"sync"

	"github.com/exascience/parsort/internal"
)

// Do receives zero or more thunks and executes them in parallel.
//
// The left-most thunk is invoked in the calling goroutine, every other thunk
// in its own goroutine, and Do returns only when all thunks have terminated.
//
// If one or more thunks panic, the corresponding goroutines recover the
// panics, and Do eventually panics with the left-most recovered panic value.
func Do(thunks ...func()) {
	switch len(thunks) {
	case 0:
		return
	case 1:
		thunks[0]()
		return
	}
	var p interface{}
	var wg sync.WaitGroup
	wg.Add(1)
	switch len(thunks) {
	case 2:
		go func() {
			defer func() {
				p = internal.WrapPanic(recover())
				wg.Done()
			}()
			thunks[1]()
		}()
		thunks[0]()
	default:
		half := len(thunks) / 2
		go func() {
			defer func() {
				p = internal.WrapPanic(recover())
				wg.Done()
			}()
			Do(thunks[half:]...)
		}()
		Do(thunks[:half]...)
	}
	wg.Wait()
	if p != nil {
		panic(p)
	}
}

// Range receives a range, a batch count n, and a range function f,
// divides the range into batches, and invokes the range function for
// each of these batches in parallel, covering the half-open interval
// from low to high, including low but excluding high.
//
// The batches are determined by dividing up the size of the range
// (high - low) by n. If n is 0, a reasonable default is used that takes
// runtime.GOMAXPROCS(0) into account.
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
			Do(
				func() { recur(low, mid, half) },
				func() { recur(mid, high, n-half) },
			)
		default:
			panic(fmt.Sprintf("invalid number of batches: %v", n))
		}
	}
	recur(low, high, internal.ComputeNofBatches(low, high, n))
}
