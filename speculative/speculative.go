/*
Package speculative provides parallel predicates that terminate early
when the final result is known.

RangeAnd returns false as soon as any batch reports false, without
waiting for the batches that may still be running. Those batches are not
stopped; they run to completion in the background. Callers whose
predicates are expensive should poll a shared flag to give up early, the
way sort.IsSorted does.
*/
package speculative

import (
	"fmt"
	"sync"

	"github.com/exascience/parsort/internal"
)

/*
RangeAnd receives a range, a batch count, and a range predicate,
divides the range into batches, and invokes the range predicate for
each of these batches in parallel.

The range is specified by a low and high integer, with low <=
high. The batches are determined by dividing up the size of the range
(high - low) by n. If n is 0, a reasonable default is used that takes
runtime.GOMAXPROCS(0) into account.

RangeAnd returns true if all batches return true; or false when at
least one of them returns false, without waiting for the other range
predicates to terminate.

RangeAnd panics if high < low, or if n < 0. If a range predicate
panics, RangeAnd may eventually panic with the recovered value; a
false result in the left half takes precedence over a panic in the
right half.
*/
func RangeAnd(low, high, n int, f func(low, high int) bool) bool {
	var recur func(int, int, int) bool
	recur = func(low, high, n int) bool {
		switch {
		case n == 1:
			return f(low, high)
		case n > 1:
			batchSize := ((high - low - 1) / n) + 1
			half := n / 2
			mid := low + batchSize*half
			if mid >= high {
				return f(low, high)
			}
			var b1 bool
			var p interface{}
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer func() {
					p = internal.WrapPanic(recover())
					wg.Done()
				}()
				b1 = recur(mid, high, n-half)
			}()
			if !recur(low, mid, half) {
				return false
			}
			wg.Wait()
			if p != nil {
				panic(p)
			}
			return b1
		default:
			panic(fmt.Sprintf("invalid number of batches: %v", n))
		}
	}
	return recur(low, high, internal.ComputeNofBatches(low, high, n))
}
