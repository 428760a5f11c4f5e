/*
Package sync provides a parallel map that is split into individually
locked partitions, with a focus on parallel performance rather than
concurrency. It backs the in-memory benchmark history, where runs are
recorded by concurrent benchmark requests and listed by parallel scans.

For other synchronization primitives, please use the standard library.
*/
package sync

import (
	"context"
	"runtime"
	"sync"

	"github.com/exascience/parsort/speculative"
)

// A split is a partial map that belongs to a larger Map, which can be
// individually locked.
type split[K comparable, V any] struct {
	sync.RWMutex
	entries map[K]V
}

/*
A Map is a parallel map that consists of several split maps that can
be individually locked and accessed. Keys are distributed over the
splits by a hash function.

The zero Map is not valid.
*/
type Map[K comparable, V any] struct {
	splits []split[K, V]
	hash   func(K) uint64
}

/*
NewMap returns a map with size splits, distributing keys with hash.

If size is <= 0, runtime.GOMAXPROCS(0) is used instead.
*/
func NewMap[K comparable, V any](size int, hash func(K) uint64) *Map[K, V] {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	splits := make([]split[K, V], size)
	for i := range splits {
		splits[i].entries = make(map[K]V)
	}
	return &Map[K, V]{splits: splits, hash: hash}
}

func (m *Map[K, V]) splitFor(key K) *split[K, V] {
	return &m.splits[m.hash(key)%uint64(len(m.splits))]
}

/*
Load returns the value stored in the map for a key, or the zero value
if no value is present. The ok result indicates whether value was
found in the map.
*/
func (m *Map[K, V]) Load(key K) (value V, ok bool) {
	s := m.splitFor(key)
	s.RLock()
	value, ok = s.entries[key]
	s.RUnlock()
	return
}

// Store sets the value for a key.
func (m *Map[K, V]) Store(key K, value V) {
	s := m.splitFor(key)
	s.Lock()
	s.entries[key] = value
	s.Unlock()
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() (n int) {
	for i := range m.splits {
		s := &m.splits[i]
		s.RLock()
		n += len(s.entries)
		s.RUnlock()
	}
	return
}

func (s *split[K, V]) rangeEntries(ctx context.Context, f func(key K, value V) bool) bool {
	s.RLock()
	defer s.RUnlock()
	for key, value := range s.entries {
		if ctx.Err() != nil {
			return true
		}
		if !f(key, value) {
			return false
		}
	}
	return true
}

/*
SpeculativeRange calls f in parallel for each key and value present in
the map. f must be safe for concurrent use. If f returns false,
SpeculativeRange stops the iteration, and makes an attempt to
terminate the goroutines early which were started by this call to
SpeculativeRange.

SpeculativeRange does not necessarily correspond to any consistent
snapshot of the Map's contents: no key will be visited more than once,
but if the value for any key is stored concurrently, SpeculativeRange
may reflect any mapping for that key from any point during the call.
*/
func (m *Map[K, V]) SpeculativeRange(f func(key K, value V) bool) {
	splits := m.splits
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	speculative.RangeAnd(0, len(splits), 0, func(low, high int) bool {
		for i := low; i < high; i++ {
			if !splits[i].rangeEntries(ctx, f) {
				cancel()
				return false
			}
		}
		return true
	})
}
