package history

import (
	"cmp"
	"slices"
	stdsync "sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"

	"github.com/exascience/parsort/sync"
)

func hashID(id uint64) uint64 {
	return xxhash.Sum64(encodeID(id))
}

// MemoryStore keeps runs in a parallel map. Snapshots are kept in
// compressed form, as in the persistent stores.
type MemoryStore struct {
	runs      *sync.Map[uint64, Run]
	snapshots *sync.Map[uint64, []byte]
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		runs:      sync.NewMap[uint64, Run](0, hashID),
		snapshots: sync.NewMap[uint64, []byte](0, hashID),
	}
}

func (s *MemoryStore) Put(run Run) error {
	s.runs.Store(run.ID, run)
	return nil
}

func (s *MemoryStore) Get(id uint64) (Run, error) {
	run, ok := s.runs.Load(id)
	if !ok {
		return Run{}, errors.Wrapf(ErrNotFound, "run %d", id)
	}
	return run, nil
}

func (s *MemoryStore) List(limit int) ([]Run, error) {
	var mu stdsync.Mutex
	runs := make([]Run, 0, s.runs.Len())
	s.runs.SpeculativeRange(func(_ uint64, run Run) bool {
		mu.Lock()
		runs = append(runs, run)
		mu.Unlock()
		return true
	})
	slices.SortFunc(runs, func(a, b Run) int { return cmp.Compare(b.ID, a.ID) })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *MemoryStore) PutSnapshot(id uint64, input []uint32) error {
	s.snapshots.Store(id, encodeSnapshot(input))
	return nil
}

func (s *MemoryStore) Snapshot(id uint64) ([]uint32, error) {
	value, ok := s.snapshots.Load(id)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "snapshot %d", id)
	}
	return decodeSnapshot(value)
}

func (s *MemoryStore) Close() error { return nil }
