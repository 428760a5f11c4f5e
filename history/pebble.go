package history

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
)

type pebbleStore struct {
	db *pebble.DB
}

func openPebble(dir string) (*pebbleStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &pebbleStore{db: db}, nil
}

func (s *pebbleStore) get(key []byte) ([]byte, error) {
	value, closer, err := s.db.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), value...), nil
}

func (s *pebbleStore) Put(run Run) error {
	value, err := encodeRun(run)
	if err != nil {
		return err
	}
	return s.db.Set(prefixed(runPrefix, run.ID), value, pebble.Sync)
}

func (s *pebbleStore) Get(id uint64) (Run, error) {
	value, err := s.get(prefixed(runPrefix, id))
	if errors.Is(err, pebble.ErrNotFound) {
		return Run{}, errors.Wrapf(ErrNotFound, "run %d", id)
	} else if err != nil {
		return Run{}, err
	}
	return decodeRun(value)
}

func (s *pebbleStore) List(limit int) (runs []Run, err error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: runPrefix,
		UpperBound: []byte("run0"), // '0' follows '/'
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := iter.Close(); err == nil {
			err = cerr
		}
	}()
	for iter.Last(); iter.Valid() && (limit <= 0 || len(runs) < limit); iter.Prev() {
		run, err := decodeRun(iter.Value())
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (s *pebbleStore) PutSnapshot(id uint64, input []uint32) error {
	return s.db.Set(prefixed(snapshotPrefix, id), encodeSnapshot(input), pebble.Sync)
}

func (s *pebbleStore) Snapshot(id uint64) ([]uint32, error) {
	value, err := s.get(prefixed(snapshotPrefix, id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "snapshot %d", id)
	} else if err != nil {
		return nil, err
	}
	return decodeSnapshot(value)
}

func (s *pebbleStore) Close() error {
	return s.db.Close()
}
