package history

import (
	"math"

	"github.com/cockroachdb/errors"
	badger "github.com/dgraph-io/badger/v3"
)

type badgerStore struct {
	db *badger.DB
}

func openBadger(dir string) (*badgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &badgerStore{db: db}, nil
}

func (s *badgerStore) get(key []byte) (value []byte, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	return value, err
}

func (s *badgerStore) set(key, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (s *badgerStore) Put(run Run) error {
	value, err := encodeRun(run)
	if err != nil {
		return err
	}
	return s.set(prefixed(runPrefix, run.ID), value)
}

func (s *badgerStore) Get(id uint64) (Run, error) {
	value, err := s.get(prefixed(runPrefix, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Run{}, errors.Wrapf(ErrNotFound, "run %d", id)
	} else if err != nil {
		return Run{}, err
	}
	return decodeRun(value)
}

func (s *badgerStore) List(limit int) (runs []Run, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = runPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		// In reverse mode, Seek positions at the largest key <= its
		// argument.
		for it.Seek(append(prefixed(runPrefix, math.MaxUint64), 0xff)); it.ValidForPrefix(runPrefix); it.Next() {
			if limit > 0 && len(runs) >= limit {
				break
			}
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			run, err := decodeRun(value)
			if err != nil {
				return err
			}
			runs = append(runs, run)
		}
		return nil
	})
	return runs, err
}

func (s *badgerStore) PutSnapshot(id uint64, input []uint32) error {
	return s.set(prefixed(snapshotPrefix, id), encodeSnapshot(input))
}

func (s *badgerStore) Snapshot(id uint64) ([]uint32, error) {
	value, err := s.get(prefixed(snapshotPrefix, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, errors.Wrapf(ErrNotFound, "snapshot %d", id)
	} else if err != nil {
		return nil, err
	}
	return decodeSnapshot(value)
}

func (s *badgerStore) Close() error {
	return s.db.Close()
}
