package history

import (
	"time"

	"github.com/cockroachdb/errors"
	"go.etcd.io/bbolt"
)

var (
	runsBucket      = []byte("runs")
	snapshotsBucket = []byte("snapshots")
)

type boltStore struct {
	db *bbolt.DB
}

func openBolt(path string) (*boltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{runsBucket, snapshotsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func (s *boltStore) Put(run Run) error {
	value, err := encodeRun(run)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(runsBucket).Put(encodeID(run.ID), value)
	})
}

func (s *boltStore) Get(id uint64) (run Run, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(runsBucket).Get(encodeID(id))
		if value == nil {
			return errors.Wrapf(ErrNotFound, "run %d", id)
		}
		run, err = decodeRun(value)
		return err
	})
	return run, err
}

func (s *boltStore) List(limit int) (runs []Run, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(runsBucket).Cursor()
		for k, v := c.Last(); k != nil && (limit <= 0 || len(runs) < limit); k, v = c.Prev() {
			run, err := decodeRun(v)
			if err != nil {
				return err
			}
			runs = append(runs, run)
		}
		return nil
	})
	return runs, err
}

func (s *boltStore) PutSnapshot(id uint64, input []uint32) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(snapshotsBucket).Put(encodeID(id), encodeSnapshot(input))
	})
}

func (s *boltStore) Snapshot(id uint64) (input []uint32, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		value := tx.Bucket(snapshotsBucket).Get(encodeID(id))
		if value == nil {
			return errors.Wrapf(ErrNotFound, "snapshot %d", id)
		}
		input, err = decodeSnapshot(value)
		return err
	})
	return input, err
}

func (s *boltStore) Close() error {
	return s.db.Close()
}
