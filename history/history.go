// Package history records benchmark runs, and snapshots of the inputs of
// runs whose engines disagreed, so that failures can be reproduced.
//
// Runs are keyed by their ID, which increases with time, so stores list
// the most recent runs first. Several embedded key/value backends are
// available; see Open.
package history

import (
	"encoding/binary"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang/snappy"

	"github.com/exascience/parsort/internal"
)

// Backend names accepted by Open.
const (
	Bolt   = "bolt"
	Pebble = "pebble"
	Badger = "badger"
	Memory = "memory"
	None   = "none"
)

// Backends lists the backend names accepted by Open.
var Backends = []string{Bolt, Pebble, Badger, Memory, None}

// ErrNotFound is returned for runs and snapshots that are not in a store.
var ErrNotFound = errors.New("history: not found")

// Stats summarizes the durations of several trials, in seconds.
type Stats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// An EngineResult is the outcome of one engine in a run.
type EngineResult struct {
	Engine    string    `json:"engine"`
	Durations []float64 `json:"durations,omitempty"`
	Stats     Stats     `json:"stats"`
	Speedup   float64   `json:"speedup,omitempty"`
	Digest    uint64    `json:"digest,omitempty"`
	Match     bool      `json:"match"`
	Status    string    `json:"status,omitempty"`
}

// Host describes the machine a run was executed on.
type Host struct {
	GOOS       string   `json:"goos"`
	GOARCH     string   `json:"goarch"`
	CPUs       int      `json:"cpus"`
	GOMAXPROCS int      `json:"gomaxprocs"`
	Features   []string `json:"features,omitempty"`
	Device     string   `json:"device"`
	Units      int      `json:"units,omitempty"`
}

// A Run is the record of one benchmark invocation.
type Run struct {
	ID       uint64         `json:"id"`
	Time     time.Time      `json:"time"`
	Elements int            `json:"elements"`
	Seed     uint64         `json:"seed"`
	Trials   int            `json:"trials"`
	Engines  []EngineResult `json:"engines"`
	Match    bool           `json:"match"`
	Status   string         `json:"status"`
	Host     Host           `json:"host"`
	Snapshot bool           `json:"snapshot,omitempty"`
}

// A Store persists runs and input snapshots. Implementations are safe
// for concurrent use.
type Store interface {
	// Put records run under run.ID, replacing any earlier record.
	Put(run Run) error

	// Get returns the run with the given ID, or ErrNotFound.
	Get(id uint64) (Run, error)

	// List returns up to limit runs, most recent first. limit <= 0 lists
	// all runs.
	List(limit int) ([]Run, error)

	// PutSnapshot records the input of the run with the given ID.
	PutSnapshot(id uint64, input []uint32) error

	// Snapshot returns the input recorded for the run with the given ID,
	// or ErrNotFound.
	Snapshot(id uint64) ([]uint32, error)

	Close() error
}

// Open opens a store of the named backend. path is a directory for pebble
// and badger, a file for bolt, and ignored for memory and none. The none
// backend discards everything.
func Open(backend, path string) (Store, error) {
	var (
		store Store
		err   error
	)
	switch backend {
	case Bolt:
		store, err = openBolt(path)
	case Pebble:
		store, err = openPebble(path)
	case Badger:
		store, err = openBadger(path)
	case Memory:
		return NewMemory(), nil
	case None:
		return discard{}, nil
	default:
		return nil, errors.Newf("history: unknown backend %q", backend)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "history: opening %s store at %s", backend, path)
	}
	return store, nil
}

var lastID atomic.Uint64

// NewID returns a new run ID. IDs are derived from the current time and
// strictly increase within a process.
func NewID() uint64 {
	for {
		last := lastID.Load()
		id := uint64(time.Now().UnixNano())
		if id <= last {
			id = last + 1
		}
		if lastID.CompareAndSwap(last, id) {
			return id
		}
	}
}

var (
	runPrefix      = []byte("run/")
	snapshotPrefix = []byte("snap/")
)

func encodeID(id uint64) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], id)
	return key[:]
}

func prefixed(prefix []byte, id uint64) []byte {
	return append(append([]byte{}, prefix...), encodeID(id)...)
}

func encodeRun(run Run) ([]byte, error) {
	value, err := json.Marshal(run)
	return value, errors.Wrapf(err, "history: encoding run %d", run.ID)
}

func decodeRun(value []byte) (run Run, err error) {
	err = json.Unmarshal(value, &run)
	return run, errors.Wrap(err, "history: decoding run")
}

func encodeSnapshot(input []uint32) []byte {
	return snappy.Encode(nil, internal.EncodeUint32s(input))
}

func decodeSnapshot(value []byte) ([]uint32, error) {
	raw, err := snappy.Decode(nil, value)
	if err != nil {
		return nil, errors.Wrap(err, "history: decompressing snapshot")
	}
	return internal.DecodeUint32s(raw)
}

type discard struct{}

func (discard) Put(Run) error                      { return nil }
func (discard) Get(uint64) (Run, error)            { return Run{}, ErrNotFound }
func (discard) List(int) ([]Run, error)            { return nil, nil }
func (discard) PutSnapshot(uint64, []uint32) error { return nil }
func (discard) Snapshot(uint64) ([]uint32, error)  { return nil, ErrNotFound }
func (discard) Close() error                       { return nil }
