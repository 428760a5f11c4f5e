package history_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"

	"github.com/exascience/parsort/history"
)

func openStore(t *testing.T, backend string) history.Store {
	t.Helper()
	path := t.TempDir()
	if backend == history.Bolt {
		path = filepath.Join(path, "history.db")
	}
	store, err := history.Open(backend, path)
	if err != nil {
		t.Fatalf("Open(%s): %v", backend, err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return store
}

func sampleRun(id uint64) history.Run {
	return history.Run{
		ID:       id,
		Time:     time.Unix(0, int64(id)).UTC(),
		Elements: 1000,
		Seed:     7,
		Trials:   3,
		Engines: []history.EngineResult{
			{Engine: "sequential", Durations: []float64{0.1, 0.2, 0.3},
				Stats: history.Stats{Mean: 0.2, StdDev: 0.1, Median: 0.2, Min: 0.1, Max: 0.3}, Match: true},
			{Engine: "device", Status: "device unavailable: no compute device available"},
		},
		Status: "done",
		Host:   history.Host{GOOS: "linux", GOARCH: "amd64", CPUs: 8, GOMAXPROCS: 8, Device: "none"},
	}
}

func TestStores(t *testing.T) {
	for _, backend := range []string{history.Bolt, history.Pebble, history.Badger, history.Memory} {
		t.Run(backend, func(t *testing.T) {
			store := openStore(t, backend)

			if _, err := store.Get(1); !errors.Is(err, history.ErrNotFound) {
				t.Errorf("Get on empty store: %v", err)
			}
			runs, err := store.List(0)
			if err != nil || len(runs) != 0 {
				t.Errorf("List on empty store = %v, %v", runs, err)
			}

			for _, id := range []uint64{3, 1, 2, 300} {
				if err := store.Put(sampleRun(id)); err != nil {
					t.Fatalf("Put(%d): %v", id, err)
				}
			}
			got, err := store.Get(2)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(sampleRun(2), got); diff != "" {
				t.Errorf("Get(2) mismatch (-want +got):\n%s", diff)
			}

			runs, err = store.List(3)
			if err != nil {
				t.Fatal(err)
			}
			var ids []uint64
			for _, run := range runs {
				ids = append(ids, run.ID)
			}
			if diff := cmp.Diff([]uint64{300, 3, 2}, ids); diff != "" {
				t.Errorf("List(3) IDs mismatch (-want +got):\n%s", diff)
			}
			if runs, _ = store.List(0); len(runs) != 4 {
				t.Errorf("List(0) returned %d runs", len(runs))
			}

			input := []uint32{5, 3, 3, 1, 0xFFFFFFFF}
			if err := store.PutSnapshot(3, input); err != nil {
				t.Fatal(err)
			}
			snapshot, err := store.Snapshot(3)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(input, snapshot); diff != "" {
				t.Errorf("Snapshot(3) mismatch (-want +got):\n%s", diff)
			}
			if _, err := store.Snapshot(2); !errors.Is(err, history.ErrNotFound) {
				t.Errorf("Snapshot(2) error = %v", err)
			}
		})
	}
}

func TestNone(t *testing.T) {
	store := openStore(t, history.None)
	if err := store.Put(sampleRun(1)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(1); !errors.Is(err, history.ErrNotFound) {
		t.Errorf("Get(1) error = %v", err)
	}
}

func TestOpenUnknown(t *testing.T) {
	if _, err := history.Open("sqlite", ""); err == nil {
		t.Error("Open(sqlite) succeeded")
	}
}

func TestNewID(t *testing.T) {
	last := history.NewID()
	for i := 0; i < 1000; i++ {
		id := history.NewID()
		if id <= last {
			t.Fatalf("NewID() = %d after %d", id, last)
		}
		last = id
	}
}
