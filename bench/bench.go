// Package bench runs the sorting engines against each other on the same
// input, times them, and validates their outputs against the sequential
// baseline.
//
// A device that is unavailable or fails is recorded in the run's status;
// the host engines are still measured and validated.
package bench

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/exascience/parsort"
	"github.com/exascience/parsort/bitonic"
	"github.com/exascience/parsort/history"
	"github.com/exascience/parsort/metrics"
	"github.com/exascience/parsort/sequential"
	"github.com/exascience/parsort/sort"
)

// Engine names, as recorded in runs and metrics labels.
const (
	Sequential = "sequential"
	Parallel   = "parallel"
	Device     = "device"
)

// A Runner executes benchmark runs. The zero Runner uses the default
// device, logs to the standard logger, and does not record runs.
type Runner struct {
	// Logger receives one line per engine and trial.
	Logger *log.Logger

	// Store records each run. nil discards runs.
	Store history.Store

	// NewSorter prepares the device engine. nil selects
	// bitonic.NewDefault.
	NewSorter func() (*bitonic.Sorter, error)

	// DeviceName is recorded in the host information of each run.
	DeviceName string
}

func (r *Runner) logf(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
	} else {
		log.Printf(format, args...)
	}
}

type engineRun struct {
	result history.EngineResult
	output []uint32
	failed bool
}

func (e *engineRun) observe(name string, d time.Duration, n int) {
	seconds := d.Seconds()
	e.result.Durations = append(e.result.Durations, seconds)
	metrics.ObserveSort(name, seconds, n)
}

// Run generates n random values from seed, and sorts them trials times
// with each engine. The returned run is complete even when err is not
// nil; err only reports a failure to record the run.
func (r *Runner) Run(n, trials int, seed uint64) (history.Run, error) {
	if trials < 1 {
		trials = 1
	}
	run := history.Run{
		ID:       history.NewID(),
		Time:     time.Now().UTC(),
		Elements: n,
		Seed:     seed,
		Trials:   trials,
		Host:     HostInfo(),
	}
	run.Host.Device = r.DeviceName
	r.logf("run %d: generating %d elements (seed %d)", run.ID, n, seed)
	input := Generate(n, seed)

	seq := &engineRun{result: history.EngineResult{Engine: Sequential, Match: true}}
	par := &engineRun{result: history.EngineResult{Engine: Parallel}}
	dev := &engineRun{result: history.EngineResult{Engine: Device}}

	sorter, err := r.newSorter()
	if err != nil {
		dev.failed = true
		dev.result.Status = fmt.Sprintf("device unavailable: %v", err)
		metrics.IncDeviceUnavailable()
		r.logf("run %d: %s", run.ID, dev.result.Status)
	} else {
		run.Host.Units = sorter.Device().Units()
	}

	for trial := 1; trial <= trials; trial++ {
		start := time.Now()
		seq.output = sequential.Sort(input)
		seq.observe(Sequential, time.Since(start), n)

		start = time.Now()
		par.output = sort.Sort(input)
		par.observe(Parallel, time.Since(start), n)

		if !dev.failed {
			output, elapsed, err := sorter.Sort(input)
			if err != nil {
				dev.failed = true
				dev.result.Status = fmt.Sprintf("device sort failed: %v", err)
				r.logf("run %d: %s", run.ID, dev.result.Status)
			} else {
				dev.output = output
				dev.observe(Device, elapsed, n)
				if n > 0 {
					metrics.AddDeviceDispatches(len(bitonic.Schedule(parsort.NextPowerOfTwo(n))))
				}
			}
		}
		r.logf("run %d trial %d/%d: %s", run.ID, trial, trials, formatTrial(seq, par, dev))
	}

	run.Match = true
	for _, e := range []*engineRun{par, dev} {
		if e.failed {
			e.result.Durations = nil
			continue
		}
		if err := Validate(e.result.Engine, e.output, seq.output); err != nil {
			run.Match = false
			e.result.Status = err.Error()
			metrics.IncMismatch(e.result.Engine)
			r.logf("run %d: %v", run.ID, err)
			continue
		}
		e.result.Match = true
	}
	for _, e := range []*engineRun{seq, par, dev} {
		if e.failed {
			continue
		}
		e.result.Stats = Summarize(e.result.Durations)
		e.result.Digest = Digest(e.output)
		if e != seq && e.result.Stats.Mean > 0 {
			e.result.Speedup = seq.result.Stats.Mean / e.result.Stats.Mean
		}
	}
	run.Engines = []history.EngineResult{seq.result, par.result, dev.result}
	run.Status = status(run, par, dev)
	r.logf("run %d: %s", run.ID, run.Status)

	if r.Store == nil {
		return run, nil
	}
	if !run.Match {
		if err := r.Store.PutSnapshot(run.ID, input); err != nil {
			return run, err
		}
		run.Snapshot = true
	}
	return run, r.Store.Put(run)
}

func (r *Runner) newSorter() (*bitonic.Sorter, error) {
	if r.NewSorter != nil {
		return r.NewSorter()
	}
	return bitonic.NewDefault()
}

func formatTrial(engines ...*engineRun) string {
	var parts []string
	for _, e := range engines {
		if d := e.result.Durations; len(d) > 0 && !e.failed {
			parts = append(parts, fmt.Sprintf("%s %.3fs", e.result.Engine, d[len(d)-1]))
		}
	}
	return strings.Join(parts, ", ")
}

func status(run history.Run, par, dev *engineRun) string {
	correctness := "Outputs match"
	if !run.Match {
		correctness = "Mismatch!"
	}
	if dev.failed {
		return fmt.Sprintf("%s. Parallel %.1fx. %s", dev.result.Status, par.result.Speedup, correctness)
	}
	return fmt.Sprintf("Done. Device %.1fx vs parallel %.1fx. %s",
		dev.result.Speedup, par.result.Speedup, correctness)
}
