// Package parsort benchmarks sorting of large arrays of unsigned 32-bit
// integers across three execution strategies, and validates that all of
// them produce identical output.
//
// Parsort provides the following subpackages:
//
// parsort/sequential provides the sequential baseline sort, as well as
// sequential versions of the fork-join primitives for testing and
// debugging.
//
// parsort/parallel provides the fork-join primitives (Do, Range) the
// engines are built on. parsort/speculative provides early-terminating
// parallel predicates.
//
// parsort/sort provides the fork-join parallel merge sort.
// parsort/pipeline provides parallel pipelines with ordered stages, and
// parsort/sync a parallel map split into individually locked partitions.
//
// parsort/device provides a minimal compute backend abstraction (buffers,
// command queues, dispatches, barriers, completion handlers) with a
// backend registry and capability probing. parsort/device/soft provides a
// software-simulated device, and parsort/kernels the compute kernel
// library it executes.
//
// parsort/bitonic provides the bitonic sorting network orchestrated
// against a device.
//
// parsort/bench drives all engines, times them, and validates their
// outputs; parsort/history records benchmark runs, and parsort/metrics
// exports them to Prometheus. parsort/config loads the settings of the
// sortbench command.
//
// Parsort has been influenced by Cilk-style fork-join programming, and by
// Batcher's bitonic sorting network. See
// https://en.wikipedia.org/wiki/Bitonic_sorter for some theoretical
// background.
package parsort
