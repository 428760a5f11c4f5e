// Package soft provides a software-simulated compute device.
//
// Buffers live in host memory. Committed command buffers execute
// asynchronously on their own goroutine. Each dispatch runs the host
// implementation of its kernel (see package kernels) for every logical
// thread, split across the device's execution units. Consecutive
// dispatches that are not separated by a memory barrier execute
// concurrently on a device with more than one unit, as they may on real
// hardware.
//
// Importing this package registers the backend under the name "soft".
package soft

import (
	"runtime"
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/exascience/parsort/device"
	"github.com/exascience/parsort/kernels"
)

// Name is the backend name under which the software device is registered.
const Name = "soft"

// DefaultMaxBufferLen is the default cap on buffer lengths, 1<<28 elements
// (1 GiB of uint32).
const DefaultMaxBufferLen = 1 << 28

// A Failure selects an initialization or allocation step that a Device
// reports as failing. Failures are used to exercise error paths.
type Failure uint

const (
	FailCommandQueue Failure = 1 << iota
	FailCommandBuffer
	FailPipeline
	FailBufferAllocation
)

type options struct {
	units        int
	maxBufferLen int
	source       string
	lookup       func(name string) (kernels.Kernel, bool)
	failures     Failure
}

// An Option configures a Device.
type Option func(*options)

// WithUnits sets the number of execution units. Values <= 0 select
// runtime.GOMAXPROCS(0).
func WithUnits(n int) Option {
	return func(o *options) { o.units = n }
}

// WithMaxBufferLen caps the number of elements per buffer.
func WithMaxBufferLen(n int) Option {
	return func(o *options) { o.maxBufferLen = n }
}

// WithLibrary replaces the kernel library: source is scanned for entry
// points, and lookup resolves their host implementations.
func WithLibrary(source string, lookup func(name string) (kernels.Kernel, bool)) Option {
	return func(o *options) {
		o.source = source
		o.lookup = lookup
	}
}

// WithFailures makes the device report the given steps as failing.
func WithFailures(f Failure) Option {
	return func(o *options) { o.failures |= f }
}

// Device is a software-simulated compute device. It implements
// device.Device.
type Device struct {
	units        int
	maxBufferLen int
	library      map[string]*entryPoint
	lookup       func(name string) (kernels.Kernel, bool)
	failures     Failure
	dispatches   atomic.Int64
	barriers     atomic.Int64
}

// New creates a software device. It fails if the kernel library source
// cannot be parsed.
func New(opts ...Option) (*Device, error) {
	o := options{
		units:        runtime.GOMAXPROCS(0),
		maxBufferLen: DefaultMaxBufferLen,
		source:       kernels.Source,
		lookup:       kernels.Lookup,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.units <= 0 {
		o.units = runtime.GOMAXPROCS(0)
	}
	if o.maxBufferLen <= 0 {
		o.maxBufferLen = DefaultMaxBufferLen
	}
	library, err := parseLibrary(o.source)
	if err != nil {
		return nil, errors.Wrap(err, "parsing kernel library")
	}
	return &Device{
		units:        o.units,
		maxBufferLen: o.maxBufferLen,
		library:      library,
		lookup:       o.lookup,
		failures:     o.failures,
	}, nil
}

func init() {
	device.Register(Name, func(opts device.Options) (device.Device, error) {
		return New(WithUnits(opts.Units), WithMaxBufferLen(opts.MaxBufferLen))
	})
}

// Name implements the method of the device.Device interface.
func (d *Device) Name() string { return Name }

// Units implements the method of the device.Device interface.
func (d *Device) Units() int { return d.units }

// MaxBufferLen implements the method of the device.Device interface.
func (d *Device) MaxBufferLen() int { return d.maxBufferLen }

// Dispatches returns the number of dispatches this device has executed.
func (d *Device) Dispatches() int64 { return d.dispatches.Load() }

// Barriers returns the number of memory barriers this device has executed.
func (d *Device) Barriers() int64 { return d.barriers.Load() }

// NewCommandQueue implements the method of the device.Device interface.
func (d *Device) NewCommandQueue() (device.CommandQueue, error) {
	if d.failures&FailCommandQueue != 0 {
		return nil, errors.Wrap(device.ErrCommandQueueUnavailable, "soft: queue creation disabled")
	}
	return &commandQueue{device: d}, nil
}

// NewBuffer implements the method of the device.Device interface.
func (d *Device) NewBuffer(n int) (device.Buffer, error) {
	switch {
	case d.failures&FailBufferAllocation != 0:
		return nil, errors.Wrap(device.ErrBufferAllocationFailed, "soft: allocation disabled")
	case n <= 0:
		return nil, errors.Wrapf(device.ErrBufferAllocationFailed, "soft: invalid buffer length %d", n)
	case n > d.maxBufferLen:
		return nil, errors.Wrapf(device.ErrBufferAllocationFailed,
			"soft: buffer length %d exceeds maximum %d", n, d.maxBufferLen)
	}
	return &buffer{data: make([]uint32, n)}, nil
}
