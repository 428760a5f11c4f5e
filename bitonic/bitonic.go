// Package bitonic sorts on a compute device with Batcher's bitonic sorting
// network.
//
// The input is padded to the next power of two with parsort.Sentinel,
// sorted in a single device buffer by a fixed schedule of compare-exchange
// passes, and trimmed back to its original length. Every pass is a
// separate dispatch of the kernels.BitonicSort kernel, followed by a
// memory barrier, so that each pass observes all writes of the previous
// one.
package bitonic

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/exascience/parsort"
	"github.com/exascience/parsort/device"
	"github.com/exascience/parsort/kernels"
)

// MaxLen is the largest padded length the schedule can address with
// uint32 stage and pass values.
const MaxLen = 1 << 31

// A Pass is one compare-exchange step of the network. Stage is the size of
// the bitonic sequences being merged, Pass the distance between compared
// elements.
type Pass struct {
	Stage, Pass uint32
}

// Schedule returns the passes of the network for m elements, in execution
// order: stage = 2, 4, ..., m, and within each stage pass = stage/2, ...,
// 1. The result has log2(m)*(log2(m)+1)/2 entries.
//
// Schedule panics if m is not a power of two, or exceeds MaxLen.
func Schedule(m int) []Pass {
	if int64(m) > MaxLen {
		panic(errors.Newf("bitonic: length %d exceeds %d", m, int64(MaxLen)))
	}
	k := parsort.Log2(m)
	passes := make([]Pass, 0, k*(k+1)/2)
	for stage := 2; stage <= m; stage <<= 1 {
		for pass := stage >> 1; pass > 0; pass >>= 1 {
			passes = append(passes, Pass{Stage: uint32(stage), Pass: uint32(pass)})
		}
	}
	return passes
}

// A Sorter sorts on one device. The command queue and pipeline are created
// once by New and shared by all calls to Sort; each call allocates its own
// buffer and command buffer, so a Sorter is safe for concurrent use.
type Sorter struct {
	device   device.Device
	queue    device.CommandQueue
	pipeline device.Pipeline
}

// New prepares a Sorter for dev. Initialization stops at the first failing
// step, with an error of the corresponding kind:
//
//	no device                 device.ErrNoDevice
//	command queue creation    device.ErrCommandQueueUnavailable
//	kernel lookup             device.ErrKernelUnavailable
//	pipeline build            device.ErrPipelineBuildFailed
func New(dev device.Device) (*Sorter, error) {
	if dev == nil {
		return nil, errors.Wrap(device.ErrNoDevice, "bitonic")
	}
	queue, err := dev.NewCommandQueue()
	if err != nil {
		return nil, device.Mark(err, device.ErrCommandQueueUnavailable, "bitonic: creating command queue")
	}
	fn, err := dev.Function(kernels.BitonicSort)
	if err != nil {
		return nil, device.Mark(err, device.ErrKernelUnavailable, "bitonic: looking up kernel")
	}
	pipeline, err := dev.NewComputePipeline(fn)
	if err != nil {
		return nil, device.Mark(err, device.ErrPipelineBuildFailed, "bitonic: building pipeline")
	}
	return &Sorter{device: dev, queue: queue, pipeline: pipeline}, nil
}

// NewDefault prepares a Sorter for the default device, see device.Default.
func NewDefault() (*Sorter, error) {
	dev, err := device.Default()
	if err != nil {
		return nil, err
	}
	return New(dev)
}

// Device returns the device the Sorter runs on.
func (s *Sorter) Device() device.Device { return s.device }

// Sort returns a sorted copy of input, and the time the device spent
// executing the network, measured from submission to completion. The
// input is not modified.
//
// Sort fails with device.ErrBufferAllocationFailed if the padded input
// does not fit in a device buffer, with device.ErrCommandQueueUnavailable
// if the commands cannot be encoded, and with the device's error if
// execution fails. No partial result is returned.
func (s *Sorter) Sort(input []uint32) ([]uint32, time.Duration, error) {
	n := len(input)
	if n == 0 {
		return []uint32{}, 0, nil
	}
	if int64(n) > MaxLen {
		return nil, 0, errors.Wrapf(device.ErrBufferAllocationFailed,
			"bitonic: %d elements exceed maximum %d", n, int64(MaxLen))
	}
	m := parsort.NextPowerOfTwo(n)

	buf, err := s.device.NewBuffer(m)
	if err != nil {
		return nil, 0, device.Mark(err, device.ErrBufferAllocationFailed, "bitonic: allocating buffer")
	}
	defer buf.Release()

	data := buf.Contents()
	copy(data, input)
	for i := n; i < m; i++ {
		data[i] = parsort.Sentinel
	}

	cb, err := s.queue.NewCommandBuffer()
	if err != nil {
		return nil, 0, device.Mark(err, device.ErrCommandQueueUnavailable, "bitonic: creating command buffer")
	}
	enc, err := cb.NewComputeEncoder()
	if err != nil {
		return nil, 0, device.Mark(err, device.ErrCommandQueueUnavailable, "bitonic: creating encoder")
	}
	enc.SetPipeline(s.pipeline)
	enc.SetBuffer(buf, kernels.BitonicData)
	for _, p := range Schedule(m) {
		enc.SetUint32(p.Stage, kernels.BitonicStage)
		enc.SetUint32(p.Pass, kernels.BitonicPass)
		enc.Dispatch(m)
		enc.MemoryBarrier()
	}
	enc.End()

	done := make(chan time.Time, 1)
	cb.AddCompletedHandler(func(device.CommandBuffer) {
		done <- time.Now()
	})
	start := time.Now()
	cb.Commit()
	end := <-done

	if err := cb.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "bitonic: executing network")
	}
	result := make([]uint32, n)
	copy(result, buf.Contents())
	return result, end.Sub(start), nil
}
