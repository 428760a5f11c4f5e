// Package device defines a minimal compute backend abstraction: shared
// buffers, command queues, command buffers with compute encoders,
// dispatches, memory barriers, and completion notification.
//
// The abstraction is deliberately small. It covers exactly what is needed
// to orchestrate a data-parallel kernel over a buffer, so that the
// orchestration can be tested against a software-simulated backend (see
// package soft) without real accelerator hardware.
//
// Backends register themselves by name with Register, similar to
// database/sql drivers, and are opened with Open or Default. Probe reports
// whether a backend is usable as an explicit Capability value.
package device

// A Device is a compute processor that executes kernels over buffers.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Device interface {
	// Name returns the name of the backend that opened this device.
	Name() string

	// Units returns the number of parallel execution units.
	Units() int

	// MaxBufferLen returns the largest number of elements a single buffer
	// can hold.
	MaxBufferLen() int

	// NewCommandQueue creates a queue for submitting command buffers.
	NewCommandQueue() (CommandQueue, error)

	// Function looks up a compiled compute entry point by name.
	Function(name string) (Function, error)

	// NewComputePipeline builds an executable pipeline from an entry
	// point.
	NewComputePipeline(fn Function) (Pipeline, error)

	// NewBuffer allocates a buffer of n elements in storage shared between
	// the host and the device.
	NewBuffer(n int) (Buffer, error)
}

// A Function is a compute entry point in a device's kernel library.
type Function interface {
	Name() string
}

// A Pipeline is an executable form of a Function.
type Pipeline interface {
	Function() Function

	// ThreadsPerGroup is the number of threads the device schedules
	// together for one dispatch of this pipeline.
	ThreadsPerGroup() int
}

// A Buffer is a contiguous region of uint32 elements shared between the
// host and the device.
//
// Ownership of a buffer moves to the device when a command buffer that
// uses it is committed, and back to the host when that command buffer
// completes. The host must not call Contents in between.
type Buffer interface {
	Len() int

	// Contents returns the host view of the buffer storage. Writes to the
	// returned slice are visible to the device for command buffers that
	// are committed afterwards.
	Contents() []uint32

	// Release frees the buffer. The buffer must not be used afterwards.
	Release()
}

// A CommandQueue creates command buffers and executes them in commit
// order.
type CommandQueue interface {
	NewCommandBuffer() (CommandBuffer, error)
}

// A CommandBuffer holds encoded commands until it is committed for
// execution.
type CommandBuffer interface {
	NewComputeEncoder() (ComputeEncoder, error)

	// AddCompletedHandler registers a function that is invoked once all
	// commands have finished executing. Handlers run in registration
	// order. Handlers must be added before Commit.
	AddCompletedHandler(handler func(CommandBuffer))

	// Commit submits the command buffer for execution. Commit does not
	// wait for completion.
	Commit()

	// Err returns the error that stopped execution, if any. It is only
	// meaningful once the command buffer has completed.
	Err() error
}

// A ComputeEncoder records compute commands into a command buffer.
//
// Arguments set with SetBuffer and SetUint32 are captured by each
// Dispatch, so they can be changed between dispatches.
type ComputeEncoder interface {
	SetPipeline(p Pipeline)
	SetBuffer(b Buffer, index int)
	SetUint32(v uint32, index int)

	// Dispatch executes the bound pipeline with one logical thread per
	// index in [0, threads).
	Dispatch(threads int)

	// MemoryBarrier orders all buffer accesses of the preceding
	// dispatches before those of the following dispatches. Without a
	// barrier, consecutive dispatches may execute concurrently.
	MemoryBarrier()

	// End finishes encoding. The encoder must not be used afterwards.
	End()
}
