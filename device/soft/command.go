package soft

import (
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/exascience/parsort/device"
	"github.com/exascience/parsort/internal"
	"github.com/exascience/parsort/parallel"
	"github.com/exascience/parsort/sequential"
)

type commandQueue struct {
	device *Device
}

// NewCommandBuffer implements the method of the device.CommandQueue
// interface.
func (q *commandQueue) NewCommandBuffer() (device.CommandBuffer, error) {
	if q.device.failures&FailCommandBuffer != 0 {
		return nil, errors.Wrap(device.ErrCommandQueueUnavailable, "soft: command buffer creation disabled")
	}
	return &commandBuffer{device: q.device}, nil
}

// A command is either a dispatch, or a memory barrier when pipeline is nil.
type command struct {
	pipeline *pipeline
	args     *args
	threads  int
}

func (c command) barrier() bool { return c.pipeline == nil }

type commandBuffer struct {
	device    *Device
	mu        sync.Mutex
	commands  []command
	encoding  bool
	committed bool
	handlers  []func(device.CommandBuffer)
	err       error
}

// NewComputeEncoder implements the method of the device.CommandBuffer
// interface.
func (cb *commandBuffer) NewComputeEncoder() (device.ComputeEncoder, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch {
	case cb.committed:
		return nil, errors.New("soft: command buffer already committed")
	case cb.encoding:
		return nil, errors.New("soft: another encoder is still active")
	}
	cb.encoding = true
	return &encoder{cb: cb, args: newArgs()}, nil
}

// AddCompletedHandler implements the method of the device.CommandBuffer
// interface.
func (cb *commandBuffer) AddCompletedHandler(handler func(device.CommandBuffer)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.committed {
		panic("soft: completed handler added after commit")
	}
	cb.handlers = append(cb.handlers, handler)
}

// Err implements the method of the device.CommandBuffer interface.
func (cb *commandBuffer) Err() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.err
}

func (cb *commandBuffer) fail(err error) {
	if cb.err == nil {
		cb.err = err
	}
}

// Commit implements the method of the device.CommandBuffer interface.
func (cb *commandBuffer) Commit() {
	cb.mu.Lock()
	if cb.committed {
		cb.mu.Unlock()
		panic("soft: command buffer committed twice")
	}
	cb.committed = true
	if cb.encoding {
		cb.fail(errors.New("soft: committed with an active encoder"))
	}
	commands := cb.commands
	if cb.err != nil {
		commands = nil
	}
	cb.mu.Unlock()

	buffers := referencedBuffers(commands)
	for _, b := range buffers {
		b.inFlight.Add(1)
	}
	go func() {
		cb.run(commands)
		for _, b := range buffers {
			b.inFlight.Add(-1)
		}
		cb.mu.Lock()
		handlers := cb.handlers
		cb.mu.Unlock()
		for _, handler := range handlers {
			handler(cb)
		}
	}()
}

func referencedBuffers(commands []command) []*buffer {
	seen := make(map[*buffer]bool)
	var buffers []*buffer
	for _, c := range commands {
		if c.barrier() {
			continue
		}
		for _, b := range c.args.buffers {
			if !seen[b] {
				seen[b] = true
				buffers = append(buffers, b)
			}
		}
	}
	return buffers
}

// run executes the commands, and records a panicking kernel as the
// error of the command buffer.
func (cb *commandBuffer) run(commands []command) {
	defer func() {
		if r := recover(); r != nil {
			cb.mu.Lock()
			defer cb.mu.Unlock()
			cb.fail(errors.Newf("soft: kernel panicked: %v", internal.WrapPanic(r)))
		}
	}()
	cb.execute(commands)
}

// execute runs the commands in order. Runs of dispatches between barriers
// execute concurrently with each other, unless the device has a single
// unit.
func (cb *commandBuffer) execute(commands []command) {
	var group []command
	flush := func() {
		thunks := make([]func(), len(group))
		for i, c := range group {
			thunks[i] = func() { cb.dispatch(c) }
		}
		if cb.device.units > 1 {
			parallel.Do(thunks...)
		} else {
			sequential.Do(thunks...)
		}
		group = group[:0]
	}
	for _, c := range commands {
		if c.barrier() {
			flush()
			cb.device.barriers.Add(1)
			continue
		}
		group = append(group, c)
	}
	flush()
}

func (cb *commandBuffer) dispatch(c command) {
	run := c.pipeline.kernel.Run
	body := func(low, high int) {
		for gid := low; gid < high; gid++ {
			run(c.args, gid)
		}
	}
	if units := cb.device.units; units > 1 {
		parallel.Range(0, c.threads, units, body)
	} else {
		sequential.Range(0, c.threads, 1, body)
	}
	cb.device.dispatches.Add(1)
}

type encoder struct {
	cb       *commandBuffer
	pipeline *pipeline
	args     *args
	ended    bool
}

func (e *encoder) check() {
	if e.ended {
		panic("soft: use of ended encoder")
	}
}

// SetPipeline implements the method of the device.ComputeEncoder interface.
func (e *encoder) SetPipeline(p device.Pipeline) {
	e.check()
	sp, ok := p.(*pipeline)
	if !ok {
		e.cb.mu.Lock()
		e.cb.fail(errors.Newf("soft: foreign pipeline %T", p))
		e.cb.mu.Unlock()
		return
	}
	e.pipeline = sp
}

// SetBuffer implements the method of the device.ComputeEncoder interface.
func (e *encoder) SetBuffer(b device.Buffer, index int) {
	e.check()
	sb, ok := b.(*buffer)
	if !ok {
		e.cb.mu.Lock()
		e.cb.fail(errors.Newf("soft: foreign buffer %T at binding %d", b, index))
		e.cb.mu.Unlock()
		return
	}
	e.args.buffers[index] = sb
}

// SetUint32 implements the method of the device.ComputeEncoder interface.
func (e *encoder) SetUint32(v uint32, index int) {
	e.check()
	e.args.scalars[index] = v
}

// Dispatch implements the method of the device.ComputeEncoder interface.
func (e *encoder) Dispatch(threads int) {
	e.check()
	e.cb.mu.Lock()
	defer e.cb.mu.Unlock()
	if e.pipeline == nil {
		e.cb.fail(errors.New("soft: dispatch without pipeline"))
		return
	}
	if threads < 0 {
		e.cb.fail(errors.Newf("soft: invalid thread count %d", threads))
		return
	}
	for _, b := range e.pipeline.kernel.Bindings {
		if !e.args.bound(b) {
			e.cb.fail(errors.Newf("soft: %s: binding %d (%s) not set",
				e.pipeline.entry.name, b.Index, b.Kind))
			return
		}
	}
	e.cb.commands = append(e.cb.commands, command{
		pipeline: e.pipeline,
		args:     e.args.clone(),
		threads:  threads,
	})
}

// MemoryBarrier implements the method of the device.ComputeEncoder
// interface.
func (e *encoder) MemoryBarrier() {
	e.check()
	e.cb.mu.Lock()
	defer e.cb.mu.Unlock()
	e.cb.commands = append(e.cb.commands, command{})
}

// End implements the method of the device.ComputeEncoder interface.
func (e *encoder) End() {
	e.check()
	e.ended = true
	e.cb.mu.Lock()
	defer e.cb.mu.Unlock()
	e.cb.encoding = false
}
