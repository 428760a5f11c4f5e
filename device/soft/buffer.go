package soft

import "sync/atomic"

type buffer struct {
	data     []uint32
	inFlight atomic.Int32
	released atomic.Bool
}

// Len implements the method of the device.Buffer interface.
func (b *buffer) Len() int { return len(b.data) }

// Contents implements the method of the device.Buffer interface. It panics
// if the buffer was released, or if a command buffer using it has been
// committed and has not completed yet.
func (b *buffer) Contents() []uint32 {
	if b.released.Load() {
		panic("soft: use of released buffer")
	}
	if b.inFlight.Load() != 0 {
		panic("soft: buffer accessed by host while in use by device")
	}
	return b.data
}

// Release implements the method of the device.Buffer interface.
func (b *buffer) Release() {
	if b.inFlight.Load() != 0 {
		panic("soft: buffer released while in use by device")
	}
	if b.released.CompareAndSwap(false, true) {
		b.data = nil
	}
}
