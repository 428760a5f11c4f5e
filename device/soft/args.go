package soft

import (
	"maps"

	"github.com/exascience/parsort/kernels"
)

// args holds the arguments bound to an encoder. Each dispatch captures a
// clone, so later SetBuffer and SetUint32 calls do not affect it.
type args struct {
	buffers map[int]*buffer
	scalars map[int]uint32
}

func newArgs() *args {
	return &args{
		buffers: make(map[int]*buffer),
		scalars: make(map[int]uint32),
	}
}

func (a *args) clone() *args {
	return &args{
		buffers: maps.Clone(a.buffers),
		scalars: maps.Clone(a.scalars),
	}
}

func (a *args) bound(b kernels.Binding) bool {
	switch b.Kind {
	case kernels.Storage:
		_, ok := a.buffers[b.Index]
		return ok
	case kernels.Uniform:
		_, ok := a.scalars[b.Index]
		return ok
	}
	return false
}

// Buffer implements the method of the kernels.Args interface. The device
// owns the buffer while the kernel runs, so the storage is accessed
// directly rather than through Contents.
func (a *args) Buffer(index int) []uint32 {
	if b, ok := a.buffers[index]; ok {
		return b.data
	}
	return nil
}

// Uint32 implements the method of the kernels.Args interface.
func (a *args) Uint32(index int) uint32 {
	return a.scalars[index]
}
