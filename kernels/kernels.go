// Package kernels provides the compute kernel library: WGSL sources for
// the entry points, and host implementations with identical semantics that
// software backends execute.
//
// The kernel symbol name, the binding order, and the per-thread indexing
// convention are the contract between orchestrating code and the kernels;
// the constants in this package name them.
package kernels

import (
	_ "embed"
	"sync"
)

// Source is the WGSL source of the kernel library.
//
//go:embed bitonic.wgsl
var Source string

// BitonicSort is the entry point name of the bitonic compare-exchange
// kernel.
const BitonicSort = "bitonicSort"

// Binding indices of the bitonicSort kernel.
const (
	BitonicData  = 0 // read/write storage buffer of uint32
	BitonicStage = 1 // uniform uint32, size of the bitonic blocks being merged
	BitonicPass  = 2 // uniform uint32, distance between compared elements
)

// A BindingKind is the address space of a kernel binding.
type BindingKind int

const (
	Storage BindingKind = iota
	Uniform
)

func (k BindingKind) String() string {
	switch k {
	case Storage:
		return "storage"
	case Uniform:
		return "uniform"
	default:
		return "unknown"
	}
}

// A Binding describes one argument slot of a kernel.
type Binding struct {
	Index int
	Kind  BindingKind
}

// Args gives a running kernel access to its bound arguments.
type Args interface {
	// Buffer returns the storage buffer bound at index.
	Buffer(index int) []uint32

	// Uint32 returns the uniform value bound at index.
	Uint32(index int) uint32
}

// A Kernel is the host implementation of an entry point.
type Kernel struct {
	Name     string
	Bindings []Binding

	// Run executes the kernel body for the logical thread gid.
	Run func(args Args, gid int)
}

var (
	mu       sync.RWMutex
	registry = make(map[string]Kernel)
)

// Register adds a host implementation to the library. Register panics if
// a kernel with the same name is already registered.
func Register(k Kernel) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[k.Name]; dup {
		panic("kernels: Register called twice for " + k.Name)
	}
	registry[k.Name] = k
}

// Lookup returns the host implementation registered under name.
func Lookup(name string) (Kernel, bool) {
	mu.RLock()
	defer mu.RUnlock()
	k, ok := registry[name]
	return k, ok
}

func init() {
	Register(Kernel{
		Name: BitonicSort,
		Bindings: []Binding{
			{BitonicData, Storage},
			{BitonicStage, Uniform},
			{BitonicPass, Uniform},
		},
		Run: bitonicSort,
	})
}

// bitonicSort performs the compare-exchange of thread i with its partner
// i^pass. Only the lower index of each pair acts. Bit stage of i selects
// the direction of the pair; equal elements are left in place.
func bitonicSort(args Args, i int) {
	data := args.Buffer(BitonicData)
	if i >= len(data) {
		return
	}
	stage := args.Uint32(BitonicStage)
	pass := args.Uint32(BitonicPass)
	idx := uint32(i)
	partner := idx ^ pass
	if partner <= idx {
		return
	}
	a, b := data[idx], data[partner]
	ascending := idx&stage == 0
	if (ascending && a > b) || (!ascending && a < b) {
		data[idx], data[partner] = b, a
	}
}
