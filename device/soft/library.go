package soft

import (
	"regexp"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/exascience/parsort/device"
	"github.com/exascience/parsort/kernels"
)

var (
	bindingPattern = regexp.MustCompile(
		`@group\(\s*0\s*\)\s*@binding\(\s*(\d+)\s*\)\s*var<\s*(storage|uniform)\b[^>]*>\s*(\w+)\s*:`)
	entryPattern = regexp.MustCompile(
		`@compute\s+@workgroup_size\(\s*(\d+)[^)]*\)\s*fn\s+(\w+)\s*\(`)
)

// An entryPoint is a compute function declared in the library source.
// All module-scope bindings of the source are attributed to it.
type entryPoint struct {
	name          string
	workgroupSize int
	bindings      []kernels.Binding
}

// Name implements the method of the device.Function interface.
func (e *entryPoint) Name() string { return e.name }

func parseLibrary(source string) (map[string]*entryPoint, error) {
	var bindings []kernels.Binding
	seen := make(map[int]bool)
	for _, m := range bindingPattern.FindAllStringSubmatch(source, -1) {
		index, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, errors.Wrapf(err, "binding %s", m[3])
		}
		if seen[index] {
			return nil, errors.Newf("duplicate binding %d", index)
		}
		seen[index] = true
		kind := kernels.Storage
		if m[2] == "uniform" {
			kind = kernels.Uniform
		}
		bindings = append(bindings, kernels.Binding{Index: index, Kind: kind})
	}
	library := make(map[string]*entryPoint)
	for _, m := range entryPattern.FindAllStringSubmatch(source, -1) {
		size, err := strconv.Atoi(m[1])
		if err != nil || size <= 0 {
			return nil, errors.Newf("entry point %s: invalid workgroup size %q", m[2], m[1])
		}
		library[m[2]] = &entryPoint{name: m[2], workgroupSize: size, bindings: bindings}
	}
	return library, nil
}

// Function implements the method of the device.Device interface. It fails
// with device.ErrKernelUnavailable if the library source declares no
// compute entry point with the given name.
func (d *Device) Function(name string) (device.Function, error) {
	e, ok := d.library[name]
	if !ok {
		return nil, errors.Wrapf(device.ErrKernelUnavailable, "soft: no entry point %q in library", name)
	}
	return e, nil
}

type pipeline struct {
	entry  *entryPoint
	kernel kernels.Kernel
}

func (p *pipeline) Function() device.Function { return p.entry }

func (p *pipeline) ThreadsPerGroup() int { return p.entry.workgroupSize }

// NewComputePipeline implements the method of the device.Device interface.
// It binds the entry point to its host implementation, and fails with
// device.ErrPipelineBuildFailed if there is none, or if the bindings the
// implementation expects differ from those the source declares.
func (d *Device) NewComputePipeline(fn device.Function) (device.Pipeline, error) {
	if d.failures&FailPipeline != 0 {
		return nil, errors.Wrap(device.ErrPipelineBuildFailed, "soft: pipeline creation disabled")
	}
	e, ok := fn.(*entryPoint)
	if !ok || d.library[e.name] != e {
		return nil, errors.Wrap(device.ErrPipelineBuildFailed, "soft: function does not belong to this device")
	}
	k, ok := d.lookup(e.name)
	if !ok || k.Run == nil {
		return nil, errors.Wrapf(device.ErrPipelineBuildFailed, "soft: no host implementation for %q", e.name)
	}
	if !sameBindings(e.bindings, k.Bindings) {
		return nil, errors.Wrapf(device.ErrPipelineBuildFailed,
			"soft: %q declares bindings %v, implementation expects %v", e.name, e.bindings, k.Bindings)
	}
	return &pipeline{entry: e, kernel: k}, nil
}

func sameBindings(declared, expected []kernels.Binding) bool {
	if len(declared) != len(expected) {
		return false
	}
	kinds := make(map[int]kernels.BindingKind, len(declared))
	for _, b := range declared {
		kinds[b.Index] = b.Kind
	}
	for _, b := range expected {
		if kind, ok := kinds[b.Index]; !ok || kind != b.Kind {
			return false
		}
	}
	return true
}
