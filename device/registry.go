package device

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

// None is the backend name that disables device acceleration.
const None = "none"

// Options configure a device when it is opened.
type Options struct {
	// Units is the number of parallel execution units to use. 0 selects
	// the backend default.
	Units int

	// MaxBufferLen caps the number of elements per buffer. 0 selects the
	// backend default.
	MaxBufferLen int
}

// An Opener opens a device of one backend.
type Opener func(opts Options) (Device, error)

var (
	registryMu     sync.RWMutex
	registry       = make(map[string]Opener)
	defaultName    = "soft"
	defaultOptions Options
)

// Register makes a backend available by name. Register panics if it is
// called twice with the same name, if opener is nil, or if name is None.
func Register(name string, opener Opener) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if opener == nil {
		panic("device: Register opener is nil")
	}
	if name == None {
		panic("device: Register called with reserved name " + None)
	}
	if _, dup := registry[name]; dup {
		panic("device: Register called twice for backend " + name)
	}
	registry[name] = opener
}

// Backends returns a sorted list of the names of the registered backends.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open opens a device of the named backend. It fails with ErrNoDevice if
// name is None, if no such backend is registered, or if the backend cannot
// provide a device.
func Open(name string, opts Options) (Device, error) {
	if name == None || name == "" {
		return nil, errors.Wrap(ErrNoDevice, "device acceleration disabled")
	}
	registryMu.RLock()
	opener, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrNoDevice, "backend %q not registered", name)
	}
	dev, err := opener(opts)
	if err != nil {
		return nil, markf(err, ErrNoDevice, "opening backend %q", name)
	}
	if dev == nil {
		return nil, errors.Wrapf(ErrNoDevice, "backend %q returned no device", name)
	}
	return dev, nil
}

// SetDefault selects the backend and options used by Default.
func SetDefault(name string, opts Options) {
	registryMu.Lock()
	defer registryMu.Unlock()
	defaultName = name
	defaultOptions = opts
}

// DefaultBackend returns the backend name used by Default.
func DefaultBackend() string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return defaultName
}

// Default opens the default device, as selected with SetDefault.
func Default() (Device, error) {
	registryMu.RLock()
	name, opts := defaultName, defaultOptions
	registryMu.RUnlock()
	return Open(name, opts)
}

// A Capability is the outcome of probing a backend.
type Capability struct {
	Backend      string
	Available    bool
	Kind         ErrorKind
	Err          error
	Units        int
	MaxBufferLen int
}

// Probe tries to open a device of the named backend and reports the
// outcome. Probe never fails; an unusable backend is reported with
// Available set to false and Err set to the reason.
func Probe(name string, opts Options) Capability {
	dev, err := Open(name, opts)
	if err != nil {
		return Capability{Backend: name, Kind: Kind(err), Err: err}
	}
	return Capability{
		Backend:      name,
		Available:    true,
		Units:        dev.Units(),
		MaxBufferLen: dev.MaxBufferLen(),
	}
}
