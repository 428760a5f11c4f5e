package device_test

import (
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/exascience/parsort/device"
)

func init() {
	device.Register("failing", func(device.Options) (device.Device, error) {
		return nil, errors.New("driver not loaded")
	})
	device.Register("nil", func(device.Options) (device.Device, error) {
		return nil, nil
	})
	device.Register("fake", func(opts device.Options) (device.Device, error) {
		return fakeDevice{units: opts.Units}, nil
	})
}

// fakeDevice only answers the queries Probe makes.
type fakeDevice struct {
	device.Device
	units int
}

func (d fakeDevice) Units() int        { return d.units }
func (d fakeDevice) MaxBufferLen() int { return 64 }

func TestOpenNoDevice(t *testing.T) {
	for _, name := range []string{device.None, "", "unregistered", "failing", "nil"} {
		_, err := device.Open(name, device.Options{})
		if !errors.Is(err, device.ErrNoDevice) {
			t.Errorf("Open(%q) error = %v, want ErrNoDevice", name, err)
		}
		if kind := device.Kind(err); kind != device.KindNoDevice {
			t.Errorf("Kind(Open(%q)) = %v", name, kind)
		}
	}
}

func TestOpenFailingKeepsCause(t *testing.T) {
	_, err := device.Open("failing", device.Options{})
	if err == nil || !errors.Is(err, device.ErrNoDevice) {
		t.Fatalf("Open() error = %v", err)
	}
	if msg := err.Error(); msg != `opening backend "failing": driver not loaded` {
		t.Errorf("Error() = %q", msg)
	}
}

func TestProbe(t *testing.T) {
	c := device.Probe("fake", device.Options{Units: 7})
	if !c.Available || c.Units != 7 || c.MaxBufferLen != 64 || c.Kind != device.KindNone {
		t.Errorf("Probe(fake) = %+v", c)
	}
	c = device.Probe(device.None, device.Options{})
	if c.Available || c.Kind != device.KindNoDevice || c.Err == nil {
		t.Errorf("Probe(none) = %+v", c)
	}
}

func TestDefault(t *testing.T) {
	name := device.DefaultBackend()
	defer device.SetDefault(name, device.Options{})
	device.SetDefault("fake", device.Options{Units: 2})
	dev, err := device.Default()
	if err != nil {
		t.Fatal(err)
	}
	if dev.Units() != 2 {
		t.Errorf("Units() = %d", dev.Units())
	}
	device.SetDefault(device.None, device.Options{})
	if _, err := device.Default(); !errors.Is(err, device.ErrNoDevice) {
		t.Errorf("Default() error = %v", err)
	}
}

func TestBackends(t *testing.T) {
	names := device.Backends()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("Backends() not sorted: %v", names)
		}
	}
	found := false
	for _, name := range names {
		found = found || name == "fake"
	}
	if !found {
		t.Errorf("Backends() = %v, missing fake", names)
	}
}

func TestRegisterPanics(t *testing.T) {
	for _, name := range []string{"fake", device.None} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Register(%q) did not panic", name)
				}
			}()
			device.Register(name, func(device.Options) (device.Device, error) { return nil, nil })
		}()
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		kind device.ErrorKind
	}{
		{nil, device.KindNone},
		{errors.New("other"), device.KindOther},
		{errors.Wrap(device.ErrKernelUnavailable, "ctx"), device.KindKernelUnavailable},
		{device.Mark(errors.New("oom"), device.ErrBufferAllocationFailed, "alloc"), device.KindBufferAllocationFailed},
		{device.Mark(errors.New("x"), device.ErrPipelineBuildFailed, "build"), device.KindPipelineBuildFailed},
		{device.ErrCommandQueueUnavailable, device.KindCommandQueueUnavailable},
	}
	for _, test := range tests {
		if got := device.Kind(test.err); got != test.kind {
			t.Errorf("Kind(%v) = %v, want %v", test.err, got, test.kind)
		}
	}
	if device.KindBufferAllocationFailed.String() != "BufferAllocationFailed" {
		t.Error("unexpected ErrorKind string")
	}
}
