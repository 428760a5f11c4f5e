package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSort(t *testing.T) {
	before := testutil.ToFloat64(SortElements.WithLabelValues("test"))
	ObserveSort("test", 0.25, 1000)
	ObserveSort("test", 0.5, 24)
	if got := testutil.ToFloat64(SortElements.WithLabelValues("test")) - before; got != 1024 {
		t.Errorf("elements = %v, want 1024", got)
	}
	if n := testutil.CollectAndCount(SortDuration, "parsort_sort_duration_seconds"); n == 0 {
		t.Error("no duration series collected")
	}
}

func TestCounters(t *testing.T) {
	mismatches := testutil.ToFloat64(ValidationMismatches.WithLabelValues("device"))
	unavailable := testutil.ToFloat64(DeviceUnavailable)
	dispatches := testutil.ToFloat64(DeviceDispatches)

	IncMismatch("device")
	IncDeviceUnavailable()
	AddDeviceDispatches(55)

	if got := testutil.ToFloat64(ValidationMismatches.WithLabelValues("device")); got != mismatches+1 {
		t.Errorf("mismatches = %v", got)
	}
	if got := testutil.ToFloat64(DeviceUnavailable); got != unavailable+1 {
		t.Errorf("device unavailable = %v", got)
	}
	if got := testutil.ToFloat64(DeviceDispatches); got != dispatches+55 {
		t.Errorf("dispatches = %v", got)
	}
}
