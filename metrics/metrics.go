// Package metrics exports benchmark observations to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SortDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "parsort_sort_duration_seconds",
		Help:    "Sort duration in seconds by engine",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2.0, 20),
	}, []string{"engine"})

	SortElements = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parsort_sort_elements",
		Help: "Total number of elements sorted by engine",
	}, []string{"engine"})

	ValidationMismatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "parsort_validation_mismatch_total",
		Help: "Number of outputs that differed from the sequential baseline by engine",
	}, []string{"engine"})

	DeviceUnavailable = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parsort_device_unavailable_total",
		Help: "Number of runs in which no compute device could be used",
	})

	DeviceDispatches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "parsort_device_dispatches_total",
		Help: "Number of kernel dispatches submitted to compute devices",
	})
)

func init() {
	prometheus.MustRegister(SortDuration)
	prometheus.MustRegister(SortElements)
	prometheus.MustRegister(ValidationMismatches)
	prometheus.MustRegister(DeviceUnavailable)
	prometheus.MustRegister(DeviceDispatches)
}

// ObserveSort records one timed sort of the given number of elements by engine.
func ObserveSort(engine string, seconds float64, elements int) {
	SortDuration.WithLabelValues(engine).Observe(seconds)
	SortElements.WithLabelValues(engine).Add(float64(elements))
}

// IncMismatch counts a result of engine that failed validation.
func IncMismatch(engine string) {
	ValidationMismatches.WithLabelValues(engine).Inc()
}

// IncDeviceUnavailable counts a run whose device engine could not be set up.
func IncDeviceUnavailable() {
	DeviceUnavailable.Inc()
}

// AddDeviceDispatches adds n kernel dispatches to the device total.
func AddDeviceDispatches(n int) {
	DeviceDispatches.Add(float64(n))
}
