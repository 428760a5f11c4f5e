package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func lookupIn(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	c, err := FromEnv(lookupIn(nil))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), c); diff != "" {
		t.Errorf("FromEnv() mismatch (-want +got):\n%s", diff)
	}
}

func TestFromEnv(t *testing.T) {
	c, err := FromEnv(lookupIn(map[string]string{
		"SORTBENCH_ELEMENTS":        "1000",
		"SORTBENCH_TRIALS":          "5",
		"SORTBENCH_SEED":            "9",
		"SORTBENCH_DEVICE":          "none",
		"SORTBENCH_UNITS":           "4",
		"SORTBENCH_HISTORY_BACKEND": "pebble",
		"SORTBENCH_HISTORY_PATH":    "/tmp/h",
		"SORTBENCH_METRICS_ADDR":    ":8080",
	}))
	if err != nil {
		t.Fatal(err)
	}
	want := Config{
		Elements:       1000,
		Trials:         5,
		Seed:           9,
		Device:         "none",
		Units:          4,
		HistoryBackend: "pebble",
		HistoryPath:    "/tmp/h",
		MetricsAddr:    ":8080",
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("FromEnv() mismatch (-want +got):\n%s", diff)
	}
	if opts := c.DeviceOptions(); opts.Units != 4 {
		t.Errorf("DeviceOptions() = %+v", opts)
	}
}

func TestFromEnvErrors(t *testing.T) {
	for _, env := range []map[string]string{
		{"SORTBENCH_ELEMENTS": "many"},
		{"SORTBENCH_ELEMENTS": "-1"},
		{"SORTBENCH_TRIALS": "0"},
		{"SORTBENCH_SEED": "-3"},
		{"SORTBENCH_UNITS": "-2"},
		{"SORTBENCH_HISTORY_BACKEND": "sqlite"},
	} {
		if _, err := FromEnv(lookupIn(env)); err == nil {
			t.Errorf("FromEnv(%v) succeeded", env)
		}
	}
}
