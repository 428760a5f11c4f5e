// Package config loads the benchmark configuration from the environment.
//
// Load reads an optional .env file, then SORTBENCH_* variables. Command
// line flags override the loaded values; see cmd/sortbench.
package config

import (
	"log"
	"os"
	"slices"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"

	"github.com/exascience/parsort/device"
	"github.com/exascience/parsort/history"
)

// Defaults.
const (
	DefaultElements       = 2_000_000
	DefaultTrials         = 1
	DefaultSeed           = 42
	DefaultDevice         = "soft"
	DefaultHistoryBackend = history.Bolt
	DefaultHistoryPath    = "sortbench.db"
	DefaultMetricsAddr    = ":9090"
)

// Config holds the benchmark settings.
type Config struct {
	Elements       int
	Trials         int
	Seed           uint64
	Device         string
	Units          int
	HistoryBackend string
	HistoryPath    string
	MetricsAddr    string
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Elements:       DefaultElements,
		Trials:         DefaultTrials,
		Seed:           DefaultSeed,
		Device:         DefaultDevice,
		HistoryBackend: DefaultHistoryBackend,
		HistoryPath:    DefaultHistoryPath,
		MetricsAddr:    DefaultMetricsAddr,
	}
}

// Load returns the configuration from the environment, starting from
// Default. A missing .env file is not an error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv returns the configuration from the variables that lookup
// reports, starting from Default.
func FromEnv(lookup func(key string) (string, bool)) (Config, error) {
	c := Default()
	getEnv := func(key, fallback string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return fallback
	}
	var err error
	if c.Elements, err = strconv.Atoi(getEnv("SORTBENCH_ELEMENTS", strconv.Itoa(c.Elements))); err != nil {
		return c, errors.Wrap(err, "SORTBENCH_ELEMENTS")
	}
	if c.Trials, err = strconv.Atoi(getEnv("SORTBENCH_TRIALS", strconv.Itoa(c.Trials))); err != nil {
		return c, errors.Wrap(err, "SORTBENCH_TRIALS")
	}
	if c.Seed, err = strconv.ParseUint(getEnv("SORTBENCH_SEED", strconv.FormatUint(c.Seed, 10)), 10, 64); err != nil {
		return c, errors.Wrap(err, "SORTBENCH_SEED")
	}
	if c.Units, err = strconv.Atoi(getEnv("SORTBENCH_UNITS", strconv.Itoa(c.Units))); err != nil {
		return c, errors.Wrap(err, "SORTBENCH_UNITS")
	}
	c.Device = getEnv("SORTBENCH_DEVICE", c.Device)
	c.HistoryBackend = getEnv("SORTBENCH_HISTORY_BACKEND", c.HistoryBackend)
	c.HistoryPath = getEnv("SORTBENCH_HISTORY_PATH", c.HistoryPath)
	c.MetricsAddr = getEnv("SORTBENCH_METRICS_ADDR", c.MetricsAddr)
	return c, c.Validate()
}

// Validate reports the first invalid setting. Device names are not
// checked: an unknown device is reported by the benchmark as unavailable.
func (c Config) Validate() error {
	switch {
	case c.Elements < 0:
		return errors.Newf("config: negative element count %d", c.Elements)
	case c.Trials < 1:
		return errors.Newf("config: trial count %d is less than 1", c.Trials)
	case c.Units < 0:
		return errors.Newf("config: negative unit count %d", c.Units)
	case !slices.Contains(history.Backends, c.HistoryBackend):
		return errors.Newf("config: unknown history backend %q", c.HistoryBackend)
	}
	return nil
}

// DeviceOptions returns the options for opening the configured device.
func (c Config) DeviceOptions() device.Options {
	return device.Options{Units: c.Units}
}
