// Command sortbench benchmarks the sequential, parallel, and device
// sorting engines against each other, and records the runs.
//
// Settings are read from a .env file and SORTBENCH_* environment
// variables; command line flags override them.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/exascience/parsort/bench"
	"github.com/exascience/parsort/bitonic"
	"github.com/exascience/parsort/config"
	"github.com/exascience/parsort/device"
	_ "github.com/exascience/parsort/device/soft"
	"github.com/exascience/parsort/history"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}
	if err := newRootCommand(&cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "sortbench",
		Short:        "Benchmark sequential, parallel, and device sorting of uint32 arrays",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			device.SetDefault(cfg.Device, cfg.DeviceOptions())
			return nil
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&cfg.Device, "device", cfg.Device, "compute device backend (\"none\" disables the device engine)")
	flags.IntVar(&cfg.Units, "units", cfg.Units, "device execution units (0 = GOMAXPROCS)")
	flags.StringVar(&cfg.HistoryBackend, "history-backend", cfg.HistoryBackend, "history store: bolt, pebble, badger, memory, or none")
	flags.StringVar(&cfg.HistoryPath, "history-path", cfg.HistoryPath, "history store file or directory")

	root.AddCommand(
		newRunCommand(cfg),
		newProbeCommand(cfg),
		newHistoryCommand(cfg),
		newServeCommand(cfg),
	)
	return root
}

func openStore(cfg *config.Config) (history.Store, error) {
	return history.Open(cfg.HistoryBackend, cfg.HistoryPath)
}

func newRunner(cfg *config.Config, store history.Store, logger *log.Logger) *bench.Runner {
	return &bench.Runner{
		Logger:     logger,
		Store:      store,
		NewSorter:  bitonic.NewDefault,
		DeviceName: cfg.Device,
	}
}
