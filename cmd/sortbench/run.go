package main

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/exascience/parsort/config"
	"github.com/exascience/parsort/history"
)

func newRunCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a benchmark and record it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
			run, err := newRunner(cfg, store, logger).Run(cfg.Elements, cfg.Trials, cfg.Seed)
			printRun(cmd.OutOrStdout(), run)
			return err
		},
	}
	flags := cmd.Flags()
	flags.IntVarP(&cfg.Elements, "elements", "n", cfg.Elements, "number of elements to sort")
	flags.IntVar(&cfg.Trials, "trials", cfg.Trials, "number of trials per engine")
	flags.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random input seed")
	return cmd
}

func printRun(w io.Writer, run history.Run) {
	fmt.Fprintf(w, "Run %d: %d elements, seed %d, %d trial(s)\n", run.ID, run.Elements, run.Seed, run.Trials)
	for _, e := range run.Engines {
		if len(e.Durations) == 0 {
			fmt.Fprintf(w, "  %-10s  %s\n", e.Engine, e.Status)
			continue
		}
		fmt.Fprintf(w, "  %-10s  mean %.3fs  median %.3fs  stddev %.3fs", e.Engine, e.Stats.Mean, e.Stats.Median, e.Stats.StdDev)
		if e.Speedup > 0 {
			fmt.Fprintf(w, "  %.1fx", e.Speedup)
		}
		fmt.Fprintf(w, "  digest %016x\n", e.Digest)
	}
	fmt.Fprintf(w, "Status: %s\n", run.Status)
	if run.Snapshot {
		fmt.Fprintf(w, "Input snapshot recorded for run %d\n", run.ID)
	}
}
