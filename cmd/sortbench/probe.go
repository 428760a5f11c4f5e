package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/exascience/parsort/bench"
	"github.com/exascience/parsort/config"
	"github.com/exascience/parsort/device"
)

func newProbeCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Report host capabilities and which device backends are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			h := bench.HostInfo()
			fmt.Fprintf(w, "Host: %s/%s, %d CPUs, GOMAXPROCS %d, features [%s]\n",
				h.GOOS, h.GOARCH, h.CPUs, h.GOMAXPROCS, strings.Join(h.Features, " "))
			selected := device.DefaultBackend()
			fmt.Fprintf(w, "Default backend: %s\n", selected)
			for _, name := range append(device.Backends(), device.None) {
				c := device.Probe(name, cfg.DeviceOptions())
				marker := " "
				if name == selected {
					marker = "*"
				}
				if c.Available {
					fmt.Fprintf(w, "%s %-6s available, %d units, max buffer %d elements\n",
						marker, name, c.Units, c.MaxBufferLen)
				} else {
					fmt.Fprintf(w, "%s %-6s unavailable (%s): %v\n", marker, name, c.Kind, c.Err)
				}
			}
			return nil
		},
	}
}
