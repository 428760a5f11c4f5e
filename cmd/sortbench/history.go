package main

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/exascience/parsort/config"
)

func newHistoryCommand(cfg *config.Config) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			runs, err := store.List(limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, run := range runs {
				fmt.Fprintf(w, "%d  %s  %9d elements  %s\n",
					run.ID, run.Time.Format("2006-01-02 15:04:05"), run.Elements, run.Status)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list (0 = all)")
	cmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Show a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return errors.Wrapf(err, "invalid run ID %q", args[0])
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			run, err := store.Get(id)
			if err != nil {
				return err
			}
			printRun(cmd.OutOrStdout(), run)
			return nil
		},
	})
	return cmd
}
