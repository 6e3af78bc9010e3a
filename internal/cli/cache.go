package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"wpevents/internal/cache"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local snapshot",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the snapshot artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			if err := cache.New(cfg.Cache.Dir).Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Snapshot cleared.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the snapshot directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cache.New(cfg.Cache.Dir).Dir())
			return nil
		},
	})

	return cmd
}
