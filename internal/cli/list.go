package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"wpevents/internal/filter"
)

func newListCmd() *cobra.Command {
	var (
		ff             filterFlags
		format         string
		showCategories bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshot events matching the filter flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}

			outFormat := OutputFormat(strings.ToLower(format))
			if outFormat != FormatText && outFormat != FormatJSON {
				return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", format)
			}

			events, fetchedAt, err := loadEvents(cfg)
			if err != nil {
				return err
			}

			if showCategories {
				for _, name := range filter.CategoryNames(events) {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			criteria, err := ff.criteria()
			if err != nil {
				return err
			}
			matched := filter.Apply(events, criteria)

			return WriteEvents(cmd.OutOrStdout(), matched, fetchedAt, outFormat)
		},
	}

	ff.register(cmd)
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&showCategories, "show-categories", false, "Print the distinct category names and exit")

	return cmd
}
