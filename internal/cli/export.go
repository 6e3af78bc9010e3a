package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"wpevents/internal/export"
	"wpevents/internal/filter"
)

func newExportCmd() *cobra.Command {
	var (
		ff  filterFlags
		out string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered events to an .xlsx workbook or .ics calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}

			events, _, err := loadEvents(cfg)
			if err != nil {
				return err
			}

			criteria, err := ff.criteria()
			if err != nil {
				return err
			}
			matched := filter.Apply(events, criteria)
			if len(matched) == 0 {
				return fmt.Errorf("filter matched no events, nothing to export")
			}

			switch strings.ToLower(filepath.Ext(out)) {
			case ".xlsx":
				err = export.WriteXLSX(out, matched)
			case ".ics":
				err = export.WriteICS(out, matched)
			default:
				return fmt.Errorf("unsupported output extension %q (use .xlsx or .ics)", filepath.Ext(out))
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d events to %s\n", len(matched), out)
			return nil
		},
	}

	ff.register(cmd)
	cmd.Flags().StringVar(&out, "out", "", "Output file, .xlsx or .ics (required)")
	cmd.MarkFlagRequired("out")

	return cmd
}
