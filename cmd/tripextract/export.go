package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/williampepple1/trip-extractor/internal/engine"
	tio "github.com/williampepple1/trip-extractor/internal/io"
	"github.com/williampepple1/trip-extractor/internal/pipeline"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the stored reservations as JSON or CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output, _ := cmd.Flags().GetString("output"); output != "" {
				a.cfg.IO.OutputFile = output
			}
			if format, _ := cmd.Flags().GetString("format"); format != "" {
				a.cfg.IO.OutputFormat = format
			}

			records, err := a.store().Load(engine.StoreKey)
			if err != nil {
				return err
			}
			path, err := tio.NewResultWriter(&a.cfg.IO).SaveToFile(pipeline.SortByCheckIn(records))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d reservations to %s\n", len(records), path)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Export file (default reservations-YYYY-MM-DD.<format>)")
	cmd.Flags().StringP("format", "f", "", "Export format: json or csv")
	return cmd
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored reservations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store().Clear(engine.StoreKey); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Stored reservations cleared")
			return nil
		},
	}
}
