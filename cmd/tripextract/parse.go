package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/williampepple1/trip-extractor/internal/engine"
	tio "github.com/williampepple1/trip-extractor/internal/io"
	"github.com/williampepple1/trip-extractor/internal/pipeline"
	"github.com/williampepple1/trip-extractor/internal/worker"
	"github.com/williampepple1/trip-extractor/pkg/models"
)

func newParseCmd(a *app) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "parse [file-or-url...]",
		Short: "Extract reservations from saved HTML pages or list page URLs",
		Long: `Runs an extraction over every source given as an argument or listed in
io.input_file (one per line, # starts a comment). Sources are processed by a
rate-limited worker pool; URLs are fetched over HTTP with the configured headers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input, _ := cmd.Flags().GetString("input"); input != "" {
				a.cfg.IO.InputFile = input
			}
			if output, _ := cmd.Flags().GetString("output"); output != "" {
				a.cfg.IO.OutputFile = output
			}
			if format, _ := cmd.Flags().GetString("format"); format != "" {
				a.cfg.IO.OutputFormat = format
			}
			if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
				a.cfg.Scraper.Workers = workers
			}

			sources, err := tio.NewSourceReader(&a.cfg.IO).GetSources(args)
			if err != nil {
				return err
			}
			return runParse(cmd.Context(), a, sources, save, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringP("input", "i", "", "File listing sources, one per line")
	cmd.Flags().StringP("output", "o", "", "Export file (default reservations-YYYY-MM-DD.<format>)")
	cmd.Flags().StringP("format", "f", "", "Export format: json or csv")
	cmd.Flags().IntP("workers", "w", 0, "Number of concurrent workers")
	cmd.Flags().BoolVar(&save, "save", false, "Also save the combined result to the store")

	return cmd
}

func runParse(parent context.Context, a *app, sources []string, save bool, out io.Writer) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "Preparing to parse %d sources with %d workers\n", len(sources), a.cfg.Scraper.Workers)

	results := worker.NewPool(a.cfg, sources, a.log).Run(ctx, sources)
	records, failures := combine(out, results)

	path, err := tio.NewResultWriter(&a.cfg.IO).SaveToFile(records)
	if err != nil {
		return err
	}
	if save {
		if err := a.store().Save(ctx, engine.StoreKey, records); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "All sources have been processed. Success: %d, Failures: %d\n", len(results)-failures, failures)
	fmt.Fprintf(out, "%d reservations saved to %s\n", len(records), path)
	return nil
}

// combine reports each result and merges the records of all pages, removing
// stays found on more than one page
func combine(out io.Writer, results []models.PageResult) ([]models.ReservationRecord, int) {
	var records []models.ReservationRecord
	failures := 0
	for _, r := range results {
		if r.Err != "" {
			fmt.Fprintf(out, "Error parsing %s: %s\n", r.Source, r.Err)
			failures++
			continue
		}
		fmt.Fprintf(out, "Parsed %s in %v: %d reservations\n", r.Source, r.Duration, len(r.Records))
		records = append(records, r.Records...)
	}
	return pipeline.Dedupe(records), failures
}
