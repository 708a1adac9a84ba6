package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/williampepple1/trip-extractor/internal/engine"
	"github.com/williampepple1/trip-extractor/internal/proxy"
	"github.com/williampepple1/trip-extractor/internal/report"
	"github.com/williampepple1/trip-extractor/internal/scraper"
	"github.com/williampepple1/trip-extractor/pkg/models"
)

type extractOptions struct {
	cdpURL      string
	listURL     string
	headless    bool
	noDrillDown bool
	screenshot  bool
}

func newExtractCmd(a *app) *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract reservations from the live reservations page in Chrome",
		Long: `Opens (or attaches to) Chrome, checks that the account is signed in, goes to the
reservation list, reads every upcoming stay and saves the result to the store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("cdp-url") {
				a.cfg.Browser.CDPURL = opts.cdpURL
			}
			if cmd.Flags().Changed("list-url") {
				a.cfg.Navigation.ListURL = opts.listURL
			}
			if cmd.Flags().Changed("headless") {
				a.cfg.Browser.Headless = opts.headless
			}
			if opts.noDrillDown {
				a.cfg.Extraction.DrillDown = false
			}
			if opts.screenshot {
				a.cfg.Browser.Screenshot = true
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return runExtract(cmd.Context(), a, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.cdpURL, "cdp-url", "", "Attach to a running Chrome at this DevTools URL")
	cmd.Flags().StringVar(&opts.listURL, "list-url", "", "Reservation list URL")
	cmd.Flags().BoolVar(&opts.headless, "headless", false, "Run Chrome headless")
	cmd.Flags().BoolVar(&opts.noDrillDown, "no-drill-down", false, "Only read the list view, never open detail pages")
	cmd.Flags().BoolVar(&opts.screenshot, "screenshot", false, "Save a screenshot when the run fails")

	return cmd
}

func runExtract(parent context.Context, a *app, out io.Writer) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	page, err := scraper.NewBrowserPage(ctx, a.cfg, proxy.NewManager(&a.cfg.Proxies), a.log)
	if err != nil {
		return err
	}
	defer page.Close()

	e := engine.New(a.cfg, page, a.store(), a.log)
	obs := report.NewChannelObserver(256)
	unsubscribe := e.Subscribe(obs)
	defer unsubscribe()

	if ack := e.Start(ctx); !ack.Success {
		return engine.ErrBusy
	}
	defer e.Wait()

	res := follow(out, obs)
	if res.Err != "" {
		return errors.New(res.Err)
	}
	fmt.Fprintf(out, "Saved %d upcoming reservations to %s\n", len(res.Records), a.cfg.IO.StoreFile)
	return nil
}

// follow prints progress until the run outcome arrives
func follow(out io.Writer, obs *report.ChannelObserver) report.Result {
	for {
		select {
		case ev := <-obs.Events():
			printEvent(out, ev)
		case res := <-obs.Done():
			for {
				select {
				case ev := <-obs.Events():
					printEvent(out, ev)
				default:
					return res
				}
			}
		}
	}
}

func printEvent(out io.Writer, ev report.Event) {
	switch {
	case ev.Progress != nil:
		fmt.Fprintf(out, "[%3d%%] %s\n", ev.Progress.Percent, ev.Progress.Text)
	case ev.Debug != nil && ev.Debug.Level != models.DebugInfo:
		fmt.Fprintf(out, "       %s: %s\n", ev.Debug.Level, ev.Debug.Message)
	}
}
