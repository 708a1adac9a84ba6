package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/williampepple1/trip-extractor/internal/engine"
	"github.com/williampepple1/trip-extractor/internal/pipeline"
	"github.com/williampepple1/trip-extractor/pkg/models"
)

const (
	notAvailable = "N/A"
	none         = "None"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored reservations sorted by check-in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.store().Load(engine.StoreKey)
			if err != nil {
				return err
			}
			renderTable(cmd.OutOrStdout(), records)
			return nil
		},
	}
}

// renderTable prints records ordered by check-in, earliest first
func renderTable(out io.Writer, records []models.ReservationRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No reservations stored. Run extract first.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Hotel", "Confirmation", "Check-in", "Check-out", "Nights", "Total", "Per night", "Points", "Promo"})

	for _, r := range pipeline.SortByCheckIn(records) {
		nights := notAvailable
		if r.Nights != nil {
			nights = fmt.Sprint(*r.Nights)
		}
		t.AppendRow(table.Row{
			r.HotelName,
			orDefault(r.ConfirmationNumber, notAvailable),
			orDefault(r.CheckInDate, notAvailable),
			orDefault(r.CheckOutDate, notAvailable),
			nights,
			orDefault(r.TotalCost, notAvailable),
			orDefault(r.PricePerNight, notAvailable),
			orDefault(r.PointsUsed, none),
			orDefault(r.PromoCode, none),
		})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d reservations", len(records))})
	t.Render()
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
