package pipeline_test

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williampepple1/trip-extractor/internal/config"
	"github.com/williampepple1/trip-extractor/internal/extraction"
	"github.com/williampepple1/trip-extractor/internal/logger"
	"github.com/williampepple1/trip-extractor/internal/pipeline"
	"github.com/williampepple1/trip-extractor/pkg/models"
)

var now = time.Date(2030, 6, 15, 18, 30, 0, 0, time.Local)

func newPipeline() *pipeline.Pipeline {
	return pipeline.New().WithClock(func() time.Time { return now })
}

func names(records []models.ReservationRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.HotelName
	}
	return out
}

func TestProcess(t *testing.T) {
	records := []models.ReservationRecord{
		{HotelName: "Past", CheckInDate: "2030-06-14", CheckOutDate: "2030-06-16"},
		{HotelName: "", CheckInDate: "2030-07-01"},
		{HotelName: "Today", CheckInDate: "2030-06-15", CheckOutDate: "2030-06-17", TotalCost: "$301.00"},
		{HotelName: "Unknown date", CheckInDate: "soon"},
		{HotelName: "Future", ConfirmationNumber: "ABC123", CheckInDate: "2031-01-01"},
		{HotelName: "Future duplicate", ConfirmationNumber: "abc123", CheckInDate: "2031-01-01"},
	}

	out := newPipeline().Process(records)

	assert.Equal(t, []string{"Today", "Unknown date", "Future"}, names(out))
	for _, r := range out {
		assert.NotEmpty(t, r.HotelName)
	}

	require.NotNil(t, out[0].Nights)
	assert.Equal(t, 2, *out[0].Nights)
	assert.Equal(t, "$150.50", out[0].PricePerNight)
	assert.Nil(t, out[1].Nights)
}

func TestDerive(t *testing.T) {
	rec := pipeline.Derive(models.ReservationRecord{
		CheckInDate:  "2099-06-10",
		CheckOutDate: "2099-06-13",
		TotalCost:    "€100.00",
	})
	require.NotNil(t, rec.Nights)
	assert.Equal(t, 3, *rec.Nights)
	assert.Equal(t, "€33.33", rec.PricePerNight)

	rec = pipeline.Derive(models.ReservationRecord{
		CheckInDate:   "2099-06-13",
		CheckOutDate:  "2099-06-10",
		TotalCost:     "$100.00",
		PricePerNight: "",
	})
	require.NotNil(t, rec.Nights)
	assert.Equal(t, -3, *rec.Nights, "negative nights are kept")
	assert.Empty(t, rec.PricePerNight, "no back-computation without positive nights")

	rec = pipeline.Derive(models.ReservationRecord{
		CheckInDate:   "2099-06-10",
		CheckOutDate:  "2099-06-12",
		TotalCost:     "$100.00",
		PricePerNight: "$80.00",
	})
	assert.Equal(t, "$80.00", rec.PricePerNight, "extracted per-night wins")
}

func TestFilterUpcoming_Idempotent(t *testing.T) {
	p := newPipeline()
	records := []models.ReservationRecord{
		{HotelName: "A", CheckInDate: "2001-01-01"},
		{HotelName: "B", CheckInDate: "2099-01-01"},
		{HotelName: "C"},
		{HotelName: "D", CheckInDate: "Jun 15, 2030"},
	}

	once := p.FilterUpcoming(records)
	twice := p.FilterUpcoming(once)

	assert.Equal(t, []string{"B", "C", "D"}, names(once))
	assert.Equal(t, once, twice)
}

func TestDedupe_WithoutConfirmation(t *testing.T) {
	records := []models.ReservationRecord{
		{HotelName: "Aloft", CheckInDate: "2099-01-01", CheckOutDate: "2099-01-02", TotalCost: "$1.00"},
		{HotelName: "aloft ", CheckInDate: "2099-01-01", CheckOutDate: "2099-01-02", TotalCost: "$2.00"},
		{HotelName: "Aloft", CheckInDate: "2099-02-01", CheckOutDate: "2099-02-02"},
	}

	out := pipeline.Dedupe(records)
	require.Len(t, out, 2)
	assert.Equal(t, "$1.00", out[0].TotalCost)
}

func TestDedupe_UndatedStaysAreKept(t *testing.T) {
	records := []models.ReservationRecord{
		{HotelName: "Aloft Austin", TotalCost: "$100.00"},
		{HotelName: "Aloft Austin", TotalCost: "$200.00"},
		{HotelName: "Aloft Austin", ConfirmationNumber: "X1"},
		{HotelName: "Aloft Austin", ConfirmationNumber: "x1"},
	}

	out := pipeline.Dedupe(records)
	require.Len(t, out, 3)
	assert.Equal(t, "$100.00", out[0].TotalCost)
	assert.Equal(t, "$200.00", out[1].TotalCost)
	assert.Equal(t, "X1", out[2].ConfirmationNumber)
}

func TestDerive_NightsCountIsNotAPrice(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body><div class="trip">
		<h3 class="hotel-name">Hotel Alpha</h3>
		<p>Check-in: Jun 10, 2099</p>
		<p>Check-out: Jun 13, 2099</p>
		<span data-testid="num-nights">3 nights</span>
		<p>Total: $450.00</p>
	</div></body></html>`))
	require.NoError(t, err)

	rec, err := extraction.NewExtractor(&config.Default().Extraction, logger.NewNop()).ExtractBasic(doc.Find(".trip"), "src")
	require.NoError(t, err)
	assert.Empty(t, rec.PricePerNight)

	rec = pipeline.Derive(rec)
	require.NotNil(t, rec.Nights)
	assert.Equal(t, 3, *rec.Nights)
	assert.Equal(t, "$450.00", rec.TotalCost)
	assert.Equal(t, "$150.00", rec.PricePerNight)
}

func TestSortByCheckIn(t *testing.T) {
	records := []models.ReservationRecord{
		{HotelName: "Later", CheckInDate: "2099-05-01"},
		{HotelName: "Missing 1"},
		{HotelName: "Sooner", CheckInDate: "2099-01-01"},
		{HotelName: "Missing 2", CheckInDate: "TBD"},
	}

	sorted := pipeline.SortByCheckIn(records)

	assert.Equal(t, []string{"Missing 1", "Missing 2", "Sooner", "Later"}, names(sorted))
	assert.Equal(t, "Later", records[0].HotelName, "input is not modified")
}
