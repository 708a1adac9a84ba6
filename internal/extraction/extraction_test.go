package extraction_test

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
	"github.com/williampepple1/trip-extractor/pkg/models"
)

const listCard = `<div class="reservation-card">
	<h3 class="hotel-name">Courtyard Boston Downtown</h3>
	<p>Confirmation: 83920177</p>
	<p>Check-in: Jun 10, 2099</p>
	<p>Check-out: Jun 13, 2099</p>
	<p>Total: $1,234.50</p>
	<p>$411.50 per night</p>
	<p>Promo code: SUMMER24</p>
	<p>Room: Deluxe King Room</p>
	<p>Redeemed 20,000 points</p>
</div>`

const detailPage = `<html><body>
<header><a href="/logout">Sign out</a><h2>Marriott Bonvoy</h2></header>
<main>
	<h1>The Westin Chicago River North</h1>
	<div class="confirmation-number">Confirmation #: 7712AB90</div>
	<span class="check-in-date">Friday, June 10, 2099</span>
	<span class="check-out-date">Sunday, June 12, 2099</span>
	<p>Room rate: $300.00</p>
	<p>Taxes: $45.10</p>
	<p>Resort fee: $25</p>
	<p>Total: $670.20</p>
	<p>Earn 2,500 points</p>
	<p>Paid with Visa ending in 4242</p>
	<p>Free cancellation until 48 hours before arrival</p>
	<address>320 N Dearborn Street, Chicago, IL 60654</address>
</main>
</body></html>`

var fixedNow = time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

func newExtractor(cfg *config.ExtractionConfig) *extraction.Extractor {
	return extraction.NewExtractor(cfg, logger.NewNop()).WithClock(func() time.Time { return fixedNow })
}

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractBasic(t *testing.T) {
	doc := parse(t, "<html><body>"+listCard+"</body></html>")
	e := newExtractor(&config.Default().Extraction)

	rec, err := e.ExtractBasic(doc.Find(".reservation-card"), "https://example.com/trips")
	require.NoError(t, err)

	assert.Equal(t, "Courtyard Boston Downtown", rec.HotelName)
	assert.Equal(t, "83920177", rec.ConfirmationNumber)
	assert.Equal(t, "2099-06-10", rec.CheckInDate)
	assert.Equal(t, "2099-06-13", rec.CheckOutDate)
	require.NotNil(t, rec.Nights)
	assert.Equal(t, 3, *rec.Nights)
	assert.Equal(t, "$1234.50", rec.TotalCost)
	assert.Equal(t, "$411.50", rec.PricePerNight)
	assert.Equal(t, "SUMMER24", rec.PromoCode)
	assert.Equal(t, "Deluxe King Room", rec.RoomType)
	assert.Equal(t, "20000", rec.PointsUsed)
	assert.Equal(t, "https://example.com/trips", rec.Source)
	assert.Equal(t, fixedNow, rec.ExtractedAt)
	assert.False(t, rec.DetailedPage)

	assert.Empty(t, rec.Taxes, "detail-only fields stay empty in list view")
	assert.Empty(t, rec.CancellationPolicy)
}

func TestExtractBasic_ValuesSplitAcrossInlineNodes(t *testing.T) {
	doc := parse(t, `<html><body><div class="trip">
		<h3 class="hotel-name">The <b>W</b>estin Boston</h3>
		<p>Total: <span>$</span><span>1,234</span><span>.50</span></p>
	</div></body></html>`)
	e := newExtractor(&config.Default().Extraction)

	rec, err := e.ExtractBasic(doc.Find(".trip"), "src")
	require.NoError(t, err)

	assert.Equal(t, "The Westin Boston", rec.HotelName)
	assert.Equal(t, "$1234.50", rec.TotalCost)
}

func TestExtractBasic_EmptyRegion(t *testing.T) {
	doc := parse(t, `<html><body><div class="reservation-card">   </div></body></html>`)
	e := newExtractor(&config.Default().Extraction)

	_, err := e.ExtractBasic(doc.Find(".reservation-card"), "src")
	assert.ErrorIs(t, err, extraction.ErrEmptyRegion)

	_, err = e.ExtractBasic(doc.Find(".missing"), "src")
	assert.ErrorIs(t, err, extraction.ErrEmptyRegion)
}

func TestExtractBasic_SingleDateIsNotEnough(t *testing.T) {
	doc := parse(t, `<html><body><div class="trip"><h3>Hotel Solo</h3><p>Arriving Jun 10, 2099</p></div></body></html>`)
	e := newExtractor(&config.Default().Extraction)

	rec, err := e.ExtractBasic(doc.Find(".trip"), "src")
	require.NoError(t, err)

	assert.Empty(t, rec.CheckInDate)
	assert.Empty(t, rec.CheckOutDate)
	assert.Nil(t, rec.Nights)
}

func TestExtractDetailed(t *testing.T) {
	e := newExtractor(&config.Default().Extraction)

	rec := e.ExtractDetailed(parse(t, detailPage), "https://example.com/detail")

	assert.True(t, rec.DetailedPage)
	assert.Equal(t, "The Westin Chicago River North", rec.HotelName, "lookups are scoped to main")
	assert.Equal(t, "7712AB90", rec.ConfirmationNumber)
	assert.Equal(t, "2099-06-10", rec.CheckInDate)
	assert.Equal(t, "2099-06-12", rec.CheckOutDate)
	require.NotNil(t, rec.Nights)
	assert.Equal(t, 2, *rec.Nights)
	assert.Equal(t, "$300.00", rec.BaseRate)
	assert.Equal(t, "$45.10", rec.Taxes)
	assert.Equal(t, "$25.00", rec.Fees)
	assert.Equal(t, "$670.20", rec.TotalCost)
	assert.Equal(t, "2500", rec.PointsEarned)
	assert.Empty(t, rec.PointsUsed)
	assert.Equal(t, "Visa ending in 4242", rec.PaymentMethod)
	assert.Equal(t, extraction.CancellationFree, rec.CancellationPolicy)
	assert.Equal(t, "320 N Dearborn Street, Chicago, IL 60654", rec.Address)
}

func TestCancellationCategories(t *testing.T) {
	chain := newExtractor(&config.Default().Extraction).Chain(extraction.FieldCancellationPolicy)

	tests := []struct {
		text, want string
	}{
		{"This rate is non-refundable.", extraction.CancellationNonRefund},
		{"A cancellation fee of one night will be charged", extraction.CancellationFeeApplies},
		{"Enjoy free cancellation until Jun 1", extraction.CancellationFree},
		{"No policy text", ""},
	}
	for _, tt := range tests {
		doc := parse(t, "<html><body><p>"+tt.text+"</p></body></html>")
		assert.Equal(t, tt.want, chain.Value(doc.Find("body")), tt.text)
	}
}

func TestNewExtractor_ConfiguredStrategiesRunFirst(t *testing.T) {
	cfg := &config.ExtractionConfig{
		Selectors: map[string][]string{
			"hotelName": {".stay-title"},
			"unknown":   {".ignored"},
		},
		Regex: map[string][]string{
			"promoCode": {"([", `Offer:\s*([A-Z]+)`},
		},
	}
	e := newExtractor(cfg)

	doc := parse(t, `<html><body><div class="trip">
		<h3>Generic Heading</h3>
		<span class="stay-title">Aloft Austin</span>
		<p>Offer: WINTER</p>
		<p>Promo: OTHER1</p>
	</div></body></html>`)

	rec, err := e.ExtractBasic(doc.Find(".trip"), "src")
	require.NoError(t, err)
	assert.Equal(t, "Aloft Austin", rec.HotelName)
	assert.Equal(t, "WINTER", rec.PromoCode)
}

func TestHotelNameFromText(t *testing.T) {
	doc := parse(t, `<html><body><div class="trip"><p>Stay at Hotel Example, check-in Friday</p></div></body></html>`)
	e := newExtractor(&config.Default().Extraction)

	rec, err := e.ExtractBasic(doc.Find(".trip"), "src")
	require.NoError(t, err)
	assert.Equal(t, "Hotel Example", rec.HotelName)
}

func TestChain_FirstNonEmptyWins(t *testing.T) {
	empty := extraction.Strategy{Name: "empty", Fn: func(*goquery.Selection) (string, bool) { return "", true }}
	miss := extraction.Strategy{Name: "miss", Fn: func(*goquery.Selection) (string, bool) { return "x", false }}
	hit := extraction.Strategy{Name: "hit", Fn: func(*goquery.Selection) (string, bool) { return "value", true }}
	never := extraction.Strategy{Name: "never", Fn: func(*goquery.Selection) (string, bool) {
		t.Fatal("strategies after a hit must not run")
		return "", false
	}}

	v, name, ok := extraction.Chain{empty, miss, hit, never}.First(nil)
	assert.True(t, ok)
	assert.Equal(t, "value", v)
	assert.Equal(t, "hit", name)

	_, _, ok = extraction.Chain{empty, miss}.First(nil)
	assert.False(t, ok)
}

func TestPattern_Match(t *testing.T) {
	p := extraction.P(`Code:\s*([A-Z]+)`, 1)
	v, ok := p.Match("Code: ABC")
	assert.True(t, ok)
	assert.Equal(t, "ABC", v)

	_, ok = p.Match("nothing")
	assert.False(t, ok)

	v, ok = extraction.Category(`(?i)refundable`, "Refundable").Match("Fully REFUNDABLE")
	assert.True(t, ok)
	assert.Equal(t, "Refundable", v)
}

func TestMerge(t *testing.T) {
	three := 3
	basic := models.ReservationRecord{
		HotelName:          "List Name",
		ConfirmationNumber: "111",
		CheckInDate:        "2099-06-10",
		CheckOutDate:       "2099-06-13",
		Nights:             &three,
		TotalCost:          "$100.00",
		Source:             "list",
	}
	detail := models.ReservationRecord{
		HotelName:    "Detail Name",
		CheckOutDate: "2099-06-14",
		Taxes:        "$10.00",
		ExtractedAt:  fixedNow,
		DetailedPage: true,
	}

	merged := extraction.Merge(detail, basic)

	assert.Equal(t, "Detail Name", merged.HotelName)
	assert.Equal(t, "111", merged.ConfirmationNumber)
	assert.Equal(t, "$100.00", merged.TotalCost)
	assert.Equal(t, "$10.00", merged.Taxes)
	assert.Equal(t, "list", merged.Source)
	assert.Equal(t, fixedNow, merged.ExtractedAt)
	assert.True(t, merged.DetailedPage)
	require.NotNil(t, merged.Nights)
	assert.Equal(t, 4, *merged.Nights)
}
