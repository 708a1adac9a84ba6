package discovery_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williampepple1/trip-extractor/internal/config"
	"github.com/williampepple1/trip-extractor/internal/discovery"
	"github.com/williampepple1/trip-extractor/internal/dom"
	"github.com/williampepple1/trip-extractor/pkg/models"
)

type debugRecorder struct {
	messages []string
}

func (d *debugRecorder) Debug(_ models.DebugLevel, msg string) {
	d.messages = append(d.messages, msg)
}

func card(tag, class, hotel string) string {
	return fmt.Sprintf(`<%[1]s class="%[2]s">
		<h3 class="hotel-name">%[3]s</h3>
		<p>Confirmation: ABC12345</p>
		<p>Check-in: Jun 10, 2099</p>
		<p>Check-out: Jun 12, 2099</p>
		<p>Total: $450.00 for your stay, 2 nights, room and taxes included.</p>
	</%[1]s>`, tag, class, hotel)
}

func parse(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + body + "</body></html>"))
	require.NoError(t, err)
	return doc
}

func newEngine(rec *debugRecorder) *discovery.Engine {
	cfg := config.Default()
	return discovery.New(&cfg.Discovery, cfg.Extraction.Brands, rec)
}

func hotelNames(regions []discovery.Region) []string {
	names := make([]string, len(regions))
	for i, r := range regions {
		names[i] = strings.TrimSpace(r.Selection.Find(".hotel-name").Text())
	}
	return names
}

func TestFindCandidateRegions_Structural(t *testing.T) {
	doc := parse(t, `<main>`+
		card("div", "reservation-card", "Hotel Alpha")+
		card("div", "reservation-card", "Hotel Beta")+
		card("div", "reservation-card", "Hotel Gamma")+
		`</main>`)

	regions, err := newEngine(&debugRecorder{}).FindCandidateRegions(doc)
	require.NoError(t, err)

	require.Len(t, regions, 3)
	assert.Equal(t, []string{"Hotel Alpha", "Hotel Beta", "Hotel Gamma"}, hotelNames(regions))
	for i, r := range regions {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, discovery.StrategyStructural, r.Strategy)
		assert.Equal(t, 1, doc.Find(r.Path).Length(), "path %s must address one node", r.Path)
	}
}

func TestFindCandidateRegions_StructuralDropsWrappers(t *testing.T) {
	doc := parse(t, `<div class="trip-list">`+
		card("div", "trip-item", "Hotel Alpha")+
		card("div", "trip-item", "Hotel Beta")+
		`</div>`)

	regions, err := newEngine(&debugRecorder{}).FindCandidateRegions(doc)
	require.NoError(t, err)

	assert.Equal(t, []string{"Hotel Alpha", "Hotel Beta"}, hotelNames(regions))
}

func TestFindCandidateRegions_StructuralRespectsTextBounds(t *testing.T) {
	doc := parse(t, `<div class="reservation-card">tiny</div>
		<ul>`+card("li", "stay", "Hotel Alpha")+card("li", "stay", "Hotel Beta")+`</ul>`)

	regions, err := newEngine(&debugRecorder{}).FindCandidateRegions(doc)
	require.NoError(t, err)

	require.Len(t, regions, 2)
	assert.Equal(t, discovery.StrategySimilarity, regions[0].Strategy)
}

func TestFindCandidateRegions_Similarity(t *testing.T) {
	doc := parse(t, `<ul>`+
		card("li", "stay upcoming", "Hotel Alpha")+
		card("li", "stay", "Hotel Beta")+
		card("li", "stay", "Hotel Gamma")+
		`</ul><ul><li>Home</li><li>Account</li></ul>`)

	regions, err := newEngine(&debugRecorder{}).FindCandidateRegions(doc)
	require.NoError(t, err)

	assert.Equal(t, []string{"Hotel Alpha", "Hotel Beta", "Hotel Gamma"}, hotelNames(regions))
	assert.Equal(t, discovery.StrategySimilarity, regions[0].Strategy)
}

func TestFindCandidateRegions_FreeText(t *testing.T) {
	doc := parse(t, `<div><p>Your stay at Hotel Example starts with check-in on Friday, 2 nights.</p></div>`)

	regions, err := newEngine(&debugRecorder{}).FindCandidateRegions(doc)
	require.NoError(t, err)

	require.NotEmpty(t, regions)
	assert.Equal(t, discovery.StrategyFreeText, regions[0].Strategy)
	assert.Equal(t, "p", goquery.NodeName(regions[0].Selection))
}

func TestFindCandidateRegions_FreeTextBrandAndCap(t *testing.T) {
	var b strings.Builder
	for i := range 12 {
		fmt.Fprintf(&b, `<p>Sheraton Stay %d, reservation held.</p>`, i)
	}

	regions, err := newEngine(&debugRecorder{}).FindCandidateRegions(parse(t, b.String()))
	require.NoError(t, err)
	assert.Len(t, regions, 10)
}

func TestFindCandidateRegions_Tabular(t *testing.T) {
	doc := parse(t, `<table>
		<tr><td>Hotel Alpha</td><td>Check-in Jun 1, 2099</td></tr>
		<tr><td>Hotel Beta</td><td>Check-in Jul 1, 2099</td></tr>
		<tr><td>Total</td><td>$0</td></tr>
	</table>`)

	regions, err := newEngine(&debugRecorder{}).FindCandidateRegions(doc)
	require.NoError(t, err)

	require.Len(t, regions, 2)
	assert.Equal(t, discovery.StrategyTabular, regions[0].Strategy)
	assert.Equal(t, "tr", goquery.NodeName(regions[0].Selection))
	assert.Contains(t, dom.CollapsedText(regions[1].Selection), "Hotel Beta")
}

func TestFindCandidateRegions_NothingFound(t *testing.T) {
	rec := &debugRecorder{}
	regions, err := newEngine(rec).FindCandidateRegions(parse(t, `<p>Nothing to see here.</p>`))

	assert.Empty(t, regions)
	assert.ErrorIs(t, err, discovery.ErrNoReservations)
	assert.Contains(t, rec.messages, `Elements containing "reservation": 0`)
}

func TestSimilarity(t *testing.T) {
	doc := parse(t, `
		<div id="a" class="x y"><span></span><span></span></div>
		<div id="b" class="x y"><span></span><span></span></div>
		<li id="c" class="z"></li>`)

	a, b, c := doc.Find("#a"), doc.Find("#b"), doc.Find("#c")
	assert.InDelta(t, 1.0, discovery.Similarity(a, b), 1e-9)
	assert.InDelta(t, 0.0, discovery.Similarity(a, c), 1e-9)
}
