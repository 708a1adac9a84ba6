package dom_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williampepple1/trip-extractor/internal/dom"
)

func parse(t *testing.T, src string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

func TestInnerText_BlocksBreakLines(t *testing.T) {
	doc := parse(t, `<div class="card"><h3>Hotel Alpha</h3><p>Check-in:   Oct 3, 2099</p><span>2</span> <span>nights</span><script>var x = 1;</script></div>`)

	text := dom.InnerText(doc.Find(".card"))
	assert.Equal(t, "Hotel Alpha\nCheck-in: Oct 3, 2099\n2 nights", text)
}

func TestInnerText_AdjacentInlineNodesJoin(t *testing.T) {
	tests := []struct {
		name, html, want string
	}{
		{"split price", `<p class="t"><span>$</span><span>1,234</span><span>.50</span></p>`, "$1,234.50"},
		{"styled letter", `<h1 class="t">The <b>W</b>estin Boston</h1>`, "The Westin Boston"},
		{"spaced inline", `<p class="t"><span>Check-in:</span> <em>Jun 10</em></p>`, "Check-in: Jun 10"},
		{"inline then block", `<div class="t"><span>Total</span><p>$5</p></div>`, "Total\n$5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, tt.html)
			assert.Equal(t, tt.want, dom.InnerText(doc.Find(".t")))
		})
	}
}

func TestInnerText_BreakElement(t *testing.T) {
	doc := parse(t, `<p>Line one<br>Line two</p>`)
	assert.Equal(t, "Line one\nLine two", dom.InnerText(doc.Find("p")))
}

func TestInnerText_EmptySelection(t *testing.T) {
	doc := parse(t, `<p>x</p>`)
	assert.Empty(t, dom.InnerText(doc.Find(".missing")))
	assert.Empty(t, dom.InnerText(nil))
}

func TestCollapsedText(t *testing.T) {
	doc := parse(t, `<div><h2>A</h2><p>B   C</p></div>`)
	assert.Equal(t, "A B C", dom.CollapsedText(doc.Find("div")))
}

func TestCSSPath_ResolvesToSameNode(t *testing.T) {
	doc := parse(t, `<html><body><div id="a"></div><ul><li>one</li><li class="target">two</li></ul></body></html>`)

	target := doc.Find("li.target")
	path := dom.CSSPath(target)
	assert.Equal(t, "html > body:nth-child(2) > ul:nth-child(2) > li:nth-child(2)", path)

	found := doc.Find(path)
	require.Equal(t, 1, found.Length())
	assert.Equal(t, "two", found.Text())
}

func TestClassHelpers(t *testing.T) {
	doc := parse(t, `<div class="Trip-Card is-expanded"></div>`)
	sel := doc.Find("div")

	assert.Equal(t, []string{"Trip-Card", "is-expanded"}, dom.Classes(sel))
	assert.True(t, dom.HasClassFragment(sel, "expanded"))
	assert.True(t, dom.HasClassFragment(sel, "trip"))
	assert.False(t, dom.HasClassFragment(sel, "booking"))
}
