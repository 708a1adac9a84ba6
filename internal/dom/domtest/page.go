// Package domtest provides a scriptable in-memory dom.Page for tests
package domtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/williampepple1/trip-extractor/internal/dom"
)

// ClickFunc reacts to a click on selector, typically by calling SetDocument or Go
type ClickFunc func(p *Page, selector string) error

// Page is an interactive fake page serving documents from a map keyed by URL
type Page struct {
	mu          sync.Mutex
	docs        map[string]string
	current     string
	history     []string
	clicks      []string
	navigations []string
	onClick     ClickFunc
	shots       int
}

// NewPage creates a page showing docs[start]
func NewPage(start string, docs map[string]string) *Page {
	if docs == nil {
		docs = make(map[string]string)
	}
	return &Page{docs: docs, current: start}
}

// OnClick installs the click handler
func (p *Page) OnClick(fn ClickFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onClick = fn
}

// SetDocument replaces the document served at url
func (p *Page) SetDocument(url, html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.docs[url] = html
}

// Go moves to url as a link click would, recording history
func (p *Page) Go(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = append(p.history, p.current)
	p.current = url
}

// Clicks returns the selectors clicked so far
func (p *Page) Clicks() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.clicks...)
}

// Navigations returns the URLs passed to Navigate
func (p *Page) Navigations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.navigations...)
}

// Screenshots returns how many screenshots were taken
func (p *Page) Screenshots() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shots
}

func (p *Page) Snapshot(context.Context) (*goquery.Document, error) {
	p.mu.Lock()
	html, ok := p.docs[p.current]
	p.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no document at %s", p.current)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (p *Page) Location(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, nil
}

func (p *Page) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigations = append(p.navigations, url)
	p.history = append(p.history, p.current)
	p.current = url
	return nil
}

// Click fails with dom.ErrElementNotFound when selector matches nothing in
// the current document
func (p *Page) Click(ctx context.Context, selector string) error {
	doc, err := p.Snapshot(ctx)
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return fmt.Errorf("click %s: %w", selector, dom.ErrElementNotFound)
	}

	p.mu.Lock()
	p.clicks = append(p.clicks, selector)
	fn := p.onClick
	p.mu.Unlock()

	if fn != nil {
		return fn(p, selector)
	}
	return nil
}

func (p *Page) Back(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.history) == 0 {
		return dom.ErrNoHistory
	}
	p.current = p.history[len(p.history)-1]
	p.history = p.history[:len(p.history)-1]
	return nil
}

func (p *Page) ReadyState(context.Context) (string, error) {
	return "complete", nil
}

func (p *Page) Interactive() bool {
	return true
}

func (p *Page) Screenshot(context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shots++
	return []byte("\x89PNG"), nil
}

var (
	_ dom.Page          = (*Page)(nil)
	_ dom.Screenshotter = (*Page)(nil)
)
