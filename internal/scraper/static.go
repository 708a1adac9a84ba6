package scraper

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PuerkitoBio/goquery"

	"github.com/williampepple1/trip-extractor/internal/dom"
)

// StaticPage is a fixed, non-interactive document such as a saved HTML file
type StaticPage struct {
	location string
	body     []byte
}

// NewStaticPage wraps html as a document located at location
func NewStaticPage(location string, html []byte) *StaticPage {
	return &StaticPage{location: location, body: html}
}

// OpenFile loads a saved HTML document
func OpenFile(path string) (*StaticPage, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return NewStaticPage("file://"+filepath.ToSlash(abs), body), nil
}

// Snapshot parses the document
func (p *StaticPage) Snapshot(context.Context) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(p.body))
}

// Location returns the document location
func (p *StaticPage) Location(context.Context) (string, error) {
	return p.location, nil
}

// Navigate succeeds only for the current location
func (p *StaticPage) Navigate(_ context.Context, url string) error {
	if url == p.location {
		return nil
	}
	return dom.ErrNotInteractive
}

func (p *StaticPage) Click(context.Context, string) error {
	return dom.ErrNotInteractive
}

func (p *StaticPage) Back(context.Context) error {
	return dom.ErrNoHistory
}

func (p *StaticPage) ReadyState(context.Context) (string, error) {
	return "complete", nil
}

func (p *StaticPage) Interactive() bool {
	return false
}
