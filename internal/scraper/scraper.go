package scraper

import (
	"context"
	"net/url"
	"strings"

	"github.com/williampepple1/trip-extractor/internal/config"
	"github.com/williampepple1/trip-extractor/internal/dom"
	"github.com/williampepple1/trip-extractor/internal/logger"
	"github.com/williampepple1/trip-extractor/internal/proxy"
)

// Compile-time checks
var (
	_ dom.Page          = (*BrowserPage)(nil)
	_ dom.Screenshotter = (*BrowserPage)(nil)
	_ dom.Page          = (*HTTPPage)(nil)
	_ dom.Page          = (*StaticPage)(nil)
)

// IsURL reports whether source is an http(s) URL rather than a file path
func IsURL(source string) bool {
	u, err := url.Parse(strings.TrimSpace(source))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Open loads source as an independent, non-interactive document: URLs are
// fetched over HTTP, anything else is read as a saved HTML file
func Open(ctx context.Context, cfg *config.AppConfig, source string, log logger.Logger) (dom.Page, error) {
	if !IsURL(source) {
		return OpenFile(source)
	}

	page, err := NewHTTPPage(cfg, proxy.NewManager(&cfg.Proxies), log)
	if err != nil {
		return nil, err
	}
	if err := page.Navigate(ctx, source); err != nil {
		return nil, err
	}
	return page, nil
}
