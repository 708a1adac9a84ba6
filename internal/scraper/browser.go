package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/williampepple1/trip-extractor/internal/config"
	"github.com/williampepple1/trip-extractor/internal/dom"
	"github.com/williampepple1/trip-extractor/internal/logger"
	"github.com/williampepple1/trip-extractor/internal/proxy"
)

// clickScript activates the first element matching a selector the way a user
// click would, returning false when nothing matches.
const clickScript = `(function(sel) {
	const el = document.querySelector(sel);
	if (!el) { return false; }
	if (el.scrollIntoView) { el.scrollIntoView({block: "center"}); }
	el.click();
	return true;
})(%s)`

// BrowserPage is a dom.Page backed by a Chrome tab driven over the DevTools protocol
type BrowserPage struct {
	Config *config.AppConfig
	log    logger.Logger

	tabCtx  context.Context
	cancels []context.CancelFunc
}

// NewBrowserPage starts (or attaches to) Chrome and opens a tab
func NewBrowserPage(ctx context.Context, cfg *config.AppConfig, proxies *proxy.Manager, log logger.Logger) (*BrowserPage, error) {
	p := &BrowserPage{Config: cfg, log: log}

	var allocCtx context.Context
	var cancel context.CancelFunc
	if cdpURL := strings.TrimSpace(cfg.Browser.CDPURL); cdpURL != "" {
		// Attach to a running browser, typically one the user is already signed in to
		allocCtx, cancel = chromedp.NewRemoteAllocator(ctx, cdpURL)
	} else {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", cfg.Browser.Headless),
			chromedp.UserAgent(cfg.Browser.UserAgent),
		)
		if path := strings.TrimSpace(cfg.Browser.ChromePath); path != "" {
			opts = append(opts, chromedp.ExecPath(path))
		}
		if dir := strings.TrimSpace(cfg.Browser.UserDataDir); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create user data dir: %w", err)
			}
			opts = append(opts, chromedp.UserDataDir(dir))
		}
		if proxies != nil {
			server, err := proxies.ServerAddress()
			if err != nil {
				return nil, fmt.Errorf("select proxy: %w", err)
			}
			if server != "" {
				opts = append(opts, chromedp.ProxyServer(server))
			}
		}
		allocCtx, cancel = chromedp.NewExecAllocator(ctx, opts...)
	}
	p.cancels = append(p.cancels, cancel)

	// CDP unmarshal warnings from newer Chrome builds are noise at info level
	tabCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		}),
	)
	p.cancels = append(p.cancels, cancel)
	p.tabCtx = tabCtx

	if err := chromedp.Run(tabCtx); err != nil {
		p.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return p, nil
}

// Close closes the tab and, unless attached remotely, the browser
func (p *BrowserPage) Close() {
	for i := len(p.cancels) - 1; i >= 0; i-- {
		p.cancels[i]()
	}
	p.cancels = nil
}

// run executes actions in the tab, bounded by timeout and by the caller's ctx
func (p *BrowserPage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, cancel := context.WithTimeout(p.tabCtx, timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Snapshot parses the current document
func (p *BrowserPage) Snapshot(ctx context.Context) (*goquery.Document, error) {
	var html string
	if err := p.run(ctx, p.Config.Browser.ActionTimeout, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// Location returns the tab URL
func (p *BrowserPage) Location(ctx context.Context) (string, error) {
	var loc string
	if err := p.run(ctx, p.Config.Browser.ActionTimeout, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return loc, nil
}

// Navigate loads url and waits for the load event
func (p *BrowserPage) Navigate(ctx context.Context, url string) error {
	if err := p.run(ctx, p.Config.Scraper.Timeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

// Click activates the first element matching selector
func (p *BrowserPage) Click(ctx context.Context, selector string) error {
	quoted, err := json.Marshal(selector)
	if err != nil {
		return err
	}

	var clicked bool
	if err := p.run(ctx, p.Config.Browser.ActionTimeout, chromedp.Evaluate(fmt.Sprintf(clickScript, quoted), &clicked)); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	if !clicked {
		return fmt.Errorf("click %s: %w", selector, dom.ErrElementNotFound)
	}
	return nil
}

// Back returns to the previous history entry
func (p *BrowserPage) Back(ctx context.Context) error {
	return p.run(ctx, p.Config.Scraper.Timeout, chromedp.ActionFunc(func(ctx context.Context) error {
		current, _, err := page.GetNavigationHistory().Do(ctx)
		if err != nil {
			return fmt.Errorf("read history: %w", err)
		}
		if current <= 0 {
			return dom.ErrNoHistory
		}
		return chromedp.NavigateBack().Do(ctx)
	}))
}

// ReadyState reports document.readyState
func (p *BrowserPage) ReadyState(ctx context.Context) (string, error) {
	var state string
	if err := p.run(ctx, p.Config.Browser.ActionTimeout, chromedp.Evaluate("document.readyState", &state)); err != nil {
		return "", err
	}
	return state, nil
}

// Interactive is always true for a live tab
func (p *BrowserPage) Interactive() bool {
	return true
}

// Screenshot captures the viewport as PNG
func (p *BrowserPage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := p.run(ctx, p.Config.Scraper.Timeout, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return buf, nil
}
