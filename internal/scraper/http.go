package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/williampepple1/trip-extractor/internal/config"
	"github.com/williampepple1/trip-extractor/internal/dom"
	"github.com/williampepple1/trip-extractor/internal/logger"
	"github.com/williampepple1/trip-extractor/internal/poll"
	"github.com/williampepple1/trip-extractor/internal/proxy"
)

// maxBodySize bounds a fetched document
const maxBodySize = 16 << 20

// HTTPPage is a non-interactive dom.Page that loads documents over plain HTTP.
// Cookies for an authenticated list page go in scraper.headers.
type HTTPPage struct {
	Config *config.AppConfig
	Proxy  *proxy.Manager
	log    logger.Logger

	client    *http.Client
	transport *http.Transport
	proxyUsed string

	current entry
	history []entry
}

type entry struct {
	location string
	body     []byte
}

// NewHTTPPage creates an HTTP page with an empty document
func NewHTTPPage(cfg *config.AppConfig, proxies *proxy.Manager, log logger.Logger) (*HTTPPage, error) {
	transport := &http.Transport{}

	p := &HTTPPage{
		Config:    cfg,
		Proxy:     proxies,
		log:       log,
		transport: transport,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Scraper.Timeout,
		},
	}

	if proxies.Enabled() {
		used, err := proxies.ApplyToTransport(transport)
		if err != nil {
			return nil, fmt.Errorf("apply proxy: %w", err)
		}
		p.proxyUsed = used
	}

	return p, nil
}

// Navigate fetches url with retries and makes it the current document
func (p *HTTPPage) Navigate(ctx context.Context, url string) error {
	loc, body, err := p.fetch(ctx, url)
	if err != nil {
		return err
	}

	if p.current.location != "" {
		p.history = append(p.history, p.current)
	}
	p.current = entry{location: loc, body: body}
	return nil
}

func (p *HTTPPage) fetch(ctx context.Context, url string) (string, []byte, error) {
	var lastErr error

	for retries := 0; retries <= p.Config.Scraper.MaxRetries; retries++ {
		if retries > 0 {
			retryWait := p.Config.Scraper.RetryDelay * time.Duration(retries)
			p.log.Warn("Retrying fetch",
				logger.String("url", url),
				logger.Duration("wait", retryWait),
				logger.Int("attempt", retries),
				logger.Int("max_retries", p.Config.Scraper.MaxRetries),
				logger.Error(lastErr),
			)
			if err := poll.Sleep(ctx, retryWait); err != nil {
				return "", nil, err
			}

			if p.Proxy.Enabled() && p.Config.Proxies.Rotate && len(p.Config.Proxies.List) > 1 {
				if used, err := p.Proxy.ApplyToTransport(p.transport); err == nil {
					p.proxyUsed = used
				}
			}
		}

		loc, body, err := p.get(ctx, url)
		if err == nil {
			p.log.Debug("Fetched document",
				logger.String("url", loc),
				logger.Int("bytes", len(body)),
				logger.Int("retries", retries),
				logger.String("proxy", p.proxyUsed),
			)
			return loc, body, nil
		}
		if ctx.Err() != nil {
			return "", nil, ctx.Err()
		}
		lastErr = err
	}

	return "", nil, fmt.Errorf("fetch %s: %w", url, lastErr)
}

func (p *HTTPPage) get(ctx context.Context, url string) (string, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, err
	}

	if len(p.Config.Scraper.UserAgents) > 0 {
		req.Header.Set("User-Agent", p.Config.Scraper.UserAgents[rand.Intn(len(p.Config.Scraper.UserAgents))])
	}
	for k, v := range p.Config.Scraper.Headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", nil, err
	}

	// Redirects (e.g. to a sign-in page) change the location the session checker sees
	return resp.Request.URL.String(), body, nil
}

// Snapshot parses the current document
func (p *HTTPPage) Snapshot(context.Context) (*goquery.Document, error) {
	if p.current.location == "" {
		return nil, fmt.Errorf("snapshot: no document loaded")
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(p.current.body))
}

// Location returns the final URL of the current document
func (p *HTTPPage) Location(context.Context) (string, error) {
	return p.current.location, nil
}

// Click is not supported without a browser
func (p *HTTPPage) Click(context.Context, string) error {
	return dom.ErrNotInteractive
}

// Back restores the previously fetched document
func (p *HTTPPage) Back(context.Context) error {
	if len(p.history) == 0 {
		return dom.ErrNoHistory
	}
	p.current = p.history[len(p.history)-1]
	p.history = p.history[:len(p.history)-1]
	return nil
}

// ReadyState is "complete" once a document has been fetched
func (p *HTTPPage) ReadyState(context.Context) (string, error) {
	if p.current.location == "" {
		return "loading", nil
	}
	return "complete", nil
}

// Interactive reports false: fetched documents cannot be clicked
func (p *HTTPPage) Interactive() bool {
	return false
}
