package proxy

import (
	"math/rand"
	"net/http"
	"net/url"
	"sync"

	"github.com/williampepple1/trip-extractor/internal/config"
)

// Manager selects proxies for the HTTP page and the Chrome launcher
type Manager struct {
	Config *config.ProxyConfig

	mu   sync.Mutex
	next int
}

// NewManager creates a new proxy manager
func NewManager(cfg *config.ProxyConfig) *Manager {
	return &Manager{
		Config: cfg,
	}
}

// Enabled reports whether any proxy is configured
func (m *Manager) Enabled() bool {
	return m != nil && m.Config != nil && m.Config.Enabled && len(m.Config.List) > 0
}

// pick returns the configured proxy string to use next.
// Without rotation the first entry is always used.
func (m *Manager) pick() string {
	if !m.Config.Rotate || len(m.Config.List) == 1 {
		return m.Config.List[0]
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.next == 0 {
		m.next = rand.Intn(len(m.Config.List)) + 1
	}
	proxyStr := m.Config.List[(m.next-1)%len(m.Config.List)]
	m.next++
	return proxyStr
}

// GetProxyURL returns a proxy URL carrying the configured credentials, or nil
// when proxies are disabled
func (m *Manager) GetProxyURL() (*url.URL, error) {
	if !m.Enabled() {
		return nil, nil
	}

	proxyURL, err := url.Parse(m.pick())
	if err != nil {
		return nil, err
	}

	if m.Config.Auth.Username != "" && m.Config.Auth.Password != "" {
		proxyURL.User = url.UserPassword(m.Config.Auth.Username, m.Config.Auth.Password)
	}

	return proxyURL, nil
}

// ServerAddress returns the proxy in the scheme://host:port form Chrome's
// --proxy-server flag accepts. Chrome takes no inline credentials.
func (m *Manager) ServerAddress() (string, error) {
	proxyURL, err := m.GetProxyURL()
	if err != nil || proxyURL == nil {
		return "", err
	}
	return proxyURL.Scheme + "://" + proxyURL.Host, nil
}

// ApplyToTransport applies the proxy to an HTTP transport and returns the
// proxy used, with credentials redacted
func (m *Manager) ApplyToTransport(transport *http.Transport) (string, error) {
	proxyURL, err := m.GetProxyURL()
	if err != nil {
		return "", err
	}

	if proxyURL != nil {
		transport.Proxy = http.ProxyURL(proxyURL)
		return proxyURL.Redacted(), nil
	}

	return "", nil
}
