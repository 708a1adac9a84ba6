package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/williampepple1/trip-extractor/internal/logger"
)

// AppConfig holds the complete application configuration
type AppConfig struct {
	Browser    BrowserConfig    `yaml:"browser"`
	Scraper    ScraperConfig    `yaml:"scraper"`
	IO         IOConfig         `yaml:"io"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Navigation NavigationConfig `yaml:"navigation"`
	Discovery  DiscoveryConfig  `yaml:"discovery"`
	Session    SessionConfig    `yaml:"session"`
	Proxies    ProxyConfig      `yaml:"proxies"`
	Logging    logger.Config    `yaml:"logging"`
}

// BrowserConfig holds the configuration of the live Chrome page
type BrowserConfig struct {
	Headless      bool          `yaml:"headless"`
	UserAgent     string        `yaml:"user_agent"`
	ChromePath    string        `yaml:"chrome_path"`
	UserDataDir   string        `yaml:"user_data_dir"`
	CDPURL        string        `yaml:"cdp_url"`
	ActionTimeout time.Duration `yaml:"action_timeout"`
	Screenshot    bool          `yaml:"screenshot"`
	ScreenshotDir string        `yaml:"screenshot_dir"`
}

// ScraperConfig holds the configuration of the HTTP page and the batch pool
type ScraperConfig struct {
	Workers    int               `yaml:"workers"`
	RateLimit  time.Duration     `yaml:"rate_limit"`
	MaxRetries int               `yaml:"max_retries"`
	RetryDelay time.Duration     `yaml:"retry_delay"`
	Timeout    time.Duration     `yaml:"timeout"`
	UserAgents []string          `yaml:"user_agents,omitempty"`
	Headers    map[string]string `yaml:"headers,omitempty"`
}

// IOConfig holds the input/output configuration
type IOConfig struct {
	InputFile    string `yaml:"input_file"`
	OutputFile   string `yaml:"output_file"`
	OutputFormat string `yaml:"output_format"`
	StoreFile    string `yaml:"store_file"`
}

// ExtractionConfig holds user supplied field strategies and drill-down switches.
// Selectors and Regex are keyed by field name (hotelName, totalCost, ...) and are
// tried before the built-in strategies for that field.
type ExtractionConfig struct {
	Selectors map[string][]string `yaml:"selectors"`
	Regex     map[string][]string `yaml:"regex"`
	DrillDown bool                `yaml:"drill_down"`
	Brands    []string            `yaml:"brands"`
}

// NavigationConfig holds the canonical list URL and every bounded wait
type NavigationConfig struct {
	ListURL            string        `yaml:"list_url"`
	ListSelectors      []string      `yaml:"list_selectors"`
	PollInterval       time.Duration `yaml:"poll_interval"`
	ListWait           time.Duration `yaml:"list_wait"`
	LoadTimeout        time.Duration `yaml:"load_timeout"`
	LoadSettle         time.Duration `yaml:"load_settle"`
	ExpandSettle       time.Duration `yaml:"expand_settle"`
	ExpandWait         time.Duration `yaml:"expand_wait"`
	ActionPollInterval time.Duration `yaml:"action_poll_interval"`
	ActionWait         time.Duration `yaml:"action_wait"`
	LocationWait       time.Duration `yaml:"location_wait"`
}

// DiscoveryConfig holds the heuristic bounds of the discovery strategies
type DiscoveryConfig struct {
	MinText             int     `yaml:"min_text"`
	MaxText             int     `yaml:"max_text"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	ResultCap           int     `yaml:"result_cap"`
}

// SessionConfig holds the authentication indicators
type SessionConfig struct {
	AccountSelectors []string `yaml:"account_selectors"`
	LoginPhrases     []string `yaml:"login_phrases"`
}

// ProxyConfig holds the proxy configuration
type ProxyConfig struct {
	Enabled bool     `yaml:"enabled"`
	Rotate  bool     `yaml:"rotate"`
	List    []string `yaml:"list"`
	Auth    struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"auth"`
}

// Load loads the configuration from a YAML file on top of the defaults,
// then applies environment overrides
func Load(filename string) (*AppConfig, error) {
	cfg := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", filename, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	// Set default user agents if none provided
	if len(cfg.Scraper.UserAgents) == 0 {
		cfg.Scraper.UserAgents = DefaultUserAgents
	}
	if cfg.Browser.UserAgent == "" {
		cfg.Browser.UserAgent = DefaultUserAgents[0]
	}

	return cfg, nil
}

// Validate checks the values the engine cannot work without
func (c *AppConfig) Validate() error {
	var errs []error

	u, err := url.Parse(c.Navigation.ListURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		errs = append(errs, fmt.Errorf("navigation.list_url must be an absolute URL, got %q", c.Navigation.ListURL))
	}

	waits := []struct {
		name string
		d    time.Duration
	}{
		{"navigation.poll_interval", c.Navigation.PollInterval},
		{"navigation.list_wait", c.Navigation.ListWait},
		{"navigation.load_timeout", c.Navigation.LoadTimeout},
		{"navigation.expand_wait", c.Navigation.ExpandWait},
		{"navigation.action_poll_interval", c.Navigation.ActionPollInterval},
		{"navigation.action_wait", c.Navigation.ActionWait},
		{"navigation.location_wait", c.Navigation.LocationWait},
	}
	for _, w := range waits {
		if w.d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", w.name))
		}
	}

	if c.Discovery.MinText < 0 || c.Discovery.MaxText <= c.Discovery.MinText {
		errs = append(errs, fmt.Errorf("discovery text bounds [%d, %d] are invalid", c.Discovery.MinText, c.Discovery.MaxText))
	}
	if c.Discovery.SimilarityThreshold <= 0 || c.Discovery.SimilarityThreshold > 1 {
		errs = append(errs, fmt.Errorf("discovery.similarity_threshold must be in (0, 1], got %v", c.Discovery.SimilarityThreshold))
	}
	if c.Discovery.ResultCap <= 0 {
		errs = append(errs, errors.New("discovery.result_cap must be positive"))
	}
	if c.Scraper.Workers <= 0 {
		errs = append(errs, errors.New("scraper.workers must be positive"))
	}

	return errors.Join(errs...)
}
