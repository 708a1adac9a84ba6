package config

import (
	"time"

	"github.com/williampepple1/trip-extractor/internal/logger"
)

// DefaultUserAgents provides a list of common user agents
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

// DefaultListURL is the reservations list page the navigation controller targets
const DefaultListURL = "https://www.marriott.com/loyalty/findReservationList.mi"

// DefaultListSelectors signal that reservation content has rendered
var DefaultListSelectors = []string{
	".reservation",
	".reservation-card",
	".trip-card",
	"[data-testid*=\"reservation\"]",
	"[data-testid*=\"trip\"]",
}

// DefaultBrands are hotel brand names treated like the word "hotel" by text heuristics
var DefaultBrands = []string{
	"marriott", "sheraton", "westin", "ritz-carlton", "courtyard", "residence inn",
	"fairfield", "springhill", "renaissance", "w hotel", "st. regis", "le meridien",
	"aloft", "autograph collection", "four points", "jw marriott",
	"hilton", "hyatt", "resort",
}

// DefaultAccountSelectors mark an account menu rendered for a signed-in user
var DefaultAccountSelectors = []string{
	"[data-testid=\"account-menu\"]",
	".account-menu",
	".user-profile",
	".my-account",
	"[aria-label*=\"Account\"]",
	".sign-out",
	".logout",
	"[data-testid*=\"member-name\"]",
}

// DefaultLoginPhrases appear in page text only when a user is signed in
var DefaultLoginPhrases = []string{
	"welcome back",
	"signed in as",
	"sign out",
	"log out",
	"my account",
}

// Default returns the configuration used when no file is given
func Default() *AppConfig {
	return &AppConfig{
		Browser: BrowserConfig{
			Headless:      false,
			UserAgent:     DefaultUserAgents[0],
			ActionTimeout: 5 * time.Second,
			Screenshot:    false,
			ScreenshotDir: "screenshots",
		},
		Scraper: ScraperConfig{
			Workers:    3,
			RateLimit:  1 * time.Second,
			MaxRetries: 3,
			RetryDelay: 2 * time.Second,
			Timeout:    30 * time.Second,
			UserAgents: DefaultUserAgents,
			Headers:    map[string]string{},
		},
		IO: IOConfig{
			OutputFile:   "",
			OutputFormat: "json",
			StoreFile:    "reservations.json",
		},
		Extraction: ExtractionConfig{
			Selectors: map[string][]string{},
			Regex:     map[string][]string{},
			DrillDown: true,
			Brands:    DefaultBrands,
		},
		Navigation: NavigationConfig{
			ListURL:            DefaultListURL,
			ListSelectors:      DefaultListSelectors,
			PollInterval:       500 * time.Millisecond,
			ListWait:           10 * time.Second,
			LoadTimeout:        15 * time.Second,
			LoadSettle:         1 * time.Second,
			ExpandSettle:       1 * time.Second,
			ExpandWait:         5 * time.Second,
			ActionPollInterval: 500 * time.Millisecond,
			ActionWait:         5 * time.Second,
			LocationWait:       10 * time.Second,
		},
		Discovery: DiscoveryConfig{
			MinText:             100,
			MaxText:             2000,
			SimilarityThreshold: 0.3,
			ResultCap:           10,
		},
		Session: SessionConfig{
			AccountSelectors: DefaultAccountSelectors,
			LoginPhrases:     DefaultLoginPhrases,
		},
		Proxies: ProxyConfig{
			Enabled: false,
			Rotate:  true,
			List:    []string{},
		},
		Logging: logger.Config{
			Level: logger.DefaultLevel,
		},
	}
}
