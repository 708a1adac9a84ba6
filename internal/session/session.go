// Package session decides whether the current document belongs to a signed-in user.
package session

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/williampepple1/trip-extractor/internal/config"
	"github.com/williampepple1/trip-extractor/internal/dom"
)

var (
	pointsBalance = regexp.MustCompile(`(?i)points:?\s*\d[\d,]*`)

	signInLabels = []string{"sign in", "log in", "login", "sign-in"}
	signInHrefs  = []string{"sign-in", "signin", "login"}
)

const signInActions = `a, button, [role="button"], input[type="submit"]`

// Verdict is the authentication decision with the evidence that produced it
type Verdict struct {
	Authenticated bool
	Reason        string
}

// Checker inspects a document for signed-in and signed-out indicators
type Checker struct {
	Config *config.SessionConfig
}

// NewChecker creates a checker using the configured indicators
func NewChecker(cfg *config.SessionConfig) *Checker {
	return &Checker{Config: cfg}
}

// IsAuthenticated reports whether the document looks signed in
func (c *Checker) IsAuthenticated(doc *goquery.Document) bool {
	return c.Check(doc).Authenticated
}

// Check evaluates, in order: account-menu markup, signed-in phrases or a points
// balance, a visible sign-in action. Without negative evidence the user is
// assumed to be signed in.
func (c *Checker) Check(doc *goquery.Document) Verdict {
	root := doc.Selection

	for _, selector := range c.Config.AccountSelectors {
		if root.Find(selector).Length() > 0 {
			return Verdict{Authenticated: true, Reason: "account element " + selector}
		}
	}

	text := strings.ToLower(dom.InnerText(root.Find("body")))
	for _, phrase := range c.Config.LoginPhrases {
		if phrase != "" && strings.Contains(text, strings.ToLower(phrase)) {
			return Verdict{Authenticated: true, Reason: "page text contains " + phrase}
		}
	}
	if pointsBalance.MatchString(text) {
		return Verdict{Authenticated: true, Reason: "points balance shown"}
	}

	if label, ok := findSignIn(root); ok {
		return Verdict{Authenticated: false, Reason: "sign-in action " + label}
	}

	return Verdict{Authenticated: true, Reason: "no sign-in prompt found"}
}

func findSignIn(root *goquery.Selection) (string, bool) {
	var found string
	root.Find(signInActions).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if hidden(s) {
			return true
		}

		labels := []string{dom.CollapsedText(s)}
		if v, ok := s.Attr("value"); ok {
			labels = append(labels, v)
		}
		if v, ok := s.Attr("aria-label"); ok {
			labels = append(labels, v)
		}
		for _, label := range labels {
			label = strings.ToLower(strings.TrimSpace(label))
			for _, want := range signInLabels {
				if label == want {
					found = label
					return false
				}
			}
		}

		if goquery.NodeName(s) == "a" {
			href := strings.ToLower(s.AttrOr("href", ""))
			for _, frag := range signInHrefs {
				if strings.Contains(href, frag) {
					found = "link " + href
					return false
				}
			}
		}
		return true
	})
	return found, found != ""
}

// hidden approximates visibility on a static snapshot
func hidden(s *goquery.Selection) bool {
	for n := s; n.Length() > 0; n = n.Parent() {
		if _, ok := n.Attr("hidden"); ok {
			return true
		}
		if n.AttrOr("aria-hidden", "") == "true" {
			return true
		}
		style := strings.ReplaceAll(strings.ToLower(n.AttrOr("style", "")), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return true
		}
	}
	return false
}
