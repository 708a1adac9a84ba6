// Package discovery locates the document regions that each hold one trip.
package discovery

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/williampepple1/trip-extractor/internal/config"
	"github.com/williampepple1/trip-extractor/internal/dom"
	"github.com/williampepple1/trip-extractor/pkg/models"
)

// ErrNoReservations is returned when no strategy finds a candidate region
var ErrNoReservations = errors.New("no reservations found on the page")

// Strategy names reported on regions
const (
	StrategyStructural = "structural"
	StrategySimilarity = "similarity"
	StrategyFreeText   = "free-text"
	StrategyTabular    = "tabular"
)

// StructuralSelectors correlate with reservation containers, most specific first
var StructuralSelectors = []string{
	".reservation-card",
	".trip-card",
	".booking-card",
	`[data-testid*="reservation"]`,
	`[data-testid*="trip"]`,
	".upcoming-stay",
	".future-reservation",
	`div[class*="reservation"]`,
	`div[class*="trip"]`,
	`div[class*="booking"]`,
	`div[id*="reservation"]`,
	`div[id*="trip"]`,
	`div[id*="booking"]`,
	".card",
	".panel",
}

var (
	stayKeywords       = []string{"check", "night", "reservation"}
	diagnosticKeywords = []string{"reservation", "trip", "booking", "hotel", "check-in", "check-out", "confirmation", "night", "stay"}
)

const (
	containerTags = "div, li, article, section"
	blockTags     = "div, section, article, li, p, td, dd"
)

// Region is a subtree hypothesized to describe exactly one trip
type Region struct {
	Index     int
	Selection *goquery.Selection
	// Path addresses the same node in the live page
	Path     string
	Strategy string
}

// Reporter receives diagnostic messages
type Reporter interface {
	Debug(level models.DebugLevel, msg string)
}

// Engine runs the discovery strategies in order
type Engine struct {
	Config   *config.DiscoveryConfig
	brands   []string
	reporter Reporter
}

// New creates a discovery engine. brands extend "hotel" as domain keywords.
func New(cfg *config.DiscoveryConfig, brands []string, reporter Reporter) *Engine {
	lower := make([]string, 0, len(brands))
	for _, b := range brands {
		if b = strings.ToLower(strings.TrimSpace(b)); b != "" {
			lower = append(lower, b)
		}
	}
	return &Engine{Config: cfg, brands: lower, reporter: reporter}
}

type strategy struct {
	name string
	find func(root *goquery.Selection) []*goquery.Selection
}

// FindCandidateRegions returns the result of the first strategy that finds
// anything, in document order
func (e *Engine) FindCandidateRegions(doc *goquery.Document) ([]Region, error) {
	root := doc.Selection
	strategies := []strategy{
		{StrategyStructural, e.structural},
		{StrategySimilarity, e.similarity},
		{StrategyFreeText, e.freeText},
		{StrategyTabular, e.tabular},
	}

	for _, s := range strategies {
		found := s.find(root)
		if len(found) == 0 {
			e.debugf(models.DebugInfo, "Discovery strategy %s found nothing", s.name)
			continue
		}

		regions := make([]Region, len(found))
		for i, sel := range found {
			regions[i] = Region{Index: i, Selection: sel, Path: dom.CSSPath(sel), Strategy: s.name}
		}
		e.debugf(models.DebugSuccess, "Discovery strategy %s found %d candidate regions", s.name, len(regions))
		return regions, nil
	}

	e.diagnose(root)
	return nil, ErrNoReservations
}

// structural tries each selector until one yields matches within the text bounds
func (e *Engine) structural(root *goquery.Selection) []*goquery.Selection {
	for _, selector := range StructuralSelectors {
		var kept []*goquery.Selection
		root.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if e.withinBounds(s) {
				kept = append(kept, s)
			}
		})
		if len(kept) == 0 {
			continue
		}

		kept = dropWrappers(kept)
		kept = outermost(kept)
		if len(kept) > 0 {
			e.debugf(models.DebugInfo, "Structural selector %s matched %d regions", selector, len(kept))
			return kept
		}
	}
	return nil
}

// similarity finds the largest group of look-alike siblings
func (e *Engine) similarity(root *goquery.Selection) []*goquery.Selection {
	var best []*goquery.Selection

	root.Find("*").Each(func(_ int, parent *goquery.Selection) {
		var eligible []*goquery.Selection
		parent.ChildrenFiltered(containerTags).Each(func(_ int, child *goquery.Selection) {
			if e.withinBounds(child) && containsAny(lowerText(child), stayKeywords) {
				eligible = append(eligible, child)
			}
		})
		if len(eligible) < 2 {
			return
		}

		var group []*goquery.Selection
		for i, a := range eligible {
			for j, b := range eligible {
				if i != j && Similarity(a, b) > e.Config.SimilarityThreshold {
					group = append(group, a)
					break
				}
			}
		}
		if len(group) >= 2 && len(group) > len(best) {
			best = group
		}
	})

	return best
}

// freeText finds the innermost blocks mentioning a hotel and a stay
func (e *Engine) freeText(root *goquery.Selection) []*goquery.Selection {
	var matches []*goquery.Selection
	root.Find(blockTags).Each(func(_ int, s *goquery.Selection) {
		if e.mentionsStay(s) {
			matches = append(matches, s)
		}
	})
	return e.limit(innermost(matches))
}

// tabular looks at forms and tables, then at individual rows
func (e *Engine) tabular(root *goquery.Selection) []*goquery.Selection {
	var matches []*goquery.Selection
	root.Find("form, table").Each(func(_ int, s *goquery.Selection) {
		if !e.mentionsStay(s) {
			return
		}
		if goquery.NodeName(s) == "table" {
			var rows []*goquery.Selection
			s.Find("tr").Each(func(_ int, row *goquery.Selection) {
				if e.mentionsStay(row) {
					rows = append(rows, row)
				}
			})
			if len(rows) >= 2 {
				matches = append(matches, rows...)
				return
			}
		}
		matches = append(matches, s)
	})
	if len(matches) > 0 {
		return e.limit(innermost(matches))
	}

	root.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if e.mentionsStay(row) {
			matches = append(matches, row)
		}
	})
	return e.limit(innermost(matches))
}

func (e *Engine) diagnose(root *goquery.Selection) {
	e.debugf(models.DebugWarning, "No reservation regions found, scanning page for keywords")

	elements := root.Find("body *")
	texts := make([]string, 0, elements.Length())
	elements.Each(func(_ int, s *goquery.Selection) {
		texts = append(texts, lowerText(s))
	})

	for _, keyword := range diagnosticKeywords {
		count := 0
		for _, text := range texts {
			if strings.Contains(text, keyword) {
				count++
			}
		}
		e.debugf(models.DebugInfo, "Elements containing %q: %d", keyword, count)
	}
}

func (e *Engine) withinBounds(s *goquery.Selection) bool {
	n := utf8.RuneCountInString(dom.CollapsedText(s))
	return n >= e.Config.MinText && n <= e.Config.MaxText
}

func (e *Engine) mentionsStay(s *goquery.Selection) bool {
	text := lowerText(s)
	if !strings.Contains(text, "hotel") && !containsAny(text, e.brands) {
		return false
	}
	return containsAny(text, stayKeywords)
}

func (e *Engine) limit(found []*goquery.Selection) []*goquery.Selection {
	if limit := e.Config.ResultCap; limit > 0 && len(found) > limit {
		return found[:limit]
	}
	return found
}

func (e *Engine) debugf(level models.DebugLevel, format string, args ...any) {
	if e.reporter == nil {
		return
	}
	e.reporter.Debug(level, fmt.Sprintf(format, args...))
}

func lowerText(s *goquery.Selection) string {
	return strings.ToLower(dom.CollapsedText(s))
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// contains reports whether b is a strict descendant of a
func contains(a, b *html.Node) bool {
	for p := b.Parent; p != nil; p = p.Parent {
		if p == a {
			return true
		}
	}
	return false
}

// dropWrappers removes matches that contain two or more other matches
func dropWrappers(found []*goquery.Selection) []*goquery.Selection {
	out := found[:0:0]
	for i, a := range found {
		inner := 0
		for j, b := range found {
			if i != j && contains(a.Get(0), b.Get(0)) {
				inner++
			}
		}
		if inner < 2 {
			out = append(out, a)
		}
	}
	return out
}

// outermost removes matches nested in another match
func outermost(found []*goquery.Selection) []*goquery.Selection {
	out := found[:0:0]
	for i, a := range found {
		nested := false
		for j, b := range found {
			if i != j && contains(b.Get(0), a.Get(0)) {
				nested = true
				break
			}
		}
		if !nested {
			out = append(out, a)
		}
	}
	return out
}

// innermost removes matches that contain another match
func innermost(found []*goquery.Selection) []*goquery.Selection {
	out := found[:0:0]
	for i, a := range found {
		wrapper := false
		for j, b := range found {
			if i != j && contains(a.Get(0), b.Get(0)) {
				wrapper = true
				break
			}
		}
		if !wrapper {
			out = append(out, a)
		}
	}
	return out
}
