package navigation

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/williampepple1/trip-extractor/internal/dom"
)

var (
	expandedClasses = []string{"expanded", "is-expanded", "open", "is-open"}

	toggleSelectors = []string{
		"[aria-expanded]",
		"button[aria-controls]",
		"summary",
		`[class*="toggle"]`,
		`[class*="expand"]`,
		"button",
	}

	detailSelectors = []string{
		`a[href*="modify"]`,
		`a[href*="view"]`,
		`a[href*="reservation-detail"]`,
		`a[href*="details"]`,
		`[data-testid*="view"]`,
		`[data-testid*="modify"]`,
	}

	detailLabels = []string{"view/modify", "view details", "view reservation", "modify", "manage"}
)

// IsExpanded reports whether a trip panel is open: aria-expanded="true" on it
// or inside it, an open-state class, or a visible detail action
func IsExpanded(sel *goquery.Selection) bool {
	if sel == nil || sel.Length() == 0 {
		return false
	}
	if sel.AttrOr("aria-expanded", "") == "true" || sel.Find(`[aria-expanded="true"]`).Length() > 0 {
		return true
	}
	for _, class := range dom.Classes(sel) {
		for _, open := range expandedClasses {
			if strings.EqualFold(class, open) {
				return true
			}
		}
	}
	return FindDetailAction(sel) != nil
}

// FindToggle returns the element to click to expand a panel, or nil to click
// the panel itself
func FindToggle(sel *goquery.Selection) *goquery.Selection {
	for _, selector := range toggleSelectors {
		if t := sel.Find(selector).First(); t.Length() > 0 {
			return t
		}
	}
	return nil
}

// FindDetailAction returns the view/modify action inside a trip region
func FindDetailAction(sel *goquery.Selection) *goquery.Selection {
	if sel == nil || sel.Length() == 0 {
		return nil
	}
	for _, selector := range detailSelectors {
		if a := sel.Find(selector).First(); a.Length() > 0 {
			return a
		}
	}

	var found *goquery.Selection
	sel.Find(`a, button, [role="button"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.ToLower(dom.CollapsedText(s))
		for _, label := range detailLabels {
			if strings.Contains(text, label) {
				found = s
				return false
			}
		}
		return true
	})
	return found
}
