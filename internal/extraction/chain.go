package extraction

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/williampepple1/trip-extractor/internal/dom"
)

// Strategy produces a field value from a region, or reports that it found nothing
type Strategy struct {
	Name string
	Fn   func(sel *goquery.Selection) (string, bool)
}

// Chain runs strategies in order; the first non-empty value wins
type Chain []Strategy

// First returns the first non-empty value and the name of the strategy that produced it
func (c Chain) First(sel *goquery.Selection) (value, name string, ok bool) {
	for _, s := range c {
		if v, ok := s.Fn(sel); ok && v != "" {
			return v, s.Name, true
		}
	}
	return "", "", false
}

// Value returns the first non-empty value, or ""
func (c Chain) Value(sel *goquery.Selection) string {
	v, _, _ := c.First(sel)
	return v
}

// Pattern is a regular expression applied to visible text. Group selects the
// captured group returned; a non-empty Value is returned instead on any match.
type Pattern struct {
	Expr  *regexp.Regexp
	Group int
	Value string
}

// P compiles a pattern returning group
func P(expr string, group int) Pattern {
	return Pattern{Expr: regexp.MustCompile(expr), Group: group}
}

// Category compiles a pattern mapped to a fixed value
func Category(expr, value string) Pattern {
	return Pattern{Expr: regexp.MustCompile(expr), Value: value}
}

// Match applies the pattern to text
func (p Pattern) Match(text string) (string, bool) {
	m := p.Expr.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	if p.Value != "" {
		return p.Value, true
	}
	if p.Group >= len(m) {
		return "", false
	}
	return m[p.Group], m[p.Group] != ""
}

// SelectorStrategy returns the text of the first element matching selector
// inside the region whose text is non-empty
func SelectorStrategy(selector string) Strategy {
	return Strategy{
		Name: "selector " + selector,
		Fn: func(sel *goquery.Selection) (string, bool) {
			var value string
			sel.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
				value = dom.CollapsedText(s)
				return value == ""
			})
			return value, value != ""
		},
	}
}

// PatternStrategy applies p to the visible text of the region
func PatternStrategy(p Pattern) Strategy {
	return Strategy{
		Name: "pattern " + p.Expr.String(),
		Fn: func(sel *goquery.Selection) (string, bool) {
			return p.Match(dom.InnerText(sel))
		},
	}
}

// normalized wraps s so that values normalizing to "" count as not found
func normalized(s Strategy, normalize func(string) string) Strategy {
	if normalize == nil {
		return s
	}
	return Strategy{
		Name: s.Name,
		Fn: func(sel *goquery.Selection) (string, bool) {
			v, ok := s.Fn(sel)
			if !ok {
				return "", false
			}
			v = normalize(v)
			return v, v != ""
		},
	}
}
