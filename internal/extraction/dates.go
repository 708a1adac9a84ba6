package extraction

import (
	"math"
	"regexp"
	"strings"
	"time"
)

// ISODate is the calendar-date form produced by NormalizeDate
const ISODate = "2006-01-02"

var dateLayouts = []string{
	ISODate,
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"January 2 2006",
	"Mon, Jan 2, 2006",
	"Mon Jan 2, 2006",
	"Mon, January 2, 2006",
	"Monday, Jan 2, 2006",
	"Monday, January 2, 2006",
	"Monday January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon, 2 Jan 2006",
	"1/2/2006",
	"2006/1/2",
}

// DatePatterns find dates inside free text, one family per pattern
var DatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`),
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
	regexp.MustCompile(`(?i)\b\d{1,2}\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+\d{4}\b`),
}

var (
	ordinalSuffix = regexp.MustCompile(`(?i)(\d)(st|nd|rd|th)\b`)
	septAbbrev    = regexp.MustCompile(`(?i)\bsept\b`)
	abbrevDot     = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec|mon|tue|wed|thu|fri|sat|sun)\.`)
)

// ParseDate parses a date in any supported layout, also when it is embedded
// in surrounding text. The result is midnight UTC of that calendar date.
func ParseDate(s string) (time.Time, bool) {
	clean := cleanDate(s)
	if clean == "" {
		return time.Time{}, false
	}
	if t, ok := parseLayouts(clean); ok {
		return t, true
	}

	for _, re := range DatePatterns {
		if m := re.FindString(clean); m != "" {
			if t, ok := parseLayouts(m); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// NormalizeDate converts s to YYYY-MM-DD, or returns s unchanged when it
// cannot be parsed. Normalizing a normalized value is a no-op.
func NormalizeDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return t.Format(ISODate)
}

// FindDates returns every date string of the first pattern family that
// matches at least twice in text
func FindDates(text string) []string {
	for _, re := range DatePatterns {
		if m := re.FindAllString(text, -1); len(m) >= 2 {
			return m
		}
	}
	return nil
}

// Nights is ceil((checkOut - checkIn) / 1 day), or nil unless both dates
// parse. It is not clamped: a check-out before check-in gives a negative count.
func Nights(checkIn, checkOut string) *int {
	in, ok := ParseDate(checkIn)
	if !ok {
		return nil
	}
	out, ok := ParseDate(checkOut)
	if !ok {
		return nil
	}

	n := int(math.Ceil(out.Sub(in).Hours() / 24))
	return &n
}

func cleanDate(s string) string {
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = septAbbrev.ReplaceAllString(s, "Sep")
	s = abbrevDot.ReplaceAllString(s, "$1")
	return strings.Join(strings.Fields(s), " ")
}

func parseLayouts(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
