// Package pipeline turns extracted records into the final reservation list.
package pipeline

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/williampepple1/trip-extractor/internal/extraction"
	"github.com/williampepple1/trip-extractor/pkg/models"
)

// Pipeline filters and completes records. The zero value is not usable; use New.
type Pipeline struct {
	now func() time.Time
}

// New creates a pipeline using the wall clock
func New() *Pipeline {
	return &Pipeline{now: time.Now}
}

// WithClock sets the clock used to decide what "today" is
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Process drops records without a hotel name, derives nights and per-night
// cost, keeps upcoming stays and removes duplicates. Input order is kept.
func (p *Pipeline) Process(records []models.ReservationRecord) []models.ReservationRecord {
	valid := Valid(records)
	for i := range valid {
		valid[i] = Derive(valid[i])
	}
	return Dedupe(p.FilterUpcoming(valid))
}

// Valid returns the records that have a hotel name
func Valid(records []models.ReservationRecord) []models.ReservationRecord {
	out := make([]models.ReservationRecord, 0, len(records))
	for _, rec := range records {
		if strings.TrimSpace(rec.HotelName) != "" {
			out = append(out, rec)
		}
	}
	return out
}

// Derive fills nights from the dates and, when missing, the per-night cost
// from total / nights
func Derive(rec models.ReservationRecord) models.ReservationRecord {
	rec.Nights = extraction.Nights(rec.CheckInDate, rec.CheckOutDate)

	if rec.PricePerNight == "" && rec.TotalCost != "" && rec.NightsOrZero() > 0 {
		if total, symbol, ok := extraction.ParseMoney(rec.TotalCost); ok {
			perNight := total.Div(decimal.New(int64(*rec.Nights), 0))
			rec.PricePerNight = extraction.FormatMoney(perNight, symbol)
		}
	}
	return rec
}

// FilterUpcoming keeps records whose check-in is today or later. Records
// without a parseable check-in are kept. Applying it twice is a no-op.
func (p *Pipeline) FilterUpcoming(records []models.ReservationRecord) []models.ReservationRecord {
	today := Today(p.now())
	out := make([]models.ReservationRecord, 0, len(records))
	for _, rec := range records {
		if IsUpcoming(rec, today) {
			out = append(out, rec)
		}
	}
	return out
}

// IsUpcoming compares the check-in date with today, ignoring time of day
func IsUpcoming(rec models.ReservationRecord, today time.Time) bool {
	checkIn, ok := extraction.ParseDate(rec.CheckInDate)
	if !ok {
		return true
	}
	return !checkIn.Before(today)
}

// Today is the local calendar date of now, as midnight UTC like parsed dates
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Dedupe keeps the first record per confirmation number, or per hotel and
// dates when there is no confirmation number
func Dedupe(records []models.ReservationRecord) []models.ReservationRecord {
	seen := make(map[string]bool, len(records))
	out := make([]models.ReservationRecord, 0, len(records))
	for _, rec := range records {
		if key, ok := dedupeKey(rec); ok {
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, rec)
	}
	return out
}

// dedupeKey identifies a stay by confirmation number, else by hotel and
// dates. A record with neither cannot be told apart from another stay at the
// same hotel and is never dropped.
func dedupeKey(rec models.ReservationRecord) (string, bool) {
	if c := strings.TrimSpace(rec.ConfirmationNumber); c != "" {
		return "confirmation:" + strings.ToUpper(c), true
	}
	if rec.CheckInDate == "" && rec.CheckOutDate == "" {
		return "", false
	}
	return strings.Join([]string{
		"stay",
		strings.ToLower(strings.TrimSpace(rec.HotelName)),
		rec.CheckInDate,
		rec.CheckOutDate,
	}, "|"), true
}

// SortByCheckIn returns a copy sorted by check-in ascending. Records without a
// parseable check-in come first; ties keep their order.
func SortByCheckIn(records []models.ReservationRecord) []models.ReservationRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b models.ReservationRecord) int {
		ta, okA := extraction.ParseDate(a.CheckInDate)
		tb, okB := extraction.ParseDate(b.CheckInDate)
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return -1
		case !okB:
			return 1
		default:
			return ta.Compare(tb)
		}
	})
	return sorted
}
