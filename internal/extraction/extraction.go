// Package extraction reads reservation fields out of document regions with
// ordered strategy chains.
package extraction

import (
	"errors"
	"regexp"
	"slices"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/williampepple1/trip-extractor/internal/config"
	"github.com/williampepple1/trip-extractor/internal/dom"
	"github.com/williampepple1/trip-extractor/internal/logger"
	"github.com/williampepple1/trip-extractor/pkg/models"
)

// ErrEmptyRegion is returned for a region without any visible text
var ErrEmptyRegion = errors.New("region has no content")

// Extractor handles field extraction from reservation regions and detail pages
type Extractor struct {
	Config *config.ExtractionConfig
	log    logger.Logger
	now    func() time.Time
	chains map[string]Chain
}

// NewExtractor creates an extractor. Configured selectors and patterns for a
// field run before the built-in ones; invalid patterns are logged and skipped.
func NewExtractor(cfg *config.ExtractionConfig, log logger.Logger) *Extractor {
	fields := DefaultFields()

	for name, selectors := range cfg.Selectors {
		spec, ok := fields[name]
		if !ok {
			log.Warn("Ignoring selectors for unknown field", logger.String("field", name))
			continue
		}
		spec.Selectors = append(slices.Clone(selectors), spec.Selectors...)
		fields[name] = spec
	}

	for name, exprs := range cfg.Regex {
		spec, ok := fields[name]
		if !ok {
			log.Warn("Ignoring patterns for unknown field", logger.String("field", name))
			continue
		}
		custom := make([]Pattern, 0, len(exprs))
		for _, expr := range exprs {
			re, err := regexp.Compile(expr)
			if err != nil {
				log.Warn("Skipping invalid pattern", logger.String("field", name), logger.String("pattern", expr), logger.Error(err))
				continue
			}
			group := 0
			if re.NumSubexp() > 0 {
				group = 1
			}
			custom = append(custom, Pattern{Expr: re, Group: group})
		}
		spec.Patterns = append(custom, spec.Patterns...)
		fields[name] = spec
	}

	chains := make(map[string]Chain, len(fields))
	for name, spec := range fields {
		chains[name] = spec.Chain()
	}

	return &Extractor{
		Config: cfg,
		log:    log,
		now:    time.Now,
		chains: chains,
	}
}

// WithClock sets the time source for ExtractedAt
func (e *Extractor) WithClock(now func() time.Time) *Extractor {
	e.now = now
	return e
}

// Chain returns the strategy chain used for field
func (e *Extractor) Chain(field string) Chain {
	return e.chains[field]
}

// ExtractBasic reads the list-view fields from a single region
func (e *Extractor) ExtractBasic(region *goquery.Selection, source string) (models.ReservationRecord, error) {
	if region == nil || region.Length() == 0 || dom.InnerText(region) == "" {
		return models.ReservationRecord{}, ErrEmptyRegion
	}
	return e.extract(region, source, BasicFields), nil
}

// ExtractDetailed reads every field from a detail page, scoped to its main content
func (e *Extractor) ExtractDetailed(doc *goquery.Document, source string) models.ReservationRecord {
	scope := doc.Find(`main, [role="main"]`).First()
	if scope.Length() == 0 {
		scope = doc.Find("body")
	}
	if scope.Length() == 0 {
		scope = doc.Selection
	}

	rec := e.extract(scope, source, slices.Concat(BasicFields, DetailFields))
	rec.DetailedPage = true
	return rec
}

func (e *Extractor) extract(scope *goquery.Selection, source string, fields []string) models.ReservationRecord {
	rec := models.ReservationRecord{
		ExtractedAt: e.now(),
		Source:      source,
	}

	values := stringFields(&rec)
	for _, name := range fields {
		if name == FieldCheckInDate || name == FieldCheckOutDate {
			continue
		}
		if v, strategy, ok := e.chains[name].First(scope); ok {
			*values[name] = v
			e.log.Debug("Extracted field", logger.String("field", name), logger.String("strategy", strategy))
		}
	}

	rec.CheckInDate, rec.CheckOutDate = e.extractDates(scope)
	rec.Nights = Nights(rec.CheckInDate, rec.CheckOutDate)
	return rec
}

// extractDates prefers labelled elements and falls back to the first two
// dates in the text for whichever side is missing
func (e *Extractor) extractDates(scope *goquery.Selection) (string, string) {
	checkIn := e.chains[FieldCheckInDate].Value(scope)
	checkOut := e.chains[FieldCheckOutDate].Value(scope)

	if checkIn == "" || checkOut == "" {
		if found := FindDates(dom.InnerText(scope)); len(found) >= 2 {
			if checkIn == "" {
				checkIn = found[0]
			}
			if checkOut == "" {
				checkOut = found[1]
			}
		}
	}

	if checkIn != "" {
		checkIn = NormalizeDate(checkIn)
	}
	if checkOut != "" {
		checkOut = NormalizeDate(checkOut)
	}
	return checkIn, checkOut
}

// Merge overlays the non-empty values of a detail-page record on the record
// read from the list view
func Merge(detail, basic models.ReservationRecord) models.ReservationRecord {
	merged := basic

	from := stringFields(&detail)
	for name, dst := range stringFields(&merged) {
		if v := *from[name]; v != "" {
			*dst = v
		}
	}

	if !detail.ExtractedAt.IsZero() {
		merged.ExtractedAt = detail.ExtractedAt
	}
	merged.DetailedPage = detail.DetailedPage || basic.DetailedPage
	merged.Nights = Nights(merged.CheckInDate, merged.CheckOutDate)
	return merged
}

// stringFields addresses the string fields of rec by name
func stringFields(rec *models.ReservationRecord) map[string]*string {
	return map[string]*string{
		FieldHotelName:          &rec.HotelName,
		FieldConfirmationNumber: &rec.ConfirmationNumber,
		FieldCheckInDate:        &rec.CheckInDate,
		FieldCheckOutDate:       &rec.CheckOutDate,
		FieldTotalCost:          &rec.TotalCost,
		FieldPricePerNight:      &rec.PricePerNight,
		FieldBaseRate:           &rec.BaseRate,
		FieldTaxes:              &rec.Taxes,
		FieldFees:               &rec.Fees,
		FieldPointsUsed:         &rec.PointsUsed,
		FieldPointsEarned:       &rec.PointsEarned,
		FieldPromoCode:          &rec.PromoCode,
		FieldRoomType:           &rec.RoomType,
		FieldPaymentMethod:      &rec.PaymentMethod,
		FieldCancellationPolicy: &rec.CancellationPolicy,
		FieldAddress:            &rec.Address,
		"source":                &rec.Source,
	}
}
