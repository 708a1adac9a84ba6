package extraction

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field names, matching the JSON names used in configuration
const (
	FieldHotelName          = "hotelName"
	FieldConfirmationNumber = "confirmationNumber"
	FieldCheckInDate        = "checkInDate"
	FieldCheckOutDate       = "checkOutDate"
	FieldTotalCost          = "totalCost"
	FieldPricePerNight      = "pricePerNight"
	FieldBaseRate           = "baseRate"
	FieldTaxes              = "taxes"
	FieldFees               = "fees"
	FieldPointsUsed         = "pointsUsed"
	FieldPointsEarned       = "pointsEarned"
	FieldPromoCode          = "promoCode"
	FieldRoomType           = "roomType"
	FieldPaymentMethod      = "paymentMethod"
	FieldCancellationPolicy = "cancellationPolicy"
	FieldAddress            = "address"
)

// Cancellation policy categories
const (
	CancellationFree       = "Free cancellation"
	CancellationNonRefund  = "Non-refundable"
	CancellationFeeApplies = "Cancellation fee applies"
)

const (
	maxHotelNameLength = 120
	moneyPattern       = `([$€£¥]?\s?\d[\d,]*(?:\.\d{1,2})?)`
	pointsPattern      = `(\d[\d,]*)`
)

// FieldSpec declares how one field is found: selectors scoped to the region
// first, then patterns over its visible text. Normalize runs on every
// candidate; a candidate normalizing to "" does not stop the chain.
type FieldSpec struct {
	Selectors []string
	Patterns  []Pattern
	Normalize func(string) string
}

// Chain builds the strategy chain for the field
func (f FieldSpec) Chain() Chain {
	chain := make(Chain, 0, len(f.Selectors)+len(f.Patterns))
	for _, s := range f.Selectors {
		chain = append(chain, normalized(SelectorStrategy(s), f.Normalize))
	}
	for _, p := range f.Patterns {
		chain = append(chain, normalized(PatternStrategy(p), f.Normalize))
	}
	return chain
}

// DefaultFields are the built-in specs, keyed by field name
func DefaultFields() map[string]FieldSpec {
	return map[string]FieldSpec{
		FieldHotelName: {
			Selectors: []string{
				".hotel-name",
				".property-name",
				"h1, h2, h3, h4",
				`[data-testid*="hotel"]`,
				`[data-testid*="property"]`,
			},
			Patterns: []Pattern{
				P(`(?i)\bhotel\s+[^,\n]+`, 0),
				P(`(?i)[^,\n]+\s+hotel\b`, 0),
				P(`(?i)\bmarriott\s+[^,\n]+`, 0),
				P(`(?i)[^,\n]+\s+marriott\b`, 0),
			},
			Normalize: normalizeHotelName,
		},
		FieldConfirmationNumber: {
			Selectors: []string{
				".confirmation-number",
				".confirmation",
				`[data-testid*="confirmation"]`,
				`[data-testid*="number"]`,
			},
			Patterns: []Pattern{
				P(`(?i:confirmation)(?:\s+(?i:number|no\.?|code))?[\s:#]*([A-Z0-9]{4,})\b`, 1),
				P(`(?i:reference|booking)(?:\s+(?i:number|no\.?))?[\s:#]*([A-Z0-9]{4,})\b`, 1),
				P(`#\s*([A-Z0-9]{6,})`, 1),
			},
			Normalize: normalizeConfirmation,
		},
		FieldCheckInDate: {
			Selectors: []string{
				".check-in-date",
				".checkin-date",
				`[data-testid*="checkin"]`,
				`[data-testid*="check-in"]`,
			},
			Normalize: strings.TrimSpace,
		},
		FieldCheckOutDate: {
			Selectors: []string{
				".check-out-date",
				".checkout-date",
				`[data-testid*="checkout"]`,
				`[data-testid*="check-out"]`,
			},
			Normalize: strings.TrimSpace,
		},
		FieldTotalCost: {
			Selectors: []string{
				".total-cost",
				".total-price",
				".grand-total",
				`[data-testid*="total"]`,
			},
			Patterns: []Pattern{
				P(`(?i)\btotal(?:\s+(?:cost|price|charges?|for\s+stay))?\s*:?\s*`+moneyPattern, 1),
			},
			Normalize: NormalizeMoney,
		},
		FieldPricePerNight: {
			Selectors: []string{
				".per-night",
				".nightly-rate",
				`[data-testid*="night"]`,
			},
			Patterns: []Pattern{
				P(moneyPattern+`\s*(?:/|per|a)\s*night`, 1),
				P(`(?i)(?:nightly\s+rate|per\s+night|avg\.?\s+nightly(?:\s+rate)?)\s*:?\s*`+moneyPattern, 1),
			},
			Normalize: NormalizeMoney,
		},
		FieldBaseRate: {
			Selectors: []string{".base-rate", ".room-rate", `[data-testid*="base-rate"]`},
			Patterns: []Pattern{
				P(`(?i)\b(?:base|room)\s+rate\s*:?\s*`+moneyPattern, 1),
				P(`(?i)\bsubtotal\s*:?\s*`+moneyPattern, 1),
			},
			Normalize: NormalizeMoney,
		},
		FieldTaxes: {
			Selectors: []string{".taxes", ".tax-amount", `[data-testid*="tax"]`},
			Patterns: []Pattern{
				P(`(?i)\btax(?:es)?(?:\s+and\s+fees)?\s*:?\s*`+moneyPattern, 1),
			},
			Normalize: NormalizeMoney,
		},
		FieldFees: {
			Selectors: []string{".fees", ".resort-fee", `[data-testid*="fee"]`},
			Patterns: []Pattern{
				P(`(?i)\b(?:resort|destination|service|amenity)\s+fees?\s*:?\s*`+moneyPattern, 1),
				P(`(?i)\bfees\s*:?\s*`+moneyPattern, 1),
			},
			Normalize: NormalizeMoney,
		},
		FieldPointsUsed: {
			Patterns: []Pattern{
				P(`(?i)\b(?:points\s+used|points\s+redeemed|redeemed\s+points)\s*:?\s*`+pointsPattern, 1),
				P(`(?i)`+pointsPattern+`\s*points\s+(?:used|redeemed)`, 1),
				P(`(?i)\b(?:redeem(?:ed|ing)?|using|used)\s+`+pointsPattern+`\s*points`, 1),
				P(`(?i)\bfor\s+`+pointsPattern+`\s*points`, 1),
			},
			Normalize: normalizePoints,
		},
		FieldPointsEarned: {
			Patterns: []Pattern{
				P(`(?i)\bpoints\s+earned\s*:?\s*`+pointsPattern, 1),
				P(`(?i)`+pointsPattern+`\s*(?:bonus\s+)?points\s+earned`, 1),
				P(`(?i)\bearn(?:ed|ing)?\s+`+pointsPattern+`\s*(?:bonus\s+)?points`, 1),
			},
			Normalize: normalizePoints,
		},
		FieldPromoCode: {
			Patterns: []Pattern{
				P(`(?i:promo(?:tion(?:al)?)?(?:\s+code)?)\s*[:#]\s*([A-Z0-9]{2,})`, 1),
				P(`(?i:(?:offer|rate|corporate)\s+code)\s*[:#]\s*([A-Z0-9]{2,})`, 1),
				P(`\b(?i:code)\s*[:#]\s*([A-Z0-9]{2,})`, 1),
			},
		},
		FieldRoomType: {
			Selectors: []string{".room-type", ".room-name", `[data-testid*="room"]`},
			Patterns: []Pattern{
				P(`(?i)\broom(?:\s+type)?\s*:\s*([^\n]{3,80})`, 1),
				P(`(?i)\b((?:\d\s+)?(?:king|queen|double|twin|deluxe|standard|superior|executive|guest)\b[^\n,.]{0,40}?\b(?:room|suite|beds?))\b`, 1),
			},
			Normalize: strings.TrimSpace,
		},
		FieldPaymentMethod: {
			Patterns: []Pattern{
				P(`(?i)\bpayment(?:\s+method)?\s*:\s*([^\n]{3,60})`, 1),
				P(`(?i)\b(?:paid|charged)\s+(?:with|to|using)\s+([^\n]{3,60})`, 1),
				P(`(?i)\b((?:visa|mastercard|master\s+card|american\s+express|amex|discover)(?:\s+(?:ending\s+in|ending|x+|\*+)\s*\d{4})?)`, 1),
			},
			Normalize: strings.TrimSpace,
		},
		FieldCancellationPolicy: {
			Patterns: []Pattern{
				Category(`(?i)\bfree\s+cancell?ation\b|\bcancel\s+(?:for\s+free|free\s+of\s+charge)`, CancellationFree),
				Category(`(?i)\bnon-?\s?refundable\b`, CancellationNonRefund),
				Category(`(?i)\bcancell?ation\s+(?:fee|charge|penalty)`, CancellationFeeApplies),
			},
		},
		FieldAddress: {
			Selectors: []string{
				".hotel-address",
				".property-address",
				".address",
				"address",
				`[data-testid*="address"]`,
			},
			Patterns: []Pattern{
				P(`(?im)^\s*(\d+\s+[A-Za-z0-9 .'-]+\b(?:Street|St|Avenue|Ave|Boulevard|Blvd|Road|Rd|Drive|Dr|Lane|Ln|Way|Place|Pl|Court|Ct|Parkway|Pkwy)\b\.?(?:,[^\n]{0,80})?)\s*$`, 1),
			},
			Normalize: collapse,
		},
	}
}

// BasicFields are the fields read from a list-view region
var BasicFields = []string{
	FieldHotelName,
	FieldConfirmationNumber,
	FieldCheckInDate,
	FieldCheckOutDate,
	FieldTotalCost,
	FieldPricePerNight,
	FieldPointsUsed,
	FieldPromoCode,
	FieldRoomType,
}

// DetailFields are read from a detail page in addition to BasicFields
var DetailFields = []string{
	FieldBaseRate,
	FieldTaxes,
	FieldFees,
	FieldPointsEarned,
	FieldPaymentMethod,
	FieldCancellationPolicy,
	FieldAddress,
}

var (
	confirmationLabel = regexp.MustCompile(`(?i)^(?:confirmation|conf\.?|reference|booking)(?:\s+(?:number|no\.?|code))?(?:\s*[:#][\s:#]*|\s+)`)
	spaces            = regexp.MustCompile(`\s+`)
)

func collapse(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

func normalizeHotelName(s string) string {
	s = collapse(s)
	if utf8.RuneCountInString(s) > maxHotelNameLength {
		s = strings.TrimSpace(string([]rune(s)[:maxHotelNameLength]))
	}
	return s
}

func normalizeConfirmation(s string) string {
	return strings.TrimSpace(confirmationLabel.ReplaceAllString(collapse(s), ""))
}

func normalizePoints(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}
