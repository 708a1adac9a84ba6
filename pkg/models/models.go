package models

import (
	"time"
)

// ReservationRecord is one hotel stay extracted from a reservations page
type ReservationRecord struct {
	HotelName          string    `json:"hotelName"`
	ConfirmationNumber string    `json:"confirmationNumber,omitempty"`
	CheckInDate        string    `json:"checkInDate,omitempty"`
	CheckOutDate       string    `json:"checkOutDate,omitempty"`
	Nights             *int      `json:"nights,omitempty"`
	TotalCost          string    `json:"totalCost,omitempty"`
	PricePerNight      string    `json:"pricePerNight,omitempty"`
	BaseRate           string    `json:"baseRate,omitempty"`
	Taxes              string    `json:"taxes,omitempty"`
	Fees               string    `json:"fees,omitempty"`
	PointsUsed         string    `json:"pointsUsed,omitempty"`
	PointsEarned       string    `json:"pointsEarned,omitempty"`
	PromoCode          string    `json:"promoCode,omitempty"`
	RoomType           string    `json:"roomType,omitempty"`
	PaymentMethod      string    `json:"paymentMethod,omitempty"`
	CancellationPolicy string    `json:"cancellationPolicy,omitempty"`
	Address            string    `json:"address,omitempty"`
	ExtractedAt        time.Time `json:"extractedAt"`
	Source             string    `json:"source"`
	DetailedPage       bool      `json:"detailedPage"`
}

// NightsOrZero returns the derived night count, or 0 when it is absent
func (r ReservationRecord) NightsOrZero() int {
	if r.Nights == nil {
		return 0
	}
	return *r.Nights
}

// DebugLevel classifies a debug event
type DebugLevel string

const (
	DebugInfo    DebugLevel = "info"
	DebugSuccess DebugLevel = "success"
	DebugWarning DebugLevel = "warning"
	DebugError   DebugLevel = "error"
)

// ProgressEvent reports how far an extraction run has progressed
type ProgressEvent struct {
	RunID   string `json:"runId,omitempty"`
	Percent int    `json:"percent"`
	Text    string `json:"text"`
}

// DebugEvent is a diagnostic message emitted during a run
type DebugEvent struct {
	RunID   string     `json:"runId,omitempty"`
	Level   DebugLevel `json:"type"`
	Message string     `json:"message"`
	Time    time.Time  `json:"time"`
}

// PageResult represents the result of running an extraction over one page source
type PageResult struct {
	Source    string              `json:"source"`
	Records   []ReservationRecord `json:"records,omitempty"`
	Err       string              `json:"error,omitempty"`
	Duration  time.Duration       `json:"duration"`
	Timestamp time.Time           `json:"timestamp"`
}
