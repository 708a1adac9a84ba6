package io

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/williampepple1/trip-extractor/internal/config"
	"github.com/williampepple1/trip-extractor/pkg/models"
)

var (
	// ErrUnsupportedFormat is returned for output formats other than json and csv
	ErrUnsupportedFormat = errors.New("unsupported output format")
	// ErrNoSources is returned when a batch run has nothing to read
	ErrNoSources = errors.New("no sources given")
)

// Output formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// csvHeader is the column order of CSV exports
var csvHeader = []string{
	"hotelName", "confirmationNumber", "checkInDate", "checkOutDate", "nights",
	"totalCost", "pricePerNight", "baseRate", "taxes", "fees",
	"pointsUsed", "pointsEarned", "promoCode", "roomType", "paymentMethod",
	"cancellationPolicy", "address", "source", "detailedPage", "extractedAt",
}

// ResultWriter exports reservations to a file
type ResultWriter struct {
	Config *config.IOConfig
	now    func() time.Time
}

// NewResultWriter creates a new result writer
func NewResultWriter(config *config.IOConfig) *ResultWriter {
	return &ResultWriter{
		Config: config,
		now:    time.Now,
	}
}

// WithClock sets the clock used for default file names
func (w *ResultWriter) WithClock(now func() time.Time) *ResultWriter {
	w.now = now
	return w
}

// DefaultFileName is reservations-YYYY-MM-DD.<format>
func DefaultFileName(now time.Time, format string) string {
	return fmt.Sprintf("reservations-%s.%s", now.Format(time.DateOnly), format)
}

// SaveToFile writes records in the configured format and returns the file written
func (w *ResultWriter) SaveToFile(records []models.ReservationRecord) (string, error) {
	format := strings.ToLower(strings.TrimSpace(w.Config.OutputFormat))
	if format == "" {
		format = FormatJSON
	}

	var data []byte
	var err error
	switch format {
	case FormatJSON:
		data, err = EncodeJSON(records)
	case FormatCSV:
		data, err = EncodeCSV(records)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, w.Config.OutputFormat)
	}
	if err != nil {
		return "", err
	}

	path := w.Config.OutputFile
	if path == "" {
		path = DefaultFileName(w.now(), format)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// EncodeJSON renders records as an indented JSON array
func EncodeJSON(records []models.ReservationRecord) ([]byte, error) {
	if records == nil {
		records = []models.ReservationRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return append(data, '\n'), nil
}

// EncodeCSV renders records as CSV with a header row
func EncodeCSV(records []models.ReservationRecord) ([]byte, error) {
	var buf strings.Builder
	cw := csv.NewWriter(&buf)

	if err := cw.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range records {
		nights := ""
		if r.Nights != nil {
			nights = strconv.Itoa(*r.Nights)
		}
		extractedAt := ""
		if !r.ExtractedAt.IsZero() {
			extractedAt = r.ExtractedAt.Format(time.RFC3339)
		}
		row := []string{
			r.HotelName, r.ConfirmationNumber, r.CheckInDate, r.CheckOutDate, nights,
			r.TotalCost, r.PricePerNight, r.BaseRate, r.Taxes, r.Fees,
			r.PointsUsed, r.PointsEarned, r.PromoCode, r.RoomType, r.PaymentMethod,
			r.CancellationPolicy, r.Address, r.Source, strconv.FormatBool(r.DetailedPage), extractedAt,
		}
		if err := cw.Write(row); err != nil {
			return nil, err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return []byte(buf.String()), nil
}
