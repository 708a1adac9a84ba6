package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williampepple1/trip-extractor/internal/engine"
	tio "github.com/williampepple1/trip-extractor/internal/io"
	"github.com/williampepple1/trip-extractor/pkg/models"
)

const savedList = `<html><body><main>
<div class="reservation-card">
	<h3 class="hotel-name">Hotel Alpha</h3>
	<p>Confirmation: ABC12345</p>
	<p>Check-in: Jun 10, 2099</p>
	<p>Check-out: Jun 12, 2099</p>
	<p>Total: $450.00 for your stay, room and taxes included.</p>
</div>
</main></body></html>`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func nights(n int) *int { return &n }

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tripextract dev")
}

func TestShow_SortedWithPlaceholders(t *testing.T) {
	storeFile := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, tio.NewFileStore(storeFile).Save(context.Background(), engine.StoreKey, []models.ReservationRecord{
		{HotelName: "Hotel Late", CheckInDate: "2099-09-01", CheckOutDate: "2099-09-03", Nights: nights(2), TotalCost: "$300.00"},
		{HotelName: "Hotel Early", CheckInDate: "2099-06-01"},
	}))

	out, err := execute(t, "show", "--store", storeFile)
	require.NoError(t, err)

	assert.Less(t, strings.Index(out, "Hotel Early"), strings.Index(out, "Hotel Late"))
	assert.Contains(t, out, "N/A")
	assert.Contains(t, out, "None")
	assert.Contains(t, out, "$300.00")
}

func TestShow_Empty(t *testing.T) {
	out, err := execute(t, "show", "--store", filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	assert.Contains(t, out, "No reservations stored")
}

func TestExportAndClear(t *testing.T) {
	dir := t.TempDir()
	storeFile := filepath.Join(dir, "store.json")
	require.NoError(t, tio.NewFileStore(storeFile).Save(context.Background(), engine.StoreKey, []models.ReservationRecord{
		{HotelName: "Hotel Alpha", CheckInDate: "2099-06-10"},
	}))

	csvFile := filepath.Join(dir, "out.csv")
	out, err := execute(t, "export", "--store", storeFile, "--format", "csv", "--output", csvFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 reservations")

	data, err := os.ReadFile(csvFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Hotel Alpha,,2099-06-10")

	_, err = execute(t, "clear", "--store", storeFile)
	require.NoError(t, err)

	records, err := tio.NewFileStore(storeFile).Load(engine.StoreKey)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExport_UnsupportedFormat(t *testing.T) {
	_, err := execute(t, "export", "--store", filepath.Join(t.TempDir(), "store.json"), "--format", "xml")
	assert.ErrorIs(t, err, tio.ErrUnsupportedFormat)
}

func TestParse_SavedPage(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "trips.html")
	require.NoError(t, os.WriteFile(page, []byte(savedList), 0o644))
	storeFile := filepath.Join(dir, "store.json")
	output := filepath.Join(dir, "out.json")

	out, err := execute(t, "parse", page, "--store", storeFile, "--output", output, "--save")
	require.NoError(t, err)
	assert.Contains(t, out, "Success: 1, Failures: 0")

	records, err := tio.NewFileStore(storeFile).Load(engine.StoreKey)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Hotel Alpha", records[0].HotelName)
	assert.Equal(t, "ABC12345", records[0].ConfirmationNumber)

	_, err = os.Stat(output)
	assert.NoError(t, err)
}

func TestParse_NoSources(t *testing.T) {
	_, err := execute(t, "parse", "--store", filepath.Join(t.TempDir(), "store.json"))
	assert.ErrorIs(t, err, tio.ErrNoSources)
}
