package io_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williampepple1/trip-extractor/internal/config"
	tio "github.com/williampepple1/trip-extractor/internal/io"
	"github.com/williampepple1/trip-extractor/pkg/models"
)

func nights(n int) *int { return &n }

func sampleRecords() []models.ReservationRecord {
	return []models.ReservationRecord{
		{
			HotelName:    "Hotel Alpha",
			CheckInDate:  "2099-06-10",
			CheckOutDate: "2099-06-12",
			Nights:       nights(2),
			TotalCost:    "$450.00",
			Source:       "https://example.com/trips",
			ExtractedAt:  time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		{HotelName: "Hotel, \"Beta\"", Source: "file:///tmp/beta.html"},
	}
}

func TestSourceReader_ReadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.txt")
	require.NoError(t, os.WriteFile(path, []byte("# saved pages\npage1.html\n\n  https://example.com/trips  \n#skip\n"), 0o644))

	sources, err := tio.NewSourceReader(&config.IOConfig{}).ReadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"page1.html", "https://example.com/trips"}, sources)
}

func TestSourceReader_GetSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.txt")
	require.NoError(t, os.WriteFile(path, []byte("b.html\na.html\n"), 0o644))

	r := tio.NewSourceReader(&config.IOConfig{InputFile: path})
	sources, err := r.GetSources([]string{"a.html"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.html", "b.html"}, sources)

	_, err = tio.NewSourceReader(&config.IOConfig{}).GetSources(nil)
	assert.ErrorIs(t, err, tio.ErrNoSources)

	_, err = tio.NewSourceReader(&config.IOConfig{InputFile: filepath.Join(t.TempDir(), "missing")}).GetSources(nil)
	assert.Error(t, err)
}

func TestFileStore_SaveLoadClear(t *testing.T) {
	store := tio.NewFileStore(filepath.Join(t.TempDir(), "nested", "store.json"))
	ctx := context.Background()

	records, err := store.Load("reservations")
	require.NoError(t, err)
	assert.Nil(t, records, "missing file reads as empty")

	require.NoError(t, store.Save(ctx, "reservations", sampleRecords()))
	require.NoError(t, store.Save(ctx, "archive", sampleRecords()[:1]))

	loaded, err := store.Load("reservations")
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), loaded)

	require.NoError(t, store.Clear("reservations"))
	loaded, err = store.Load("reservations")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	archive, err := store.Load("archive")
	require.NoError(t, err)
	assert.Len(t, archive, 1, "other keys survive")

	assert.NoError(t, store.Clear("never-set"))
}

func TestFileStore_SaveKeepsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"settings":{"theme":"dark"}}`), 0o644))

	require.NoError(t, tio.NewFileStore(path).Save(context.Background(), "reservations", nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, `{"theme":"dark"}`, string(raw["settings"]))
	assert.JSONEq(t, `[]`, string(raw["reservations"]))
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := tio.NewFileStore(path).Load("reservations")
	assert.Error(t, err)
}

func TestFileStore_CancelledSave(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tio.NewFileStore(filepath.Join(t.TempDir(), "store.json")).Save(ctx, "reservations", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResultWriter_JSONDefaultName(t *testing.T) {
	t.Chdir(t.TempDir())
	now := time.Date(2030, 5, 6, 12, 0, 0, 0, time.UTC)

	path, err := tio.NewResultWriter(&config.IOConfig{}).WithClock(func() time.Time { return now }).SaveToFile(sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, "reservations-2030-05-06.json", path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []models.ReservationRecord
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, sampleRecords(), got)
}

func TestResultWriter_CSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.csv")

	path, err := tio.NewResultWriter(&config.IOConfig{OutputFile: out, OutputFormat: "CSV"}).SaveToFile(sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, out, path)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, "hotelName", rows[0][0])
	assert.Equal(t, []string{"Hotel Alpha", "", "2099-06-10", "2099-06-12", "2"}, rows[1][:5])
	assert.Equal(t, "2030-01-02T03:04:05Z", rows[1][len(rows[1])-1])
	assert.Equal(t, `Hotel, "Beta"`, rows[2][0])
	assert.Equal(t, "", rows[2][4])
}

func TestResultWriter_UnsupportedFormat(t *testing.T) {
	_, err := tio.NewResultWriter(&config.IOConfig{OutputFormat: "xml"}).SaveToFile(nil)
	assert.ErrorIs(t, err, tio.ErrUnsupportedFormat)
}

func TestEncodeJSON_EmptyIsArray(t *testing.T) {
	data, err := tio.EncodeJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))
}
