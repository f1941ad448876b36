package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"greenshift/backend/services/optimiser-service/internal/models"
)

const readingsCSV = `mpan_id,timestamp,kwh_consumption,reading_type
1200050821480,2025-01-01T18:00:00Z,2.0,A
1200050821480,2025-01-01T18:30:00+01:00,0.5,S
`

const tariffsCSV = `provider,payment_type,region,standing_charge_per_day,carbon_score,peak_rate,off_peak_rate
OctopusGo,direct_debit,LDN,0.45,82,30.0,10.0
`

func TestReadReadingsCSV(t *testing.T) {
	readings, err := ReadReadingsCSV(strings.NewReader(readingsCSV))
	require.NoError(t, err)
	require.Len(t, readings, 2)

	assert.Equal(t, "1200050821480", readings[0].MpanID)
	assert.Equal(t, 2.0, readings[0].ConsumptionKWh)
	assert.Equal(t, models.ReadingTypeActual, readings[0].ReadingType)
	assert.Equal(t, time.Date(2025, 1, 1, 18, 0, 0, 0, time.UTC), readings[0].Timestamp)

	// Offset timestamps are normalised to UTC.
	assert.Equal(t, time.Date(2025, 1, 1, 17, 30, 0, 0, time.UTC), readings[1].Timestamp)
	assert.Equal(t, models.ReadingTypeSimulated, readings[1].ReadingType)
}

func TestReadReadingsCSV_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty input",
			input: "",
			want:  "empty csv input",
		},
		{
			name:  "wrong header",
			input: "meter,timestamp,kwh_consumption,reading_type\n",
			want:  "unexpected header",
		},
		{
			name:  "bad timestamp",
			input: "mpan_id,timestamp,kwh_consumption,reading_type\nm,yesterday,1.0,A\n",
			want:  "invalid timestamp",
		},
		{
			name:  "bad consumption",
			input: "mpan_id,timestamp,kwh_consumption,reading_type\nm,2025-01-01T18:00:00Z,lots,A\n",
			want:  "invalid kwh_consumption",
		},
		{
			name:  "unknown reading type",
			input: "mpan_id,timestamp,kwh_consumption,reading_type\nm,2025-01-01T18:00:00Z,1.0,X\n",
			want:  "unknown reading_type",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadReadingsCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadTariffsCSV(t *testing.T) {
	tariffs, err := ReadTariffsCSV(strings.NewReader(tariffsCSV))
	require.NoError(t, err)
	require.Len(t, tariffs, 1)

	got := tariffs[0]
	assert.Equal(t, "OctopusGo", got.Provider)
	assert.Equal(t, "direct_debit", got.PaymentType)
	assert.Equal(t, "LDN", got.Region)
	assert.Equal(t, 0.45, got.StandingChargePerDay)
	assert.Equal(t, 82, got.CarbonScore)
	assert.Equal(t, map[string]float64{"peak": 30.0, "off_peak": 10.0}, got.RateSchedule)
}

type fakeTariffWriter struct {
	created []models.Tariff
	nextID  int64
}

func (f *fakeTariffWriter) Create(_ context.Context, tariff *models.Tariff) error {
	f.nextID++
	tariff.ID = f.nextID
	f.created = append(f.created, *tariff)
	return nil
}

type fakeReadingWriter struct {
	inserted []models.Reading
}

func (f *fakeReadingWriter) InsertBatch(_ context.Context, readings []models.Reading) error {
	f.inserted = append(f.inserted, readings...)
	return nil
}

func TestSeedDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tariffs.csv"), []byte(tariffsCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readings.csv"), []byte(readingsCSV), 0o644))

	tariffs := &fakeTariffWriter{}
	readings := &fakeReadingWriter{}
	err := SeedDir(context.Background(), dir, tariffs, readings, zap.NewNop())
	require.NoError(t, err)

	assert.Len(t, tariffs.created, 1)
	assert.Len(t, readings.inserted, 2)
}

func TestSeedDir_MissingFilesAreSkipped(t *testing.T) {
	tariffs := &fakeTariffWriter{}
	readings := &fakeReadingWriter{}
	err := SeedDir(context.Background(), t.TempDir(), tariffs, readings, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, tariffs.created)
	assert.Empty(t, readings.inserted)
}
