package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"greenshift/backend/services/optimiser-service/internal/models"
)

// TariffWriter persists tariffs parsed from seed files.
type TariffWriter interface {
	Create(ctx context.Context, tariff *models.Tariff) error
}

// ReadingWriter persists meter readings parsed from seed files.
type ReadingWriter interface {
	InsertBatch(ctx context.Context, readings []models.Reading) error
}

// ReadReadingsCSV parses half-hourly meter readings. The expected header is
// mpan_id,timestamp,kwh_consumption,reading_type with RFC 3339 timestamps.
func ReadReadingsCSV(r io.Reader) ([]models.Reading, error) {
	records, err := readAll(r, []string{"mpan_id", "timestamp", "kwh_consumption", "reading_type"})
	if err != nil {
		return nil, err
	}

	readings := make([]models.Reading, 0, len(records))
	for i, record := range records {
		ts, err := time.Parse(time.RFC3339, record[1])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid timestamp %q: %w", i+2, record[1], err)
		}
		kwh, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid kwh_consumption %q: %w", i+2, record[2], err)
		}
		readingType := record[3]
		if readingType != models.ReadingTypeActual && readingType != models.ReadingTypeSimulated {
			return nil, fmt.Errorf("row %d: unknown reading_type %q", i+2, readingType)
		}
		readings = append(readings, models.Reading{
			Timestamp:      ts.UTC(),
			MpanID:         record[0],
			ConsumptionKWh: kwh,
			ReadingType:    readingType,
		})
	}
	return readings, nil
}

// ReadTariffsCSV parses tariff definitions. The expected header is
// provider,payment_type,region,standing_charge_per_day,carbon_score,peak_rate,off_peak_rate.
func ReadTariffsCSV(r io.Reader) ([]models.Tariff, error) {
	records, err := readAll(r, []string{
		"provider", "payment_type", "region",
		"standing_charge_per_day", "carbon_score", "peak_rate", "off_peak_rate",
	})
	if err != nil {
		return nil, err
	}

	tariffs := make([]models.Tariff, 0, len(records))
	for i, record := range records {
		standing, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid standing_charge_per_day %q: %w", i+2, record[3], err)
		}
		carbon, err := strconv.Atoi(record[4])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid carbon_score %q: %w", i+2, record[4], err)
		}
		peak, err := strconv.ParseFloat(record[5], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid peak_rate %q: %w", i+2, record[5], err)
		}
		offPeak, err := strconv.ParseFloat(record[6], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid off_peak_rate %q: %w", i+2, record[6], err)
		}
		tariffs = append(tariffs, models.Tariff{
			Provider:             record[0],
			PaymentType:          record[1],
			Region:               record[2],
			StandingChargePerDay: standing,
			CarbonScore:          carbon,
			RateSchedule: map[string]float64{
				"peak":     peak,
				"off_peak": offPeak,
			},
		})
	}
	return tariffs, nil
}

// SeedDir loads tariffs.csv and readings.csv from dir, if present, and
// persists them. Missing files are skipped so a service can start against
// an already seeded database.
func SeedDir(ctx context.Context, dir string, tariffs TariffWriter, readings ReadingWriter, logger *zap.Logger) error {
	if err := seedFile(dir, "tariffs.csv", logger, func(f io.Reader) error {
		parsed, err := ReadTariffsCSV(f)
		if err != nil {
			return err
		}
		for i := range parsed {
			if err := tariffs.Create(ctx, &parsed[i]); err != nil {
				return fmt.Errorf("persisting tariff %q: %w", parsed[i].Provider, err)
			}
		}
		logger.Info("seeded tariffs", zap.Int("count", len(parsed)))
		return nil
	}); err != nil {
		return err
	}

	return seedFile(dir, "readings.csv", logger, func(f io.Reader) error {
		parsed, err := ReadReadingsCSV(f)
		if err != nil {
			return err
		}
		if err := readings.InsertBatch(ctx, parsed); err != nil {
			return fmt.Errorf("persisting readings: %w", err)
		}
		logger.Info("seeded readings", zap.Int("count", len(parsed)))
		return nil
	})
}

func seedFile(dir, name string, logger *zap.Logger, load func(io.Reader) error) error {
	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		logger.Debug("seed file not found, skipping", zap.String("path", path))
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	if err := load(f); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func readAll(r io.Reader, wantHeader []string) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(wantHeader)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty csv input")
	}
	if err != nil {
		return nil, err
	}
	for i, want := range wantHeader {
		if header[i] != want {
			return nil, fmt.Errorf("unexpected header: column %d is %q, want %q", i+1, header[i], want)
		}
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}
