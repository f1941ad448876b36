package repository

import (
	"context"
	"database/sql"
	"time"

	"greenshift/backend/services/optimiser-service/internal/models"
)

// UsageRepository handles the half-hourly usage_logs time series.
type UsageRepository struct {
	db *sql.DB
}

// NewUsageRepository returns repository instance.
func NewUsageRepository(db *sql.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// InsertBatch stores a batch of readings in one transaction. Conflicting
// (mpan, timestamp) pairs overwrite the stored consumption so re-imports
// are safe.
func (r *UsageRepository) InsertBatch(ctx context.Context, readings []models.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO usage_logs (ts, mpan_id, kwh_consumption, reading_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (mpan_id, ts) DO UPDATE
		SET kwh_consumption = EXCLUDED.kwh_consumption,
		    reading_type = EXCLUDED.reading_type
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, reading := range readings {
		if _, err := stmt.ExecContext(ctx,
			reading.Timestamp.UTC(), reading.MpanID,
			reading.ConsumptionKWh, reading.ReadingType,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListByMeter fetches readings for one meter within [start, end), ordered by
// timestamp.
func (r *UsageRepository) ListByMeter(ctx context.Context, mpanID string, start, end time.Time) ([]models.Reading, error) {
	const query = `
		SELECT ts, mpan_id, kwh_consumption, reading_type
		FROM usage_logs
		WHERE mpan_id = $1 AND ts >= $2 AND ts < $3
		ORDER BY ts
	`
	rows, err := r.db.QueryContext(ctx, query, mpanID, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []models.Reading
	for rows.Next() {
		var reading models.Reading
		if err := rows.Scan(&reading.Timestamp, &reading.MpanID,
			&reading.ConsumptionKWh, &reading.ReadingType); err != nil {
			return nil, err
		}
		reading.Timestamp = reading.Timestamp.UTC()
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}
