package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"greenshift/backend/services/optimiser-service/internal/models"
)

// ErrTariffNotFound represents missing tariff rows.
var ErrTariffNotFound = errors.New("tariff not found")

// TariffRepository handles CRUD for the tariffs table. The rate schedule is
// stored as a JSONB band -> rate map.
type TariffRepository struct {
	db *sql.DB
}

// NewTariffRepository returns repository instance.
func NewTariffRepository(db *sql.DB) *TariffRepository {
	return &TariffRepository{db: db}
}

// Create inserts a new tariff.
func (r *TariffRepository) Create(ctx context.Context, tariff *models.Tariff) error {
	schedule, err := json.Marshal(tariff.RateSchedule)
	if err != nil {
		return fmt.Errorf("tariff: encode rate schedule: %w", err)
	}

	const query = `
		INSERT INTO tariffs (provider, payment_type, region, standing_charge_pd, carbon_score, rate_schedule)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return r.db.QueryRowContext(ctx, query,
		tariff.Provider, tariff.PaymentType, tariff.Region,
		tariff.StandingChargePerDay, tariff.CarbonScore, schedule,
	).Scan(&tariff.ID)
}

// GetByID fetches a tariff by its id.
func (r *TariffRepository) GetByID(ctx context.Context, id int64) (*models.Tariff, error) {
	const query = `
		SELECT id, provider, payment_type, region, standing_charge_pd, carbon_score, rate_schedule
		FROM tariffs
		WHERE id = $1
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, query, id)

	var (
		tariff   models.Tariff
		schedule []byte
	)
	if err := row.Scan(&tariff.ID, &tariff.Provider, &tariff.PaymentType, &tariff.Region,
		&tariff.StandingChargePerDay, &tariff.CarbonScore, &schedule); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTariffNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(schedule, &tariff.RateSchedule); err != nil {
		return nil, fmt.Errorf("tariff: decode rate schedule: %w", err)
	}
	return &tariff, nil
}
