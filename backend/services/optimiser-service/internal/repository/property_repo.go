package repository

import (
	"context"
	"database/sql"
	"errors"

	"greenshift/backend/services/optimiser-service/internal/models"
)

// ErrPropertyNotFound represents missing property rows.
var ErrPropertyNotFound = errors.New("property not found")

// PropertyRepository handles CRUD for properties and their embedded devices.
type PropertyRepository struct {
	db *sql.DB
}

// NewPropertyRepository returns repository instance.
func NewPropertyRepository(db *sql.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// Create inserts a property together with its devices.
func (r *PropertyRepository) Create(ctx context.Context, property *models.Property) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const propertyQuery = `
		INSERT INTO properties (address, location, sq_footage, mpan_id, tariff_id, portfolio_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	if err := tx.QueryRowContext(ctx, propertyQuery,
		property.Address, property.Location, property.SqFootage,
		property.MpanID, property.TariffID, property.PortfolioID,
	).Scan(&property.ID); err != nil {
		return err
	}

	const deviceQuery = `
		INSERT INTO devices (property_id, name, average_draw_kw, is_shiftable)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	for i := range property.Devices {
		device := &property.Devices[i]
		device.PropertyID = property.ID
		if err := tx.QueryRowContext(ctx, deviceQuery,
			property.ID, device.Name, device.AverageDrawKW, device.IsShiftable,
		).Scan(&device.ID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID fetches a property with its device list.
func (r *PropertyRepository) GetByID(ctx context.Context, id int64) (*models.Property, error) {
	const query = `
		SELECT id, address, location, sq_footage, mpan_id, tariff_id, portfolio_id
		FROM properties
		WHERE id = $1
		LIMIT 1
	`
	row := r.db.QueryRowContext(ctx, query, id)

	var property models.Property
	if err := row.Scan(&property.ID, &property.Address, &property.Location, &property.SqFootage,
		&property.MpanID, &property.TariffID, &property.PortfolioID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}

	devices, err := r.devicesFor(ctx, property.ID)
	if err != nil {
		return nil, err
	}
	property.Devices = devices
	return &property, nil
}

// ListByPortfolio fetches all properties in a portfolio, devices included.
func (r *PropertyRepository) ListByPortfolio(ctx context.Context, portfolioID int64) ([]models.Property, error) {
	const query = `
		SELECT id, address, location, sq_footage, mpan_id, tariff_id, portfolio_id
		FROM properties
		WHERE portfolio_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		var property models.Property
		if err := rows.Scan(&property.ID, &property.Address, &property.Location, &property.SqFootage,
			&property.MpanID, &property.TariffID, &property.PortfolioID); err != nil {
			return nil, err
		}
		properties = append(properties, property)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range properties {
		devices, err := r.devicesFor(ctx, properties[i].ID)
		if err != nil {
			return nil, err
		}
		properties[i].Devices = devices
	}
	return properties, nil
}

// AddDevice attaches a new device to an existing property.
func (r *PropertyRepository) AddDevice(ctx context.Context, propertyID int64, device *models.Device) error {
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM properties WHERE id = $1)`, propertyID,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrPropertyNotFound
	}

	const query = `
		INSERT INTO devices (property_id, name, average_draw_kw, is_shiftable)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	device.PropertyID = propertyID
	return r.db.QueryRowContext(ctx, query,
		propertyID, device.Name, device.AverageDrawKW, device.IsShiftable,
	).Scan(&device.ID)
}

func (r *PropertyRepository) devicesFor(ctx context.Context, propertyID int64) ([]models.Device, error) {
	const query = `
		SELECT id, property_id, name, average_draw_kw, is_shiftable
		FROM devices
		WHERE property_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		var device models.Device
		if err := rows.Scan(&device.ID, &device.PropertyID, &device.Name,
			&device.AverageDrawKW, &device.IsShiftable); err != nil {
			return nil, err
		}
		devices = append(devices, device)
	}
	return devices, rows.Err()
}
