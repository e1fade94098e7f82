package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ihute/transit-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// DriverRepository handles drivers and their private cars
type DriverRepository struct {
	db *sqlx.DB
}

// NewDriverRepository creates a new DriverRepository
func NewDriverRepository(db *sqlx.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

const driverColumns = `
	driver_id, name, phone, email, password_hash, license_number,
	status, lat, lng, created_at, updated_at`

// Create inserts an active driver. Duplicate phone, email or license
// surfaces as a unique violation.
func (r *DriverRepository) Create(ctx context.Context, driver *models.Driver) error {
	query := `
		INSERT INTO drivers (name, phone, email, password_hash, license_number, status)
		VALUES ($1, $2, $3, $4, $5, 'active')
		RETURNING driver_id, status, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		driver.Name, driver.Phone, driver.Email, driver.PasswordHash, driver.LicenseNumber,
	).Scan(&driver.ID, &driver.Status, &driver.CreatedAt, &driver.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}
	return nil
}

// GetByEmail returns the driver or nil
func (r *DriverRepository) GetByEmail(ctx context.Context, email string) (*models.Driver, error) {
	return r.getOne(ctx, `SELECT `+driverColumns+` FROM drivers WHERE LOWER(email) = LOWER($1)`, email)
}

// GetByID returns the driver or nil
func (r *DriverRepository) GetByID(ctx context.Context, driverID int64) (*models.Driver, error) {
	return r.getOne(ctx, `SELECT `+driverColumns+` FROM drivers WHERE driver_id = $1`, driverID)
}

func (r *DriverRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.Driver, error) {
	var driver models.Driver
	err := r.db.GetContext(ctx, &driver, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}
	return &driver, nil
}

// UpdateLocation stores the driver's last reported position. It returns nil
// when the driver does not exist.
func (r *DriverRepository) UpdateLocation(ctx context.Context, driverID int64, lat, lng float64) (*models.Driver, error) {
	query := `
		UPDATE drivers SET lat = $1, lng = $2, updated_at = NOW()
		WHERE driver_id = $3
		RETURNING ` + driverColumns

	var driver models.Driver
	err := r.db.GetContext(ctx, &driver, query, lat, lng, driverID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update driver location: %w", err)
	}
	return &driver, nil
}

// CreateCar registers a car and initializes its seat ledger in the same transaction
func (r *DriverRepository) CreateCar(ctx context.Context, car *models.PrivateCar) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO private_cars (driver_id, plate_number, car_type, seat_count, status)
		VALUES ($1, $2, $3, $4, 'active')
		RETURNING car_id, status, created_at`

	err = tx.QueryRowxContext(ctx, query, car.DriverID, car.PlateNumber, car.CarType, car.SeatCount).
		Scan(&car.ID, &car.Status, &car.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create car: %w", err)
	}

	if err := NewSeatLedgerRepository(tx).Initialize(ctx, models.CarRef(car.ID), car.SeatCount); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
