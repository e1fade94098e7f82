package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ihute/transit-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// CatalogRepository handles expresses, routes, fares, buses and trips
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ============================================================================
// EXPRESSES, ROUTES, FARES
// ============================================================================

// CreateExpress registers a bus company
func (r *CatalogRepository) CreateExpress(ctx context.Context, express *models.Express) error {
	query := `
		INSERT INTO expresses (name, logo_url, status)
		VALUES ($1, $2, 'active')
		RETURNING express_id, status, created_at`

	err := r.db.QueryRowxContext(ctx, query, express.Name, express.LogoURL).
		Scan(&express.ID, &express.Status, &express.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create express: %w", err)
	}
	return nil
}

// CreateRoute adds a city pair
func (r *CatalogRepository) CreateRoute(ctx context.Context, route *models.Route) error {
	query := `
		INSERT INTO routes (from_city, to_city, distance_km)
		VALUES ($1, $2, $3)
		RETURNING route_id, created_at`

	err := r.db.QueryRowxContext(ctx, query, route.FromCity, route.ToCity, route.DistanceKM).
		Scan(&route.ID, &route.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create route: %w", err)
	}
	return nil
}

// UpsertRoutePrice sets the fare an express charges on a route
func (r *CatalogRepository) UpsertRoutePrice(ctx context.Context, price *models.ExpressRoute) error {
	query := `
		INSERT INTO express_routes (express_id, route_id, price_rwf)
		VALUES ($1, $2, $3)
		ON CONFLICT (express_id, route_id) DO UPDATE SET price_rwf = EXCLUDED.price_rwf
		RETURNING id`

	err := r.db.QueryRowxContext(ctx, query, price.ExpressID, price.RouteID, price.PriceRWF).Scan(&price.ID)
	if err != nil {
		return fmt.Errorf("failed to set route price: %w", err)
	}
	return nil
}

// ============================================================================
// BUSES
// ============================================================================

// CreateBus registers a bus under an express
func (r *CatalogRepository) CreateBus(ctx context.Context, bus *models.Bus) error {
	query := `
		INSERT INTO buses (express_id, plate_number, bus_type, seat_count, status)
		VALUES ($1, $2, $3, $4, 'active')
		RETURNING bus_id, status, created_at`

	err := r.db.QueryRowxContext(ctx, query, bus.ExpressID, bus.PlateNumber, bus.BusType, bus.SeatCount).
		Scan(&bus.ID, &bus.Status, &bus.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bus: %w", err)
	}
	return nil
}

// GetBus returns the bus or nil if it does not exist
func (r *CatalogRepository) GetBus(ctx context.Context, busID int64) (*models.Bus, error) {
	query := `
		SELECT bus_id, express_id, plate_number, bus_type, seat_count, status, created_at
		FROM buses
		WHERE bus_id = $1`

	var bus models.Bus
	err := r.db.GetContext(ctx, &bus, query, busID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bus: %w", err)
	}
	return &bus, nil
}

// ============================================================================
// TRIPS
// ============================================================================

const tripColumns = `
	trip_id, bus_id, route_id, driver_id, departure_date,
	departure_time::text AS departure_time, status, created_at, updated_at`

// CreateTrip inserts a scheduled trip and initializes its seat ledger from
// the bus seat count in the same transaction.
func (r *CatalogRepository) CreateTrip(ctx context.Context, trip *models.Trip, seatCount int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO trips (bus_id, route_id, driver_id, departure_date, departure_time, status)
		VALUES ($1, $2, $3, $4, $5, 'scheduled')
		RETURNING ` + tripColumns

	err = tx.GetContext(ctx, trip, query,
		trip.BusID, trip.RouteID, trip.DriverID,
		trip.DepartureDate.Format("2006-01-02"), trip.DepartureTime,
	)
	if err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}

	if err := NewSeatLedgerRepository(tx).Initialize(ctx, models.TripRef(trip.ID), seatCount); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetTripDeparture returns the trip's departure as a wall-clock timestamp
// (date + time, no zone). found is false when the trip does not exist.
func (r *CatalogRepository) GetTripDeparture(ctx context.Context, tripID int64) (time.Time, bool, error) {
	query := `SELECT departure_date + departure_time AS departure_at FROM trips WHERE trip_id = $1`

	var departure time.Time
	err := r.db.GetContext(ctx, &departure, query, tripID)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get trip departure: %w", err)
	}
	return departure, true, nil
}

// ListDriverTrips returns the trips assigned to a driver in departure order
func (r *CatalogRepository) ListDriverTrips(ctx context.Context, driverID int64) ([]*models.DriverTrip, error) {
	query := `
		SELECT t.trip_id, t.bus_id, t.route_id, t.driver_id, t.departure_date,
		       t.departure_time::text AS departure_time, t.status, t.created_at, t.updated_at,
		       b.plate_number, r.from_city, r.to_city, r.distance_km
		FROM trips t
		JOIN buses b ON t.bus_id = b.bus_id
		JOIN routes r ON t.route_id = r.route_id
		WHERE t.driver_id = $1
		ORDER BY t.departure_date, t.departure_time`

	var trips []*models.DriverTrip
	if err := r.db.SelectContext(ctx, &trips, query, driverID); err != nil {
		return nil, fmt.Errorf("failed to list driver trips: %w", err)
	}
	return trips, nil
}

// UpdateTripStatus sets the status of a trip assigned to the driver.
// It returns nil when no such trip is assigned to them.
func (r *CatalogRepository) UpdateTripStatus(ctx context.Context, tripID, driverID int64, status models.TripStatus) (*models.Trip, error) {
	query := `
		UPDATE trips SET status = $1, updated_at = NOW()
		WHERE trip_id = $2 AND driver_id = $3
		RETURNING ` + tripColumns

	var trip models.Trip
	err := r.db.GetContext(ctx, &trip, query, status, tripID, driverID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update trip status: %w", err)
	}
	return &trip, nil
}
