package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ihute/transit-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// SearchRepository handles passenger-facing read queries over trips and cars
type SearchRepository struct {
	db *sqlx.DB
}

// NewSearchRepository creates a new SearchRepository
func NewSearchRepository(db *sqlx.DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// SearchTrips returns scheduled trips on a route and date, ordered by departure time.
// Availability is not included; callers annotate rows from the seat ledger.
func (r *SearchRepository) SearchTrips(ctx context.Context, params models.TripSearchParams) ([]*models.TripSearchResult, error) {
	query := `
		SELECT t.trip_id, t.bus_id,
		       t.departure_date::text AS departure_date,
		       t.departure_time::text AS departure_time,
		       b.plate_number, b.seat_count, b.bus_type,
		       e.name AS express_name, r.from_city, r.to_city, er.price_rwf
		FROM trips t
		JOIN buses b ON t.bus_id = b.bus_id
		JOIN expresses e ON b.express_id = e.express_id
		JOIN routes r ON t.route_id = r.route_id
		JOIN express_routes er ON er.express_id = e.express_id AND er.route_id = r.route_id
		WHERE LOWER(r.from_city) = LOWER($1)
		  AND LOWER(r.to_city) = LOWER($2)
		  AND t.departure_date = $3::date
		  AND t.status = 'scheduled'
		ORDER BY t.departure_time`

	trips := []*models.TripSearchResult{}
	if err := r.db.SelectContext(ctx, &trips, query, params.FromCity, params.ToCity, params.DepartureDate); err != nil {
		return nil, fmt.Errorf("failed to search trips: %w", err)
	}
	return trips, nil
}

// SearchCars returns active cars of active drivers
func (r *SearchRepository) SearchCars(ctx context.Context) ([]*models.CarSearchResult, error) {
	query := `
		SELECT c.car_id, d.name AS driver_name, d.phone, c.plate_number, c.car_type,
		       c.seat_count, d.lat, d.lng
		FROM private_cars c
		JOIN drivers d ON c.driver_id = d.driver_id
		WHERE c.status = 'active' AND d.status = 'active'
		ORDER BY c.car_id`

	cars := []*models.CarSearchResult{}
	if err := r.db.SelectContext(ctx, &cars, query); err != nil {
		return nil, fmt.Errorf("failed to search cars: %w", err)
	}
	return cars, nil
}

// GetTicketDetails returns operator and route information for a booking's trip or car.
// It returns nil when the referenced entity no longer exists.
func (r *SearchRepository) GetTicketDetails(ctx context.Context, ref models.EntityRef) (*models.TicketDetails, error) {
	var query string
	switch ref.Type {
	case models.EntityTrip:
		query = `
			SELECT e.name AS operator, b.plate_number, b.bus_type AS vehicle_type,
			       r.from_city, r.to_city,
			       (t.departure_date + t.departure_time) AS departure_at,
			       er.price_rwf
			FROM trips t
			JOIN buses b ON t.bus_id = b.bus_id
			JOIN expresses e ON b.express_id = e.express_id
			JOIN routes r ON t.route_id = r.route_id
			LEFT JOIN express_routes er ON er.express_id = e.express_id AND er.route_id = r.route_id
			WHERE t.trip_id = $1`
	case models.EntityCar:
		query = `
			SELECT d.name AS operator, c.plate_number, c.car_type AS vehicle_type,
			       NULL::text AS from_city, NULL::text AS to_city,
			       NULL::timestamp AS departure_at, NULL::bigint AS price_rwf
			FROM private_cars c
			JOIN drivers d ON c.driver_id = d.driver_id
			WHERE c.car_id = $1`
	default:
		return nil, fmt.Errorf("unknown entity type %q", ref.Type)
	}

	var details models.TicketDetails
	err := r.db.GetContext(ctx, &details, query, ref.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket details: %w", err)
	}
	return &details, nil
}
