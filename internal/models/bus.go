package models

import (
	"time"
)

// Express is a bus company operating scheduled trips
type Express struct {
	ID        int64     `json:"express_id" db:"express_id"`
	Name      string    `json:"name" db:"name"`
	LogoURL   *string   `json:"logo_url,omitempty" db:"logo_url"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Route is a city pair served by one or more expresses
type Route struct {
	ID         int64     `json:"route_id" db:"route_id"`
	FromCity   string    `json:"from_city" db:"from_city"`
	ToCity     string    `json:"to_city" db:"to_city"`
	DistanceKM *int      `json:"distance_km,omitempty" db:"distance_km"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ExpressRoute is the fare an express charges on a route
type ExpressRoute struct {
	ID        int64 `json:"id" db:"id"`
	ExpressID int64 `json:"express_id" db:"express_id"`
	RouteID   int64 `json:"route_id" db:"route_id"`
	PriceRWF  int64 `json:"price_rwf" db:"price_rwf"`
}

// Bus is a vehicle owned by an express. SeatCount seeds the ledger of every trip it runs.
type Bus struct {
	ID          int64     `json:"bus_id" db:"bus_id"`
	ExpressID   int64     `json:"express_id" db:"express_id"`
	PlateNumber string    `json:"plate_number" db:"plate_number"`
	BusType     string    `json:"bus_type" db:"bus_type"`
	SeatCount   int       `json:"seat_count" db:"seat_count"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CreateExpressRequest is the admin request to register a bus company
type CreateExpressRequest struct {
	Name    string  `json:"name"`
	LogoURL *string `json:"logo_url,omitempty"`
}

// CreateRouteRequest is the admin request to add a city pair
type CreateRouteRequest struct {
	FromCity   string `json:"from_city"`
	ToCity     string `json:"to_city"`
	DistanceKM *int   `json:"distance_km,omitempty"`
}

// SetRoutePriceRequest sets or replaces an express fare on a route
type SetRoutePriceRequest struct {
	ExpressID *int64 `json:"express_id,omitempty"`
	RouteID   int64  `json:"route_id"`
	PriceRWF  int64  `json:"price_rwf"`
}

// CreateBusRequest is the admin request to register a bus
type CreateBusRequest struct {
	ExpressID   *int64 `json:"express_id,omitempty"`
	PlateNumber string `json:"plate_number"`
	BusType     string `json:"bus_type"`
	SeatCount   int    `json:"seat_count"`
}
