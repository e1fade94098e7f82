package models

import "time"

// TripStatus represents the operational status of a scheduled trip
type TripStatus string

const (
	TripStatusScheduled  TripStatus = "scheduled"
	TripStatusInProgress TripStatus = "in_progress"
	TripStatusCompleted  TripStatus = "completed"
	TripStatusCancelled  TripStatus = "cancelled"
)

// DriverSettable reports whether a driver may move a trip into this status
func (s TripStatus) DriverSettable() bool {
	switch s {
	case TripStatusInProgress, TripStatusCompleted, TripStatusCancelled:
		return true
	}
	return false
}

// Trip is a scheduled bus departure. DepartureDate and DepartureTime are wall-clock
// values in the operator's time zone.
type Trip struct {
	ID            int64      `json:"trip_id" db:"trip_id"`
	BusID         int64      `json:"bus_id" db:"bus_id"`
	RouteID       int64      `json:"route_id" db:"route_id"`
	DriverID      *int64     `json:"driver_id,omitempty" db:"driver_id"`
	DepartureDate time.Time  `json:"departure_date" db:"departure_date"`
	DepartureTime string     `json:"departure_time" db:"departure_time"`
	Status        TripStatus `json:"status" db:"status"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// DriverTrip is a trip assigned to a driver with its route and bus
type DriverTrip struct {
	Trip
	PlateNumber string `json:"plate_number" db:"plate_number"`
	FromCity    string `json:"from_city" db:"from_city"`
	ToCity      string `json:"to_city" db:"to_city"`
	DistanceKM  *int   `json:"distance_km,omitempty" db:"distance_km"`
}

// CreateTripRequest is the admin request to schedule a departure.
// DepartureDate is YYYY-MM-DD and DepartureTime is HH:MM in the operator's time zone.
type CreateTripRequest struct {
	BusID         int64  `json:"bus_id"`
	RouteID       int64  `json:"route_id"`
	DriverID      *int64 `json:"driver_id,omitempty"`
	DepartureDate string `json:"departure_date"`
	DepartureTime string `json:"departure_time"`
}

// UpdateTripStatusRequest is sent by a driver as the trip progresses
type UpdateTripStatusRequest struct {
	Status TripStatus `json:"status"`
}
