package models

import (
	"time"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusPaid      BookingStatus = "paid"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking represents one passenger reservation attempt on a trip or a car.
// Exactly one of TripID and CarID is set.
type Booking struct {
	ID               int64         `json:"booking_id" db:"booking_id"`
	BookingReference string        `json:"booking_reference" db:"booking_reference"`
	TripID           *int64        `json:"trip_id,omitempty" db:"trip_id"`
	CarID            *int64        `json:"car_id,omitempty" db:"car_id"`
	PassengerName    string        `json:"passenger_name" db:"passenger_name"`
	PassengerPhone   string        `json:"passenger_phone" db:"passenger_phone"`
	PassengerEmail   *string       `json:"passenger_email,omitempty" db:"passenger_email"`
	NumSeats         int           `json:"num_seats" db:"num_seats"`
	Status           BookingStatus `json:"status" db:"status"`
	HoldExpiresAt    *time.Time    `json:"hold_expires_at,omitempty" db:"hold_expires_at"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
}

// Entity returns the ledger entry the booking draws seats from
func (b *Booking) Entity() EntityRef {
	if b.TripID != nil {
		return TripRef(*b.TripID)
	}
	if b.CarID != nil {
		return CarRef(*b.CarID)
	}
	return EntityRef{}
}

// IsPending reports whether the booking still holds locked seats
func (b *Booking) IsPending() bool {
	return b.Status == BookingStatusPending
}

// AdminBookingView is a booking joined with its trip and operator for admin listings
type AdminBookingView struct {
	Booking
	DepartureDate *time.Time `json:"departure_date,omitempty" db:"departure_date"`
	DepartureTime *string    `json:"departure_time,omitempty" db:"departure_time"`
	ExpressID     *int64     `json:"express_id,omitempty" db:"express_id"`
	ExpressName   *string    `json:"express_name,omitempty" db:"express_name"`
}

// BookingFilter narrows admin booking listings
type BookingFilter struct {
	ExpressID *int64
	Status    *BookingStatus
	Limit     int
}

// CreateBookingRequest represents the public request to reserve seats
type CreateBookingRequest struct {
	TripID         *int64  `json:"trip_id,omitempty"`
	CarID          *int64  `json:"car_id,omitempty"`
	PassengerName  string  `json:"passenger_name"`
	PassengerPhone string  `json:"passenger_phone"`
	PassengerEmail *string `json:"passenger_email,omitempty"`
	NumSeats       int     `json:"num_seats"`
}

// CreateBookingResponse is returned after seats were locked and the booking recorded
type CreateBookingResponse struct {
	BookingID        int64         `json:"booking_id"`
	BookingReference string        `json:"booking_reference"`
	Status           BookingStatus `json:"status"`
	SeatsLocked      bool          `json:"seats_locked"`
	HoldExpiresAt    *time.Time    `json:"hold_expires_at,omitempty"`
	Message          string        `json:"message"`
}

// CancelBookingResponse reports whether a cancellation returned seats to the pool
type CancelBookingResponse struct {
	BookingID int64         `json:"booking_id"`
	Status    BookingStatus `json:"status"`
	Released  bool          `json:"released"`
	Message   string        `json:"message"`
}

// TicketDetails is the trip or car information printed on an e-ticket
type TicketDetails struct {
	Operator    string     `db:"operator"`
	PlateNumber string     `db:"plate_number"`
	VehicleType string     `db:"vehicle_type"`
	FromCity    *string    `db:"from_city"`
	ToCity      *string    `db:"to_city"`
	DepartureAt *time.Time `db:"departure_at"`
	PriceRWF    *int64     `db:"price_rwf"`
}
