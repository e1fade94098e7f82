package services

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input. It is returned before any storage call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with a formatted message
func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// CapacityError reports that seats could not be reserved. Nothing was changed.
type CapacityError struct {
	Reason  string // cutoff_passed or insufficient_seats
	Message string
}

func (e *CapacityError) Error() string {
	return e.Message
}

// NotFoundError reports a missing booking, trip, car or other resource
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// ConflictError reports an operation that does not apply to the resource's current state
type ConflictError struct {
	Code    string
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

var (
	ErrCutoffPassed      = &CapacityError{Reason: "cutoff_passed", Message: "booking is closed for this trip"}
	ErrInsufficientSeats = &CapacityError{Reason: "insufficient_seats", Message: "not enough seats available"}

	ErrBookingNotFound = &NotFoundError{Resource: "booking"}
	ErrTripNotFound    = &NotFoundError{Resource: "trip"}
	ErrCarNotFound     = &NotFoundError{Resource: "car"}
	ErrPaymentNotFound = &NotFoundError{Resource: "payment"}
	ErrBusNotFound     = &NotFoundError{Resource: "bus"}
	ErrDriverNotFound  = &NotFoundError{Resource: "driver"}

	ErrBookingNotPending  = &ConflictError{Code: "booking_not_pending", Message: "booking is no longer pending"}
	ErrBookingAlreadyPaid = &ConflictError{Code: "booking_already_paid", Message: "booking has already been paid"}
	ErrBookingNotPaid     = &ConflictError{Code: "booking_not_paid", Message: "ticket is only available for paid bookings"}
	ErrAlreadyExists      = &ConflictError{Code: "already_exists", Message: "resource already exists"}

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("operation not permitted for this account")
	ErrPaymentDeclined    = errors.New("payment was declined")
)

// entityNotFound returns the NotFoundError for a ledger entity type
func entityNotFound(isTrip bool) error {
	if isTrip {
		return ErrTripNotFound
	}
	return ErrCarNotFound
}
