package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ihute/transit-backend/internal/models"
)

// BookingStore persists booking records and their guarded status transitions
type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, bookingID int64) (*models.Booking, error)
	GetByReference(ctx context.Context, reference string) (*models.Booking, error)
	MarkPaid(ctx context.Context, bookingID int64) (bool, error)
	MarkCancelled(ctx context.Context, bookingID int64) (bool, error)
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*models.Booking, error)
}

// BookingRepository implements BookingStore
type BookingRepository struct {
	db Querier
}

// NewBookingRepository creates a booking repository bound to a pool or a transaction
func NewBookingRepository(db Querier) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `
	booking_id, booking_reference, trip_id, car_id,
	passenger_name, passenger_phone, passenger_email,
	num_seats, status, hold_expires_at, created_at, updated_at`

// ============================================================================
// CREATE / READ
// ============================================================================

// Create inserts a booking and fills in its generated id and timestamps.
// A duplicate booking_reference surfaces as a unique violation.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			booking_reference, trip_id, car_id,
			passenger_name, passenger_phone, passenger_email,
			num_seats, status, hold_expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING booking_id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		booking.BookingReference, booking.TripID, booking.CarID,
		booking.PassengerName, booking.PassengerPhone, booking.PassengerEmail,
		booking.NumSeats, booking.Status, booking.HoldExpiresAt,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetByID returns the booking or nil if it does not exist
func (r *BookingRepository) GetByID(ctx context.Context, bookingID int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_id = $1`

	var booking models.Booking
	err := r.db.GetContext(ctx, &booking, query, bookingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// GetByReference returns the booking with the given reference or nil
func (r *BookingRepository) GetByReference(ctx context.Context, reference string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_reference = $1`

	var booking models.Booking
	err := r.db.GetContext(ctx, &booking, query, reference)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking by reference: %w", err)
	}
	return &booking, nil
}

// ============================================================================
// GUARDED STATUS TRANSITIONS
// ============================================================================

// MarkPaid moves a pending booking to paid. It returns false when the booking
// was not pending, so a repeated settlement signal changes nothing.
func (r *BookingRepository) MarkPaid(ctx context.Context, bookingID int64) (bool, error) {
	query := `
		UPDATE bookings
		SET status = 'paid', hold_expires_at = NULL, updated_at = NOW()
		WHERE booking_id = $1 AND status = 'pending'`

	return r.transition(ctx, query, bookingID, "mark booking paid")
}

// MarkCancelled moves a pending booking to cancelled and reports whether it did.
func (r *BookingRepository) MarkCancelled(ctx context.Context, bookingID int64) (bool, error) {
	query := `
		UPDATE bookings
		SET status = 'cancelled', hold_expires_at = NULL, updated_at = NOW()
		WHERE booking_id = $1 AND status = 'pending'`

	return r.transition(ctx, query, bookingID, "cancel booking")
}

func (r *BookingRepository) transition(ctx context.Context, query string, bookingID int64, op string) (bool, error) {
	result, err := r.db.ExecContext(ctx, query, bookingID)
	if err != nil {
		return false, fmt.Errorf("failed to %s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

// ============================================================================
// HOLD EXPIRY
// ============================================================================

// ListExpiredPending returns pending bookings whose hold expired at or before now, oldest first
func (r *BookingRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'pending' AND hold_expires_at IS NOT NULL AND hold_expires_at <= $1
		ORDER BY hold_expires_at
		LIMIT $2`

	var bookings []*models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, now, limit); err != nil {
		return nil, fmt.Errorf("failed to list expired bookings: %w", err)
	}
	return bookings, nil
}

// ============================================================================
// ADMIN LISTING
// ============================================================================

// ListForAdmin returns recent bookings with their trip and operator, newest first
func (r *BookingRepository) ListForAdmin(ctx context.Context, filter models.BookingFilter) ([]*models.AdminBookingView, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT b.booking_id, b.booking_reference, b.trip_id, b.car_id,
		       b.passenger_name, b.passenger_phone, b.passenger_email,
		       b.num_seats, b.status, b.hold_expires_at, b.created_at, b.updated_at,
		       t.departure_date, t.departure_time::text AS departure_time,
		       bu.express_id, e.name AS express_name
		FROM bookings b
		LEFT JOIN trips t ON b.trip_id = t.trip_id
		LEFT JOIN buses bu ON t.bus_id = bu.bus_id
		LEFT JOIN expresses e ON bu.express_id = e.express_id
		WHERE ($1::bigint IS NULL OR bu.express_id = $1)
		  AND ($2::text IS NULL OR b.status = $2)
		ORDER BY b.created_at DESC
		LIMIT $3`

	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	var bookings []*models.AdminBookingView
	if err := r.db.SelectContext(ctx, &bookings, query, filter.ExpressID, status, limit); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}
