package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ihute/transit-backend/internal/models"
)

// SeatLedger is the capacity ledger for trips and cars.
// Every mutation is a single guarded statement; callers never read-then-write.
type SeatLedger interface {
	Initialize(ctx context.Context, ref models.EntityRef, totalSeats int) error
	Lock(ctx context.Context, ref models.EntityRef, n int) (bool, error)
	Unlock(ctx context.Context, ref models.EntityRef, n int) error
	Confirm(ctx context.Context, ref models.EntityRef, n int) error
	Available(ctx context.Context, ref models.EntityRef) (int, bool, error)
	Get(ctx context.Context, ref models.EntityRef) (*models.SeatAvailability, error)
}

// SeatLedgerRepository implements SeatLedger on the seat_availability table
type SeatLedgerRepository struct {
	db Querier
}

// NewSeatLedgerRepository creates a ledger bound to a pool or a transaction
func NewSeatLedgerRepository(db Querier) *SeatLedgerRepository {
	return &SeatLedgerRepository{db: db}
}

// Initialize creates the ledger entry with nothing booked or locked.
// An existing entry is left untouched.
func (r *SeatLedgerRepository) Initialize(ctx context.Context, ref models.EntityRef, totalSeats int) error {
	query := `
		INSERT INTO seat_availability (entity_type, entity_id, total_seats, booked_seats, locked_seats)
		VALUES ($1, $2, $3, 0, 0)
		ON CONFLICT (entity_type, entity_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, ref.Type, ref.ID, totalSeats); err != nil {
		return fmt.Errorf("failed to initialize seat availability for %s: %w", ref, err)
	}
	return nil
}

// Lock holds n seats if they fit under total_seats at the moment of the update.
// It returns false, with no mutation, when capacity is short or no entry exists.
func (r *SeatLedgerRepository) Lock(ctx context.Context, ref models.EntityRef, n int) (bool, error) {
	query := `
		UPDATE seat_availability
		SET locked_seats = locked_seats + $1, updated_at = NOW()
		WHERE entity_type = $2 AND entity_id = $3
		  AND booked_seats + locked_seats + $1 <= total_seats
		RETURNING id`

	var id int64
	err := r.db.QueryRowxContext(ctx, query, n, ref.Type, ref.ID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to lock seats for %s: %w", ref, err)
	}
	return true, nil
}

// Unlock releases n held seats, floored at zero
func (r *SeatLedgerRepository) Unlock(ctx context.Context, ref models.EntityRef, n int) error {
	query := `
		UPDATE seat_availability
		SET locked_seats = GREATEST(0, locked_seats - $1), updated_at = NOW()
		WHERE entity_type = $2 AND entity_id = $3`

	if _, err := r.db.ExecContext(ctx, query, n, ref.Type, ref.ID); err != nil {
		return fmt.Errorf("failed to unlock seats for %s: %w", ref, err)
	}
	return nil
}

// Confirm moves n seats from locked to booked. It is not idempotent:
// callers must invoke it at most once per settled booking.
func (r *SeatLedgerRepository) Confirm(ctx context.Context, ref models.EntityRef, n int) error {
	query := `
		UPDATE seat_availability
		SET booked_seats = booked_seats + $1,
		    locked_seats = GREATEST(0, locked_seats - $1),
		    updated_at = NOW()
		WHERE entity_type = $2 AND entity_id = $3`

	if _, err := r.db.ExecContext(ctx, query, n, ref.Type, ref.ID); err != nil {
		return fmt.Errorf("failed to confirm seats for %s: %w", ref, err)
	}
	return nil
}

// Available returns total - booked - locked. The second value is false when
// the entity has no ledger entry.
func (r *SeatLedgerRepository) Available(ctx context.Context, ref models.EntityRef) (int, bool, error) {
	query := `
		SELECT total_seats - booked_seats - locked_seats AS available
		FROM seat_availability
		WHERE entity_type = $1 AND entity_id = $2`

	var available int
	err := r.db.GetContext(ctx, &available, query, ref.Type, ref.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get available seats for %s: %w", ref, err)
	}
	return available, true, nil
}

// Get returns the full ledger entry, or nil if none exists
func (r *SeatLedgerRepository) Get(ctx context.Context, ref models.EntityRef) (*models.SeatAvailability, error) {
	query := `
		SELECT id, entity_type, entity_id, total_seats, booked_seats, locked_seats, updated_at
		FROM seat_availability
		WHERE entity_type = $1 AND entity_id = $2`

	var entry models.SeatAvailability
	err := r.db.GetContext(ctx, &entry, query, ref.Type, ref.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get seat availability for %s: %w", ref, err)
	}
	return &entry, nil
}
