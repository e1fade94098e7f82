package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repositories groups the stores that take part in a reservation
type Repositories interface {
	Seats() SeatLedger
	Bookings() BookingStore
	Payments() PaymentStore
}

// Store exposes the reservation repositories and runs units of work atomically
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(Repositories) error) error
}

// PostgresStore implements Store on a sqlx connection pool
type PostgresStore struct {
	db *sqlx.DB
}

// NewStore creates a PostgresStore
func NewStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Seats() SeatLedger      { return NewSeatLedgerRepository(s.db) }
func (s *PostgresStore) Bookings() BookingStore { return NewBookingRepository(s.db) }
func (s *PostgresStore) Payments() PaymentStore { return NewPaymentRepository(s.db) }

// WithinTx runs fn against repositories bound to a single transaction.
// The transaction commits only if fn returns nil.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(Repositories) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(txRepositories{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type txRepositories struct {
	tx *sqlx.Tx
}

func (r txRepositories) Seats() SeatLedger      { return NewSeatLedgerRepository(r.tx) }
func (r txRepositories) Bookings() BookingStore { return NewBookingRepository(r.tx) }
func (r txRepositories) Payments() PaymentStore { return NewPaymentRepository(r.tx) }
