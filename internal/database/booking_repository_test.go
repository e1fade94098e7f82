package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ihute/transit-backend/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingRowColumns = []string{
	"booking_id", "booking_reference", "trip_id", "car_id",
	"passenger_name", "passenger_phone", "passenger_email",
	"num_seats", "status", "hold_expires_at", "created_at", "updated_at",
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()
	tripID := int64(1)
	hold := time.Now().Add(15 * time.Minute)

	newBooking := func() *models.Booking {
		return &models.Booking{
			BookingReference: "BK-7Q2M9XK4A",
			TripID:           &tripID,
			PassengerName:    "Aline Uwase",
			PassengerPhone:   "0788123456",
			NumSeats:         2,
			Status:           models.BookingStatusPending,
			HoldExpiresAt:    &hold,
		}
	}

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)
		now := time.Now()

		mock.ExpectQuery(`INSERT INTO bookings`).
			WithArgs("BK-7Q2M9XK4A", tripID, nil, "Aline Uwase", "0788123456", nil, int64(2), "pending", hold).
			WillReturnRows(sqlmock.NewRows([]string{"booking_id", "created_at", "updated_at"}).AddRow(int64(41), now, now))

		booking := newBooking()
		require.NoError(t, repo.Create(ctx, booking))
		assert.Equal(t, int64(41), booking.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate Reference", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "bookings_booking_reference_key"})

		err := repo.Create(ctx, newBooking())
		require.Error(t, err)
		assert.True(t, IsUniqueViolation(err))
		assert.Equal(t, "bookings_booking_reference_key", ConstraintName(err))
	})
}

func TestGetBookingByID(t *testing.T) {
	ctx := context.Background()
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE booking_id`).WithArgs(int64(41)).
		WillReturnRows(sqlmock.NewRows(bookingRowColumns).AddRow(
			int64(41), "BK-7Q2M9XK4A", nil, int64(5),
			"Eric Mugisha", "0722123456", nil,
			3, "paid", nil, now, now,
		))

	booking, err := repo.GetByID(ctx, 41)
	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.Equal(t, models.BookingStatusPaid, booking.Status)
	assert.Equal(t, models.CarRef(5), booking.Entity())
	assert.Nil(t, booking.HoldExpiresAt)

	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE booking_id`).WithArgs(int64(42)).WillReturnError(sql.ErrNoRows)
	booking, err = repo.GetByID(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, booking)

	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE booking_reference`).WithArgs("BK-NOTHERE0").WillReturnError(sql.ErrNoRows)
	booking, err = repo.GetByReference(ctx, "BK-NOTHERE0")
	require.NoError(t, err)
	assert.Nil(t, booking)
}

func TestGuardedTransitions(t *testing.T) {
	ctx := context.Background()
	paid := regexp.QuoteMeta(`SET status = 'paid'`)
	cancelled := regexp.QuoteMeta(`SET status = 'cancelled'`)
	guard := regexp.QuoteMeta(`WHERE booking_id = $1 AND status = 'pending'`)

	t.Run("MarkPaid applies once", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectExec(`(?s)` + paid + `.+` + guard).WithArgs(int64(41)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(paid).WithArgs(int64(41)).WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.MarkPaid(ctx, 41)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.MarkPaid(ctx, 41)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MarkCancelled", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectExec(`(?s)` + cancelled + `.+` + guard).WithArgs(int64(41)).WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.MarkCancelled(ctx, 41)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Database Error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewBookingRepository(db)

		mock.ExpectExec(cancelled).WillReturnError(fmt.Errorf("deadlock detected"))

		ok, err := repo.MarkCancelled(ctx, 41)
		assert.Error(t, err)
		assert.False(t, ok)
	})
}

func TestListExpiredPending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)
	now := time.Now()
	expired := now.Add(-time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta(`hold_expires_at <= $1`)).
		WithArgs(now, int64(100)).
		WillReturnRows(sqlmock.NewRows(bookingRowColumns).AddRow(
			int64(7), "BK-AAAAAAAAA", int64(1), nil,
			"Aline Uwase", "0788123456", nil,
			2, "pending", expired, now, now,
		))

	bookings, err := repo.ListExpiredPending(context.Background(), now, 100)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, models.TripRef(1), bookings[0].Entity())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListForAdmin(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)
	express := int64(3)
	status := models.BookingStatusPaid

	mock.ExpectQuery(`FROM bookings b`).
		WithArgs(express, "paid", int64(100)).
		WillReturnRows(sqlmock.NewRows(append(bookingRowColumns,
			"departure_date", "departure_time", "express_id", "express_name")))

	bookings, err := repo.ListForAdmin(context.Background(), models.BookingFilter{ExpressID: &express, Status: &status, Limit: 9999})
	require.NoError(t, err)
	assert.Empty(t, bookings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreWithinTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		db, mock := newMockDB(t)
		store := NewStore(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE seat_availability`).
			WithArgs(int64(1), "car", int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
		mock.ExpectCommit()

		err := store.WithinTx(ctx, func(repos Repositories) error {
			ok, err := repos.Seats().Lock(ctx, models.CarRef(5), 1)
			require.True(t, ok)
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rollback on error", func(t *testing.T) {
		db, mock := newMockDB(t)
		store := NewStore(db)
		boom := errors.New("insert failed")

		mock.ExpectBegin()
		mock.ExpectQuery(`UPDATE seat_availability`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
		mock.ExpectRollback()

		err := store.WithinTx(ctx, func(repos Repositories) error {
			if _, err := repos.Seats().Lock(ctx, models.CarRef(5), 1); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
