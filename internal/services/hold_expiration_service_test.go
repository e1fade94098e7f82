package services

import (
	"context"
	"testing"
	"time"

	"github.com/ihute/transit-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoldExpiration_RunOnce(t *testing.T) {
	store := newMemStore()
	store.initLedger(models.TripRef(1), 10)
	bookings, notifier := newTestBookingService(store, earlyMorning())
	ctx := context.Background()

	book := func(seats int) int64 {
		resp, err := bookings.CreateBooking(ctx, tripRequest(1, seats))
		require.NoError(t, err)
		return resp.BookingID
	}
	expired := book(3)
	fresh := book(2)
	paid := book(1)
	_, err := store.Bookings().MarkPaid(ctx, paid)
	require.NoError(t, err)
	require.NoError(t, store.Seats().Confirm(ctx, models.TripRef(1), 1))

	now := earlyMorning().Add(10 * time.Minute)
	store.setHoldExpiry(expired, now.Add(-time.Second))
	store.setHoldExpiry(fresh, now.Add(5*time.Minute))

	svc := NewHoldExpirationService(store, NewAvailabilityService(store.Seats(), nil, quietLogger()), notifier, 10, quietLogger())
	svc.now = func() time.Time { return now }

	released, err := svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, released)

	assert.Equal(t, models.BookingStatusCancelled, store.booking(expired).Status)
	assert.Equal(t, models.BookingStatusPending, store.booking(fresh).Status)
	assert.Equal(t, models.BookingStatusPaid, store.booking(paid).Status)

	entry := store.entry(models.TripRef(1))
	assert.Equal(t, 2, entry.LockedSeats)
	assert.Equal(t, 1, entry.BookedSeats)
	assert.Len(t, notifier.cancelled, 1)

	// nothing left to sweep
	released, err = svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, released)
}

func TestHoldExpiration_RespectsBatchSize(t *testing.T) {
	store := newMemStore()
	store.initLedger(models.CarRef(5), 4)
	bookings, _ := newTestBookingService(store, earlyMorning())
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := bookings.CreateBooking(ctx, carRequest(5, 1))
		require.NoError(t, err)
	}

	svc := NewHoldExpirationService(store, NewAvailabilityService(store.Seats(), nil, quietLogger()), nil, 3, quietLogger())
	svc.now = func() time.Time { return earlyMorning().Add(time.Hour) }

	released, err := svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, released)
	assert.Equal(t, 1, store.entry(models.CarRef(5)).LockedSeats)

	released, err = svc.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, released)
	assert.Equal(t, 0, store.entry(models.CarRef(5)).LockedSeats)
}

func TestHoldExpiration_PaymentAfterSweepIsRejected(t *testing.T) {
	f := newSettlementFixture(SimulatedGateway{})
	ctx := context.Background()
	id := f.book(t, 2)

	svc := NewHoldExpirationService(f.store, NewAvailabilityService(f.store.Seats(), nil, quietLogger()), nil, 10, quietLogger())
	svc.now = func() time.Time { return earlyMorning().Add(16 * time.Minute) }

	released, err := svc.RunOnce(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, released)

	_, err = f.settle.ProcessPayment(ctx, paymentFor(id))
	assert.ErrorIs(t, err, ErrBookingNotPending)
	assert.Equal(t, 0, f.store.entry(models.TripRef(1)).BookedSeats)
}
