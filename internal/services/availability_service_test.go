package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ihute/transit-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAvailabilityCache struct {
	mock.Mock
}

func (m *MockAvailabilityCache) Get(ctx context.Context, ref models.EntityRef) (int, bool, error) {
	args := m.Called(ctx, ref)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockAvailabilityCache) Set(ctx context.Context, ref models.EntityRef, available int) error {
	return m.Called(ctx, ref, available).Error(0)
}

func (m *MockAvailabilityCache) Invalidate(ctx context.Context, ref models.EntityRef) error {
	return m.Called(ctx, ref).Error(0)
}

func TestAvailability_CacheHit(t *testing.T) {
	store := newMemStore()
	store.initLedger(models.TripRef(1), 10)
	cache := new(MockAvailabilityCache)
	cache.On("Get", mock.Anything, models.TripRef(1)).Return(6, true, nil)

	svc := NewAvailabilityService(store.Seats(), cache, quietLogger())
	n, err := svc.Available(context.Background(), models.TripRef(1))
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, 6, *n)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestAvailability_MissReadsLedgerAndFillsCache(t *testing.T) {
	store := newMemStore()
	store.initLedger(models.TripRef(1), 10)
	store.setLedger(models.TripRef(1), 2, 3)
	cache := new(MockAvailabilityCache)
	cache.On("Get", mock.Anything, models.TripRef(1)).Return(0, false, nil)
	cache.On("Set", mock.Anything, models.TripRef(1), 5).Return(nil)

	svc := NewAvailabilityService(store.Seats(), cache, quietLogger())
	n, err := svc.Available(context.Background(), models.TripRef(1))
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, 5, *n)
	cache.AssertExpectations(t)
}

func TestAvailability_CacheFailureFallsBackToLedger(t *testing.T) {
	store := newMemStore()
	store.initLedger(models.CarRef(2), 4)
	cache := new(MockAvailabilityCache)
	cache.On("Get", mock.Anything, models.CarRef(2)).Return(0, false, errors.New("connection refused"))
	cache.On("Set", mock.Anything, models.CarRef(2), 4).Return(errors.New("connection refused"))
	cache.On("Invalidate", mock.Anything, models.CarRef(2)).Return(errors.New("connection refused"))

	svc := NewAvailabilityService(store.Seats(), cache, quietLogger())
	n, err := svc.Available(context.Background(), models.CarRef(2))
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, 4, *n)

	svc.Invalidate(context.Background(), models.CarRef(2))
	cache.AssertExpectations(t)
}

func TestAvailability_UnknownEntity(t *testing.T) {
	svc := NewAvailabilityService(newMemStore().Seats(), nil, quietLogger())
	n, err := svc.Available(context.Background(), models.TripRef(404))
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestBookingInvalidatesCachedAvailability(t *testing.T) {
	store := newMemStore()
	store.initLedger(models.TripRef(1), 10)
	cache := new(MockAvailabilityCache)
	cache.On("Invalidate", mock.Anything, models.TripRef(1)).Return(nil).Once()

	cfg := DefaultBookingServiceConfig()
	cfg.Location = kigali
	svc := NewBookingService(store, fakeSchedule{1: departureWall},
		NewAvailabilityService(store.Seats(), cache, quietLogger()), nil, cfg, quietLogger())
	svc.now = earlyMorning

	_, err := svc.CreateBooking(context.Background(), tripRequest(1, 2))
	require.NoError(t, err)
	cache.AssertExpectations(t)
}
