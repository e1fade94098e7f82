package services

import (
	"context"
	"time"

	"github.com/ihute/transit-backend/internal/database"
	"github.com/ihute/transit-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// HoldExpirationService cancels pending bookings whose hold expired and
// returns their seats to the ledger.
type HoldExpirationService struct {
	store        database.Store
	availability *AvailabilityService
	notifier     Notifier
	batchSize    int
	logger       *logrus.Logger
	now          func() time.Time
}

// NewHoldExpirationService creates a new hold expiration service
func NewHoldExpirationService(
	store database.Store,
	availability *AvailabilityService,
	notifier Notifier,
	batchSize int,
	logger *logrus.Logger,
) *HoldExpirationService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &HoldExpirationService{
		store:        store,
		availability: availability,
		notifier:     notifier,
		batchSize:    batchSize,
		logger:       logger,
		now:          time.Now,
	}
}

// RunOnce releases up to one batch of expired holds and returns how many were released.
// Each booking is released in its own transaction so one failure does not block the rest.
func (s *HoldExpirationService) RunOnce(ctx context.Context) (int, error) {
	expired, err := s.store.Bookings().ListExpiredPending(ctx, s.now(), s.batchSize)
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	s.logger.WithField("count", len(expired)).Info("Processing expired holds")

	released := 0
	for _, booking := range expired {
		if ctx.Err() != nil {
			return released, ctx.Err()
		}

		ok, err := s.expire(ctx, booking)
		log := s.logger.WithField("booking_id", booking.ID)
		switch {
		case err != nil:
			log.WithError(err).Error("Failed to release expired hold")
		case ok:
			released++
			log.WithField("num_seats", booking.NumSeats).Info("Expired hold released")
		default:
			log.Debug("Booking left pending state before its hold could be released")
		}
	}

	return released, nil
}

func (s *HoldExpirationService) expire(ctx context.Context, booking *models.Booking) (bool, error) {
	var released bool
	err := s.store.WithinTx(ctx, func(repos database.Repositories) error {
		var err error
		released, err = releaseHold(ctx, repos, booking)
		return err
	})
	if err != nil || !released {
		return false, err
	}

	s.availability.Invalidate(ctx, booking.Entity())
	s.notifier.BookingCancelled(ctx, booking)
	return true, nil
}
