package services

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/ihute/transit-backend/internal/database"
	"github.com/ihute/transit-backend/internal/models"
	"github.com/ihute/transit-backend/internal/utils"
	"github.com/ihute/transit-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

// TripSchedule looks up when a trip leaves
type TripSchedule interface {
	// GetTripDeparture returns the wall-clock departure (no zone) and whether the trip exists
	GetTripDeparture(ctx context.Context, tripID int64) (time.Time, bool, error)
}

// BookingServiceConfig holds the reservation rules
type BookingServiceConfig struct {
	Cutoff            time.Duration  // trips close this long before departure
	HoldTTL           time.Duration  // lifetime of a pending booking's lock
	Location          *time.Location // zone trip departures are expressed in
	ReferenceAttempts int            // tries on booking reference collision
}

// DefaultBookingServiceConfig returns the production reservation rules
func DefaultBookingServiceConfig() BookingServiceConfig {
	return BookingServiceConfig{
		Cutoff:            30 * time.Minute,
		HoldTTL:           15 * time.Minute,
		Location:          time.UTC,
		ReferenceAttempts: 3,
	}
}

// BookingService runs the reservation protocol: validate, check the trip
// cutoff, lock seats and record the booking in one transaction, and release
// seats on cancellation.
type BookingService struct {
	store        database.Store
	trips        TripSchedule
	availability *AvailabilityService
	notifier     Notifier
	phones       *validator.PhoneValidator
	config       BookingServiceConfig
	logger       *logrus.Logger
	now          func() time.Time
}

// NewBookingService creates a new BookingService
func NewBookingService(
	store database.Store,
	trips TripSchedule,
	availability *AvailabilityService,
	notifier Notifier,
	config BookingServiceConfig,
	logger *logrus.Logger,
) *BookingService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.ReferenceAttempts < 1 {
		config.ReferenceAttempts = 1
	}
	return &BookingService{
		store:        store,
		trips:        trips,
		availability: availability,
		notifier:     notifier,
		phones:       validator.NewPhoneValidator(),
		config:       config,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateBooking reserves seats on a trip or car and records a pending booking.
// Either both the lock and the booking row are committed or neither is.
func (s *BookingService) CreateBooking(ctx context.Context, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	booking, err := s.validateCreate(req)
	if err != nil {
		return nil, err
	}
	ref := booking.Entity()

	if ref.Type == models.EntityTrip {
		if err := s.checkCutoff(ctx, ref.ID); err != nil {
			return nil, err
		}
	}

	log := s.logger.WithFields(logrus.Fields{
		"entity":    ref.String(),
		"num_seats": booking.NumSeats,
	})

	for attempt := 1; ; attempt++ {
		reference, err := utils.GenerateBookingReference()
		if err != nil {
			return nil, err
		}
		booking.BookingReference = reference
		expires := s.now().Add(s.config.HoldTTL)
		booking.HoldExpiresAt = &expires

		err = s.store.WithinTx(ctx, func(repos database.Repositories) error {
			return lockAndRecord(ctx, repos, booking)
		})
		if err == nil {
			break
		}
		if database.IsUniqueViolation(err) && attempt < s.config.ReferenceAttempts {
			log.WithField("attempt", attempt).Warn("Booking reference collision, retrying")
			continue
		}
		return nil, err
	}

	s.availability.Invalidate(ctx, ref)
	s.notifier.BookingCreated(ctx, booking)

	log.WithFields(logrus.Fields{
		"booking_id":        booking.ID,
		"booking_reference": booking.BookingReference,
	}).Info("Seats locked and booking created")

	return &models.CreateBookingResponse{
		BookingID:        booking.ID,
		BookingReference: booking.BookingReference,
		Status:           booking.Status,
		SeatsLocked:      true,
		HoldExpiresAt:    booking.HoldExpiresAt,
		Message:          "Seats reserved. Complete payment to confirm your booking.",
	}, nil
}

// lockAndRecord is the transactional body of CreateBooking
func lockAndRecord(ctx context.Context, repos database.Repositories, booking *models.Booking) error {
	ref := booking.Entity()

	locked, err := repos.Seats().Lock(ctx, ref, booking.NumSeats)
	if err != nil {
		return err
	}
	if !locked {
		_, known, err := repos.Seats().Available(ctx, ref)
		if err != nil {
			return err
		}
		if !known {
			return entityNotFound(ref.Type == models.EntityTrip)
		}
		return ErrInsufficientSeats
	}

	booking.Status = models.BookingStatusPending
	return repos.Bookings().Create(ctx, booking)
}

// checkCutoff rejects trips whose departure is at or inside the cutoff window
func (s *BookingService) checkCutoff(ctx context.Context, tripID int64) error {
	wall, found, err := s.trips.GetTripDeparture(ctx, tripID)
	if err != nil {
		return err
	}
	if !found {
		return ErrTripNotFound
	}

	departure := time.Date(wall.Year(), wall.Month(), wall.Day(),
		wall.Hour(), wall.Minute(), wall.Second(), 0, s.config.Location)

	if !s.now().Before(departure.Add(-s.config.Cutoff)) {
		return ErrCutoffPassed
	}
	return nil
}

func (s *BookingService) validateCreate(req *models.CreateBookingRequest) (*models.Booking, error) {
	if req == nil {
		return nil, NewValidationError("request body is required")
	}
	if (req.TripID == nil) == (req.CarID == nil) {
		return nil, NewValidationError("exactly one of trip_id or car_id is required")
	}
	if req.TripID != nil && *req.TripID <= 0 {
		return nil, NewValidationError("trip_id must be a positive integer")
	}
	if req.CarID != nil && *req.CarID <= 0 {
		return nil, NewValidationError("car_id must be a positive integer")
	}
	if req.NumSeats < 1 {
		return nil, NewValidationError("num_seats must be at least 1")
	}

	name := strings.TrimSpace(req.PassengerName)
	if name == "" {
		return nil, NewValidationError("passenger_name is required")
	}

	phone, err := s.phones.Validate(req.PassengerPhone)
	if err != nil {
		return nil, NewValidationError("passenger_phone: %s", err.Error())
	}

	var email *string
	if req.PassengerEmail != nil && strings.TrimSpace(*req.PassengerEmail) != "" {
		addr, err := mail.ParseAddress(strings.TrimSpace(*req.PassengerEmail))
		if err != nil {
			return nil, NewValidationError("passenger_email is not a valid address")
		}
		email = &addr.Address
	}

	return &models.Booking{
		TripID:         req.TripID,
		CarID:          req.CarID,
		PassengerName:  name,
		PassengerPhone: phone,
		PassengerEmail: email,
		NumSeats:       req.NumSeats,
	}, nil
}

// CancelBooking releases a pending booking's seats. Cancelling an already
// cancelled booking reports released=false; a paid booking cannot be cancelled.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID int64) (*models.CancelBookingResponse, error) {
	var (
		booking  *models.Booking
		released bool
	)

	err := s.store.WithinTx(ctx, func(repos database.Repositories) error {
		var err error
		booking, err = repos.Bookings().GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return ErrBookingNotFound
		}

		switch booking.Status {
		case models.BookingStatusPaid:
			return ErrBookingAlreadyPaid
		case models.BookingStatusCancelled:
			return nil
		}

		released, err = releaseHold(ctx, repos, booking)
		if err != nil {
			return err
		}
		if !released {
			// lost a race with settlement or the sweep; report what won
			current, err := repos.Bookings().GetByID(ctx, bookingID)
			if err != nil {
				return err
			}
			if current != nil && current.Status == models.BookingStatusPaid {
				return ErrBookingAlreadyPaid
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := &models.CancelBookingResponse{
		BookingID: bookingID,
		Status:    models.BookingStatusCancelled,
		Released:  released,
		Message:   "Booking was already cancelled.",
	}

	if released {
		s.availability.Invalidate(ctx, booking.Entity())
		s.notifier.BookingCancelled(ctx, booking)
		resp.Message = "Booking cancelled and seats released."
		s.logger.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"entity":     booking.Entity().String(),
			"num_seats":  booking.NumSeats,
		}).Info("Booking cancelled")
	}

	return resp, nil
}

// GetBooking returns a booking by numeric id
func (s *BookingService) GetBooking(ctx context.Context, bookingID int64) (*models.Booking, error) {
	booking, err := s.store.Bookings().GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

// GetBookingByReference returns a booking by its BK- reference
func (s *BookingService) GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error) {
	booking, err := s.store.Bookings().GetByReference(ctx, strings.ToUpper(strings.TrimSpace(reference)))
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

// releaseHold moves a pending booking to cancelled and returns its original
// seat count to the ledger. It reports false, and changes nothing, when the
// booking was no longer pending.
func releaseHold(ctx context.Context, repos database.Repositories, booking *models.Booking) (bool, error) {
	cancelled, err := repos.Bookings().MarkCancelled(ctx, booking.ID)
	if err != nil {
		return false, err
	}
	if !cancelled {
		return false, nil
	}

	if err := repos.Seats().Unlock(ctx, booking.Entity(), booking.NumSeats); err != nil {
		return false, err
	}
	booking.Status = models.BookingStatusCancelled
	booking.HoldExpiresAt = nil
	return true, nil
}
