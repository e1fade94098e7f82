package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ihute/transit-backend/internal/models"
	"github.com/ihute/transit-backend/pkg/sms"
	"github.com/ihute/transit-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

// Notifier tells passengers about booking state changes. Implementations must
// not fail the caller: delivery problems are their own concern.
type Notifier interface {
	BookingCreated(ctx context.Context, booking *models.Booking)
	PaymentReceived(ctx context.Context, booking *models.Booking, payment *models.Payment)
	BookingCancelled(ctx context.Context, booking *models.Booking)
}

// NoopNotifier discards notifications
type NoopNotifier struct{}

func (NoopNotifier) BookingCreated(context.Context, *models.Booking)                   {}
func (NoopNotifier) PaymentReceived(context.Context, *models.Booking, *models.Payment) {}
func (NoopNotifier) BookingCancelled(context.Context, *models.Booking)                 {}

const smsSendTimeout = 20 * time.Second

// NotificationService sends booking SMS in the background
type NotificationService struct {
	gateway  sms.Gateway
	phones   *validator.PhoneValidator
	location *time.Location
	logger   *logrus.Logger
	wg       sync.WaitGroup
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(gateway sms.Gateway, location *time.Location, logger *logrus.Logger) *NotificationService {
	if location == nil {
		location = time.UTC
	}
	return &NotificationService{
		gateway:  gateway,
		phones:   validator.NewPhoneValidator(),
		location: location,
		logger:   logger,
	}
}

// BookingCreated tells the passenger their seats are held and until when
func (s *NotificationService) BookingCreated(ctx context.Context, booking *models.Booking) {
	msg := fmt.Sprintf("IHUTE: %d seat(s) held under %s.", booking.NumSeats, booking.BookingReference)
	if booking.HoldExpiresAt != nil {
		msg += fmt.Sprintf(" Pay before %s to confirm.", booking.HoldExpiresAt.In(s.location).Format("15:04"))
	}
	s.dispatch(ctx, booking, "booking_created", msg)
}

// PaymentReceived confirms a settled booking
func (s *NotificationService) PaymentReceived(ctx context.Context, booking *models.Booking, payment *models.Payment) {
	msg := fmt.Sprintf("IHUTE: booking %s is confirmed.", booking.BookingReference)
	if payment != nil {
		msg = fmt.Sprintf("IHUTE: payment of %d RWF received. Booking %s is confirmed.", payment.AmountRWF, booking.BookingReference)
	}
	s.dispatch(ctx, booking, "payment_received", msg)
}

// BookingCancelled tells the passenger the hold was released
func (s *NotificationService) BookingCancelled(ctx context.Context, booking *models.Booking) {
	msg := fmt.Sprintf("IHUTE: booking %s was cancelled and its seats released.", booking.BookingReference)
	s.dispatch(ctx, booking, "booking_cancelled", msg)
}

// Wait blocks until in-flight messages are sent or have failed
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

func (s *NotificationService) dispatch(ctx context.Context, booking *models.Booking, kind, message string) {
	log := s.logger.WithFields(logrus.Fields{
		"booking_id":   booking.ID,
		"notification": kind,
		"gateway":      s.gateway.Name(),
	})

	msisdn, err := s.phones.ToMSISDN(booking.PassengerPhone)
	if err != nil {
		log.WithError(err).Warn("Skipping SMS for unusable phone number")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), smsSendTimeout)
		defer cancel()

		id, err := s.gateway.Send(sendCtx, msisdn, message)
		if err != nil {
			log.WithError(err).Warn("Failed to send SMS")
			return
		}
		log.WithField("message_id", id).Debug("SMS sent")
	}()
}
