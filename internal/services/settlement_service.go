package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/ihute/transit-backend/internal/database"
	"github.com/ihute/transit-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// SettlementService finalises or releases a booking's locked seats.
//
// Settlement is exactly-once: the guarded pending -> paid transition runs
// first and the ledger Confirm only happens when that transition applied, in
// the same transaction. Repeated payment signals for a paid booking are
// reported as AlreadyPaid and change nothing.
type SettlementService struct {
	store        database.Store
	gateway      PaymentGateway
	availability *AvailabilityService
	notifier     Notifier
	audit        AuditRecorder
	logger       *logrus.Logger
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(
	store database.Store,
	gateway PaymentGateway,
	availability *AvailabilityService,
	notifier Notifier,
	audit AuditRecorder,
	logger *logrus.Logger,
) *SettlementService {
	if gateway == nil {
		gateway = SimulatedGateway{}
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &SettlementService{
		store:        store,
		gateway:      gateway,
		availability: availability,
		notifier:     notifier,
		audit:        audit,
		logger:       logger,
	}
}

// ProcessPayment charges the passenger and settles the booking. A declined
// charge releases the hold, records a failed payment and returns ErrPaymentDeclined.
func (s *SettlementService) ProcessPayment(ctx context.Context, req *models.ProcessPaymentRequest) (*models.SettlementResult, error) {
	if req == nil {
		return nil, NewValidationError("request body is required")
	}
	if req.BookingID <= 0 {
		return nil, NewValidationError("booking_id is required")
	}
	if req.AmountRWF <= 0 {
		return nil, NewValidationError("amount_rwf must be a positive integer")
	}
	if !req.Method.Valid() {
		return nil, NewValidationError("method must be one of momo, airtel, card, cash")
	}

	booking, err := s.store.Bookings().GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	switch booking.Status {
	case models.BookingStatusPaid:
		return &models.SettlementResult{Booking: booking, AlreadyPaid: true}, nil
	case models.BookingStatusCancelled:
		return nil, ErrBookingNotPending
	}

	charge, err := s.gateway.Charge(ctx, ChargeRequest{
		Booking:       booking,
		AmountRWF:     req.AmountRWF,
		Method:        req.Method,
		TransactionID: strings.TrimSpace(req.TransactionID),
	})
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", booking.ID).Warn("Payment declined, releasing seats")
		if ferr := s.recordFailure(ctx, booking, req); ferr != nil {
			return nil, ferr
		}
		return nil, ErrPaymentDeclined
	}

	return s.settle(ctx, booking.ID, &models.Payment{
		AmountRWF:     req.AmountRWF,
		Method:        req.Method,
		TransactionID: charge.TransactionID,
	})
}

// ConfirmSettlement marks a pending booking paid and moves its seats from
// locked to booked, without recording a payment row.
func (s *SettlementService) ConfirmSettlement(ctx context.Context, bookingID int64) (*models.SettlementResult, error) {
	return s.settle(ctx, bookingID, nil)
}

// ConfirmCashPayment settles a booking on behalf of an admin who collected
// payment in person and writes a CONFIRM_PAYMENT audit entry.
func (s *SettlementService) ConfirmCashPayment(ctx context.Context, actor AdminActor, bookingID int64, req *models.ConfirmCashPaymentRequest) (*models.SettlementResult, error) {
	if req == nil {
		req = &models.ConfirmCashPaymentRequest{}
	}
	if req.AmountRWF < 0 {
		return nil, NewValidationError("amount_rwf cannot be negative")
	}
	method := req.Method
	if method == "" {
		method = models.PaymentMethodCash
	}
	if !method.Valid() {
		return nil, NewValidationError("method must be one of momo, airtel, card, cash")
	}
	txID := strings.TrimSpace(req.TransactionID)
	if txID == "" {
		txID = "ADMIN-" + uuid.NewString()
	}

	adminID := actor.AdminID
	result, err := s.settle(ctx, bookingID, &models.Payment{
		AmountRWF:     req.AmountRWF,
		Method:        method,
		TransactionID: txID,
		ConfirmedBy:   &adminID,
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyPaid && s.audit != nil {
		s.audit.LogAdminAction(ctx, actor, AuditEntry{
			Action:     AuditConfirmPayment,
			EntityType: "bookings",
			EntityID:   &bookingID,
			NewValue:   result.Payment,
		})
	}
	return result, nil
}

// GetPayment returns a payment by id
func (s *SettlementService) GetPayment(ctx context.Context, paymentID int64) (*models.Payment, error) {
	payment, err := s.store.Payments().GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

func (s *SettlementService) settle(ctx context.Context, bookingID int64, payment *models.Payment) (*models.SettlementResult, error) {
	var result *models.SettlementResult

	err := s.store.WithinTx(ctx, func(repos database.Repositories) error {
		booking, err := repos.Bookings().GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return ErrBookingNotFound
		}

		applied, err := repos.Bookings().MarkPaid(ctx, bookingID)
		if err != nil {
			return err
		}
		if !applied {
			current, err := repos.Bookings().GetByID(ctx, bookingID)
			if err != nil {
				return err
			}
			if current != nil && current.Status == models.BookingStatusPaid {
				result = &models.SettlementResult{Booking: current, AlreadyPaid: true}
				return nil
			}
			return ErrBookingNotPending
		}

		if err := repos.Seats().Confirm(ctx, booking.Entity(), booking.NumSeats); err != nil {
			return err
		}

		if payment != nil {
			payment.BookingID = bookingID
			payment.Status = models.PaymentStatusCompleted
			if err := repos.Payments().Create(ctx, payment); err != nil {
				return err
			}
		}

		booking.Status = models.BookingStatusPaid
		booking.HoldExpiresAt = nil
		result = &models.SettlementResult{Booking: booking, Payment: payment}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.AlreadyPaid {
		s.logger.WithField("booking_id", bookingID).Info("Settlement repeated for paid booking, nothing changed")
		return result, nil
	}

	s.availability.Invalidate(ctx, result.Booking.Entity())
	s.notifier.PaymentReceived(ctx, result.Booking, payment)

	fields := logrus.Fields{
		"booking_id": bookingID,
		"entity":     result.Booking.Entity().String(),
		"num_seats":  result.Booking.NumSeats,
	}
	if payment != nil {
		fields["payment_id"] = payment.ID
		fields["method"] = payment.Method
	}
	s.logger.WithFields(fields).Info("Booking settled")

	return result, nil
}

// recordFailure releases the hold and stores the failed attempt atomically
func (s *SettlementService) recordFailure(ctx context.Context, booking *models.Booking, req *models.ProcessPaymentRequest) error {
	txID := strings.TrimSpace(req.TransactionID)
	if txID == "" {
		txID = "TXN-" + uuid.NewString()
	}

	var released bool
	err := s.store.WithinTx(ctx, func(repos database.Repositories) error {
		var err error
		released, err = releaseHold(ctx, repos, booking)
		if err != nil {
			return err
		}
		return repos.Payments().Create(ctx, &models.Payment{
			BookingID:     booking.ID,
			AmountRWF:     req.AmountRWF,
			Method:        req.Method,
			Status:        models.PaymentStatusFailed,
			TransactionID: txID,
		})
	})
	if err != nil {
		return err
	}

	if released {
		s.availability.Invalidate(ctx, booking.Entity())
		s.notifier.BookingCancelled(ctx, booking)
	}
	return nil
}
