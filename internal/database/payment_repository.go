package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ihute/transit-backend/internal/models"
)

// PaymentStore persists settlement attempts
type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, paymentID int64) (*models.Payment, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]*models.Payment, error)
}

// PaymentRepository implements PaymentStore
type PaymentRepository struct {
	db Querier
}

// NewPaymentRepository creates a payment repository bound to a pool or a transaction
func NewPaymentRepository(db Querier) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a payment row and fills in its id and creation time
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (booking_id, amount_rwf, method, status, transaction_id, confirmed_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING payment_id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		payment.BookingID, payment.AmountRWF, payment.Method, payment.Status,
		payment.TransactionID, payment.ConfirmedBy,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// GetByID returns the payment or nil if it does not exist
func (r *PaymentRepository) GetByID(ctx context.Context, paymentID int64) (*models.Payment, error) {
	query := `
		SELECT payment_id, booking_id, amount_rwf, method, status, transaction_id, confirmed_by, created_at
		FROM payments
		WHERE payment_id = $1`

	var payment models.Payment
	err := r.db.GetContext(ctx, &payment, query, paymentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

// ListByBooking returns every payment attempt for a booking, oldest first
func (r *PaymentRepository) ListByBooking(ctx context.Context, bookingID int64) ([]*models.Payment, error) {
	query := `
		SELECT payment_id, booking_id, amount_rwf, method, status, transaction_id, confirmed_by, created_at
		FROM payments
		WHERE booking_id = $1
		ORDER BY created_at`

	var payments []*models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, bookingID); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
