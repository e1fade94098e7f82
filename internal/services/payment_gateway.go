package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/ihute/transit-backend/internal/models"
)

// ChargeRequest asks a provider to collect payment for a booking
type ChargeRequest struct {
	Booking       *models.Booking
	AmountRWF     int64
	Method        models.PaymentMethod
	TransactionID string // caller-supplied reference, may be empty
}

// ChargeResult is a successful charge
type ChargeResult struct {
	TransactionID string
}

// PaymentGateway collects money. A returned error means the charge was declined
// or could not be attempted; the booking's hold is then released.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// SimulatedGateway approves every charge
type SimulatedGateway struct{}

// Charge returns the caller's transaction id or a fresh TXN- id
func (SimulatedGateway) Charge(_ context.Context, req ChargeRequest) (*ChargeResult, error) {
	txID := req.TransactionID
	if txID == "" {
		txID = "TXN-" + uuid.NewString()
	}
	return &ChargeResult{TransactionID: txID}, nil
}
