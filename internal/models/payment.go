package models

import "time"

// PaymentMethod is the channel a passenger paid through
type PaymentMethod string

const (
	PaymentMethodMoMo   PaymentMethod = "momo"
	PaymentMethodAirtel PaymentMethod = "airtel"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodCash   PaymentMethod = "cash"
)

// Valid reports whether m is an accepted payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodMoMo, PaymentMethodAirtel, PaymentMethodCard, PaymentMethodCash:
		return true
	}
	return false
}

// PaymentStatus is the outcome of a settlement attempt
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment records one settlement attempt for a booking. Amounts are whole RWF.
type Payment struct {
	ID            int64         `json:"payment_id" db:"payment_id"`
	BookingID     int64         `json:"booking_id" db:"booking_id"`
	AmountRWF     int64         `json:"amount_rwf" db:"amount_rwf"`
	Method        PaymentMethod `json:"method" db:"method"`
	Status        PaymentStatus `json:"status" db:"status"`
	TransactionID string        `json:"transaction_id" db:"transaction_id"`
	ConfirmedBy   *int64        `json:"confirmed_by,omitempty" db:"confirmed_by"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// ProcessPaymentRequest is the passenger-facing payment call
type ProcessPaymentRequest struct {
	BookingID     int64         `json:"booking_id"`
	AmountRWF     int64         `json:"amount_rwf"`
	Method        PaymentMethod `json:"method"`
	TransactionID string        `json:"transaction_id,omitempty"`
}

// ConfirmCashPaymentRequest is sent by an admin who collected payment in person
type ConfirmCashPaymentRequest struct {
	AmountRWF     int64         `json:"amount_rwf"`
	Method        PaymentMethod `json:"method,omitempty"`
	TransactionID string        `json:"transaction_id,omitempty"`
}

// SettlementResult describes the booking after a settlement signal.
// AlreadyPaid is set when the booking had been settled before and nothing changed.
type SettlementResult struct {
	Booking     *Booking `json:"booking"`
	Payment     *Payment `json:"payment,omitempty"`
	AlreadyPaid bool     `json:"already_paid"`
}
