package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ihute/transit-backend/internal/models"
	"github.com/ihute/transit-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPaymentOperations is a mock implementation of PaymentOperations
type MockPaymentOperations struct {
	mock.Mock
}

func (m *MockPaymentOperations) ProcessPayment(ctx context.Context, req *models.ProcessPaymentRequest) (*models.SettlementResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SettlementResult), args.Error(1)
}

func (m *MockPaymentOperations) GetPayment(ctx context.Context, paymentID int64) (*models.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func paymentRouter(ops *MockPaymentOperations) *gin.Engine {
	h := NewPaymentHandler(ops, quietLogger())
	router := setupRouter()
	router.POST("/api/payments", h.ProcessPayment)
	router.GET("/api/payments/:payment_id", h.GetPayment)
	return router
}

func TestProcessPayment(t *testing.T) {
	paid := &models.Booking{ID: 41, Status: models.BookingStatusPaid}

	t.Run("settles", func(t *testing.T) {
		ops := new(MockPaymentOperations)
		ops.On("ProcessPayment", mock.Anything, &models.ProcessPaymentRequest{
			BookingID: 41, AmountRWF: 5000, Method: models.PaymentMethodMoMo,
		}).Return(&models.SettlementResult{
			Booking: paid,
			Payment: &models.Payment{ID: 9, BookingID: 41, Status: models.PaymentStatusCompleted},
		}, nil)

		w := doJSON(paymentRouter(ops), http.MethodPost, "/api/payments", map[string]interface{}{
			"booking_id": 41, "amount_rwf": 5000, "method": "momo",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"already_paid":false`)
		ops.AssertExpectations(t)
	})

	t.Run("repeated settlement is reported, not applied", func(t *testing.T) {
		ops := new(MockPaymentOperations)
		ops.On("ProcessPayment", mock.Anything, mock.Anything).Return(&models.SettlementResult{Booking: paid, AlreadyPaid: true}, nil)

		w := doJSON(paymentRouter(ops), http.MethodPost, "/api/payments", map[string]interface{}{
			"booking_id": 41, "amount_rwf": 5000, "method": "momo",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"already_paid":true`)
	})

	t.Run("failure codes", func(t *testing.T) {
		tests := []struct {
			err    error
			status int
			code   string
		}{
			{services.ErrPaymentDeclined, http.StatusPaymentRequired, "payment_declined"},
			{services.ErrBookingNotPending, http.StatusConflict, "booking_not_pending"},
			{services.ErrBookingNotFound, http.StatusNotFound, "booking_not_found"},
			{services.NewValidationError("method must be one of momo, airtel, card, cash"), http.StatusBadRequest, "validation_error"},
		}
		for _, tt := range tests {
			ops := new(MockPaymentOperations)
			ops.On("ProcessPayment", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := doJSON(paymentRouter(ops), http.MethodPost, "/api/payments", map[string]interface{}{"booking_id": 41})

			assert.Equal(t, tt.status, w.Code, tt.code)
			assert.Equal(t, tt.code, decodeError(t, w)["error"])
		}
	})
}

func TestGetPayment(t *testing.T) {
	ops := new(MockPaymentOperations)
	ops.On("GetPayment", mock.Anything, int64(9)).Return(&models.Payment{ID: 9, TransactionID: "MOMO-123"}, nil)
	ops.On("GetPayment", mock.Anything, int64(10)).Return(nil, services.ErrPaymentNotFound)
	router := paymentRouter(ops)

	w := doJSON(router, http.MethodGet, "/api/payments/9", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "MOMO-123")

	w = doJSON(router, http.MethodGet, "/api/payments/10", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "payment_not_found", decodeError(t, w)["error"])

	w = doJSON(router, http.MethodGet, "/api/payments/0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
