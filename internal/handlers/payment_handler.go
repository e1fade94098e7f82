package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ihute/transit-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// PaymentOperations is the passenger side of settlement
type PaymentOperations interface {
	ProcessPayment(ctx context.Context, req *models.ProcessPaymentRequest) (*models.SettlementResult, error)
	GetPayment(ctx context.Context, paymentID int64) (*models.Payment, error)
}

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	payments PaymentOperations
	logger   *logrus.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments PaymentOperations, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, logger: logger}
}

// ProcessPayment handles POST /api/payments.
// A booking that was already settled answers 200 with already_paid=true.
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	var req models.ProcessPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.payments.ProcessPayment(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadyPaid {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

// GetPayment handles GET /api/payments/:payment_id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	paymentID, ok := idParam(c, "payment_id")
	if !ok {
		return
	}

	payment, err := h.payments.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}
