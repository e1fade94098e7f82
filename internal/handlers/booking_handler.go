package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ihute/transit-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// BookingOperations is the part of the reservation service used over HTTP
type BookingOperations interface {
	CreateBooking(ctx context.Context, req *models.CreateBookingRequest) (*models.CreateBookingResponse, error)
	CancelBooking(ctx context.Context, bookingID int64) (*models.CancelBookingResponse, error)
	GetBooking(ctx context.Context, bookingID int64) (*models.Booking, error)
	GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error)
}

// TicketGenerator renders e-tickets for paid bookings
type TicketGenerator interface {
	GenerateTicket(ctx context.Context, bookingID int64) ([]byte, string, error)
}

// BookingHandler handles passenger booking endpoints
type BookingHandler struct {
	bookings BookingOperations
	tickets  TicketGenerator
	logger   *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookings BookingOperations, tickets TicketGenerator, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookings: bookings,
		tickets:  tickets,
		logger:   logger,
	}
}

// CreateBooking handles POST /api/bookings
// @Summary Reserve seats on a trip or private car
// @Tags Bookings
// @Accept json
// @Produce json
// @Success 201 {object} models.CreateBookingResponse
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 404 {object} map[string]interface{} "Trip or car not found"
// @Failure 409 {object} map[string]interface{} "cutoff_passed or insufficient_seats"
// @Router /api/bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.bookings.CreateBooking(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetBooking handles GET /api/bookings/:booking_id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, ok := idParam(c, "booking_id")
	if !ok {
		return
	}

	booking, err := h.bookings.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// FindBooking handles GET /api/bookings?reference=BK-XXXXXXXXX
func (h *BookingHandler) FindBooking(c *gin.Context) {
	reference := strings.TrimSpace(c.Query("reference"))
	if reference == "" {
		errorBody(c, http.StatusBadRequest, "invalid_request", "reference query parameter is required")
		return
	}

	booking, err := h.bookings.GetBookingByReference(c.Request.Context(), reference)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// CancelBooking handles POST /api/bookings/:booking_id/cancel.
// Cancelling an already cancelled booking answers 200 with released=false.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, ok := idParam(c, "booking_id")
	if !ok {
		return
	}

	resp, err := h.bookings.CancelBooking(c.Request.Context(), bookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"released":   resp.Released,
	}).Info("Booking cancel requested")
	c.JSON(http.StatusOK, resp)
}

// DownloadTicket handles GET /api/bookings/:booking_id/ticket
func (h *BookingHandler) DownloadTicket(c *gin.Context) {
	bookingID, ok := idParam(c, "booking_id")
	if !ok {
		return
	}

	pdf, filename, err := h.tickets.GenerateTicket(c.Request.Context(), bookingID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
