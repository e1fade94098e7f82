package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ihute/transit-backend/internal/middleware"
	"github.com/ihute/transit-backend/internal/models"
	"github.com/ihute/transit-backend/internal/services"
	"github.com/ihute/transit-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// AdminAuthenticator signs admins in
type AdminAuthenticator interface {
	AdminLogin(ctx context.Context, req *models.AdminLoginRequest) (*models.AdminLoginResponse, error)
}

// CatalogOperations provisions expresses, routes, buses and trips
type CatalogOperations interface {
	CreateExpress(ctx context.Context, actor services.AdminActor, req *models.CreateExpressRequest) (*models.Express, error)
	CreateRoute(ctx context.Context, actor services.AdminActor, req *models.CreateRouteRequest) (*models.Route, error)
	SetRoutePrice(ctx context.Context, actor services.AdminActor, req *models.SetRoutePriceRequest) (*models.ExpressRoute, error)
	CreateBus(ctx context.Context, actor services.AdminActor, req *models.CreateBusRequest) (*models.Bus, error)
	CreateTrip(ctx context.Context, actor services.AdminActor, req *models.CreateTripRequest) (*models.Trip, error)
	ListBookings(ctx context.Context, actor services.AdminActor, status string, limit int) ([]*models.AdminBookingView, error)
}

// CashConfirmer settles a booking paid in person
type CashConfirmer interface {
	ConfirmCashPayment(ctx context.Context, actor services.AdminActor, bookingID int64, req *models.ConfirmCashPaymentRequest) (*models.SettlementResult, error)
}

// AuditReader lists recorded admin actions
type AuditReader interface {
	ListRecent(ctx context.Context, limit int) ([]*models.AuditLog, error)
}

// HoldSweeper releases expired pending bookings on demand
type HoldSweeper interface {
	RunHoldSweepNow(ctx context.Context) (int, error)
}

// AdminHandler handles admin-specific HTTP requests
type AdminHandler struct {
	auth     AdminAuthenticator
	catalog  CatalogOperations
	payments CashConfirmer
	audit    AuditReader
	holds    HoldSweeper
	logger   *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	auth AdminAuthenticator,
	catalog CatalogOperations,
	payments CashConfirmer,
	audit AuditReader,
	holds HoldSweeper,
	logger *logrus.Logger,
) *AdminHandler {
	return &AdminHandler{
		auth:     auth,
		catalog:  catalog,
		payments: payments,
		audit:    audit,
		holds:    holds,
		logger:   logger,
	}
}

// actor builds the audited identity from the token and the request
func actor(c *gin.Context) services.AdminActor {
	account := middleware.MustGetAccountContext(c)
	return services.AdminActor{
		AdminID:   account.AccountID,
		Role:      models.AdminRole(account.Role),
		ExpressID: account.ExpressID,
		IPAddress: utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
	}
}

// Login handles POST /api/admin/login
// @Summary Admin login
// @Tags Admin
// @Accept json
// @Produce json
// @Success 200 {object} models.AdminLoginResponse
// @Failure 401 {object} map[string]interface{} "invalid_credentials"
// @Router /api/admin/login [post]
func (h *AdminHandler) Login(c *gin.Context) {
	var req models.AdminLoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.auth.AdminLogin(c.Request.Context(), &req)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"email": req.Email,
			"ip":    utils.GetRealIP(c),
		}).WithError(err).Warn("Admin login failed")
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreateExpress handles POST /api/admin/expresses
func (h *AdminHandler) CreateExpress(c *gin.Context) {
	var req models.CreateExpressRequest
	if !bindJSON(c, &req) {
		return
	}
	express, err := h.catalog.CreateExpress(c.Request.Context(), actor(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, express)
}

// CreateRoute handles POST /api/admin/routes
func (h *AdminHandler) CreateRoute(c *gin.Context) {
	var req models.CreateRouteRequest
	if !bindJSON(c, &req) {
		return
	}
	route, err := h.catalog.CreateRoute(c.Request.Context(), actor(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, route)
}

// SetRoutePrice handles POST /api/admin/express-routes
func (h *AdminHandler) SetRoutePrice(c *gin.Context) {
	var req models.SetRoutePriceRequest
	if !bindJSON(c, &req) {
		return
	}
	price, err := h.catalog.SetRoutePrice(c.Request.Context(), actor(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, price)
}

// CreateBus handles POST /api/admin/buses
func (h *AdminHandler) CreateBus(c *gin.Context) {
	var req models.CreateBusRequest
	if !bindJSON(c, &req) {
		return
	}
	bus, err := h.catalog.CreateBus(c.Request.Context(), actor(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, bus)
}

// CreateTrip handles POST /api/admin/trips. The trip's seat ledger is
// initialized with the bus seat count in the same transaction.
func (h *AdminHandler) CreateTrip(c *gin.Context) {
	var req models.CreateTripRequest
	if !bindJSON(c, &req) {
		return
	}
	trip, err := h.catalog.CreateTrip(c.Request.Context(), actor(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

// ListBookings handles GET /api/admin/bookings?status=&limit=
func (h *AdminHandler) ListBookings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	bookings, err := h.catalog.ListBookings(c.Request.Context(), actor(c), c.Query("status"), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// ConfirmPayment handles POST /api/admin/bookings/:booking_id/confirm-payment
func (h *AdminHandler) ConfirmPayment(c *gin.Context) {
	bookingID, ok := idParam(c, "booking_id")
	if !ok {
		return
	}
	var req models.ConfirmCashPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	admin := actor(c)
	result, err := h.payments.ConfirmCashPayment(c.Request.Context(), admin, bookingID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"booking_id":   bookingID,
		"admin_id":     admin.AdminID,
		"already_paid": result.AlreadyPaid,
	}).Info("Admin confirmed payment")
	c.JSON(http.StatusOK, result)
}

// ListAuditLogs handles GET /api/admin/audit-logs (super admins)
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	logs, err := h.audit.ListRecent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"audit_logs": logs,
		"count":      len(logs),
	})
}

// SweepHolds handles POST /api/admin/holds/sweep
func (h *AdminHandler) SweepHolds(c *gin.Context) {
	released, err := h.holds.RunHoldSweepNow(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": released})
}
