package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ihute/transit-backend/internal/middleware"
	"github.com/ihute/transit-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// DriverAuthenticator registers and signs in drivers
type DriverAuthenticator interface {
	RegisterDriver(ctx context.Context, req *models.DriverRegisterRequest) (*models.DriverAuthResponse, error)
	DriverLogin(ctx context.Context, req *models.DriverLoginRequest) (*models.DriverAuthResponse, error)
}

// DriverOperations are the actions of a signed-in driver
type DriverOperations interface {
	RegisterCar(ctx context.Context, driverID int64, req *models.RegisterCarRequest) (*models.PrivateCar, error)
	ListTrips(ctx context.Context, driverID int64) ([]*models.DriverTrip, error)
	UpdateTripStatus(ctx context.Context, driverID, tripID int64, status models.TripStatus) (*models.Trip, error)
	UpdateLocation(ctx context.Context, driverID int64, req *models.UpdateLocationRequest) (*models.Driver, error)
}

// DriverHandler handles driver account and fleet endpoints
type DriverHandler struct {
	auth    DriverAuthenticator
	drivers DriverOperations
	logger  *logrus.Logger
}

// NewDriverHandler creates a new DriverHandler
func NewDriverHandler(auth DriverAuthenticator, drivers DriverOperations, logger *logrus.Logger) *DriverHandler {
	return &DriverHandler{
		auth:    auth,
		drivers: drivers,
		logger:  logger,
	}
}

// Register handles POST /api/drivers/register
func (h *DriverHandler) Register(c *gin.Context) {
	var req models.DriverRegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.auth.RegisterDriver(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /api/drivers/login
func (h *DriverHandler) Login(c *gin.Context) {
	var req models.DriverLoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.auth.DriverLogin(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegisterCar handles POST /api/drivers/cars
func (h *DriverHandler) RegisterCar(c *gin.Context) {
	var req models.RegisterCarRequest
	if !bindJSON(c, &req) {
		return
	}

	account := middleware.MustGetAccountContext(c)
	car, err := h.drivers.RegisterCar(c.Request.Context(), account.AccountID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, car)
}

// ListTrips handles GET /api/drivers/trips
func (h *DriverHandler) ListTrips(c *gin.Context) {
	account := middleware.MustGetAccountContext(c)
	trips, err := h.drivers.ListTrips(c.Request.Context(), account.AccountID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"trips": trips,
		"count": len(trips),
	})
}

// UpdateTripStatus handles PATCH /api/drivers/trips/:trip_id/status
func (h *DriverHandler) UpdateTripStatus(c *gin.Context) {
	tripID, ok := idParam(c, "trip_id")
	if !ok {
		return
	}
	var req models.UpdateTripStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	account := middleware.MustGetAccountContext(c)
	trip, err := h.drivers.UpdateTripStatus(c.Request.Context(), account.AccountID, tripID, req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// UpdateLocation handles PATCH /api/drivers/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req models.UpdateLocationRequest
	if !bindJSON(c, &req) {
		return
	}

	account := middleware.MustGetAccountContext(c)
	driver, err := h.drivers.UpdateLocation(c.Request.Context(), account.AccountID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, driver)
}
