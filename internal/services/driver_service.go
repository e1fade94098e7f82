package services

import (
	"context"
	"strings"

	"github.com/ihute/transit-backend/internal/database"
	"github.com/ihute/transit-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// DriverTripStore reads and updates trips assigned to drivers
type DriverTripStore interface {
	ListDriverTrips(ctx context.Context, driverID int64) ([]*models.DriverTrip, error)
	UpdateTripStatus(ctx context.Context, tripID, driverID int64, status models.TripStatus) (*models.Trip, error)
}

// DriverService handles the driver self-service operations
type DriverService struct {
	drivers DriverStore
	trips   DriverTripStore
	logger  *logrus.Logger
}

// NewDriverService creates a new DriverService
func NewDriverService(drivers DriverStore, trips DriverTripStore, logger *logrus.Logger) *DriverService {
	return &DriverService{drivers: drivers, trips: trips, logger: logger}
}

// RegisterCar adds a car to the driver's fleet and initializes its seat ledger
func (s *DriverService) RegisterCar(ctx context.Context, driverID int64, req *models.RegisterCarRequest) (*models.PrivateCar, error) {
	plate := strings.ToUpper(strings.TrimSpace(req.PlateNumber))
	if plate == "" {
		return nil, NewValidationError("plate_number is required")
	}
	if req.SeatCount < 1 {
		return nil, NewValidationError("seat_count must be at least 1")
	}
	carType := strings.TrimSpace(req.CarType)
	if carType == "" {
		carType = "sedan"
	}

	car := &models.PrivateCar{DriverID: driverID, PlateNumber: plate, CarType: carType, SeatCount: req.SeatCount}
	if err := s.drivers.CreateCar(ctx, car); err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return nil, ErrAlreadyExists
		case database.IsForeignKeyViolation(err):
			return nil, ErrDriverNotFound
		}
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"driver_id":  driverID,
		"car_id":     car.ID,
		"seat_count": car.SeatCount,
	}).Info("Car registered and seat ledger initialized")
	return car, nil
}

// ListTrips returns the trips assigned to the driver
func (s *DriverService) ListTrips(ctx context.Context, driverID int64) ([]*models.DriverTrip, error) {
	trips, err := s.trips.ListDriverTrips(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if trips == nil {
		trips = []*models.DriverTrip{}
	}
	return trips, nil
}

// UpdateTripStatus moves one of the driver's own trips to a new status
func (s *DriverService) UpdateTripStatus(ctx context.Context, driverID, tripID int64, status models.TripStatus) (*models.Trip, error) {
	if !status.DriverSettable() {
		return nil, NewValidationError("status must be in_progress, completed or cancelled")
	}

	trip, err := s.trips.UpdateTripStatus(ctx, tripID, driverID, status)
	if err != nil {
		return nil, err
	}
	if trip == nil {
		return nil, ErrTripNotFound
	}

	s.logger.WithFields(logrus.Fields{"driver_id": driverID, "trip_id": tripID, "status": status}).Info("Trip status updated")
	return trip, nil
}

// UpdateLocation stores the driver's current position
func (s *DriverService) UpdateLocation(ctx context.Context, driverID int64, req *models.UpdateLocationRequest) (*models.Driver, error) {
	if req.Lat == nil || req.Lng == nil {
		return nil, NewValidationError("lat and lng are required")
	}
	if *req.Lat < -90 || *req.Lat > 90 || *req.Lng < -180 || *req.Lng > 180 {
		return nil, NewValidationError("lat must be within [-90, 90] and lng within [-180, 180]")
	}

	driver, err := s.drivers.UpdateLocation(ctx, driverID, *req.Lat, *req.Lng)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, ErrDriverNotFound
	}
	return driver, nil
}
