package services

import (
	"context"
	"strings"
	"time"

	"github.com/ihute/transit-backend/internal/database"
	"github.com/ihute/transit-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// CatalogStore persists expresses, routes, fares, buses and trips
type CatalogStore interface {
	CreateExpress(ctx context.Context, express *models.Express) error
	CreateRoute(ctx context.Context, route *models.Route) error
	UpsertRoutePrice(ctx context.Context, price *models.ExpressRoute) error
	CreateBus(ctx context.Context, bus *models.Bus) error
	GetBus(ctx context.Context, busID int64) (*models.Bus, error)
	CreateTrip(ctx context.Context, trip *models.Trip, seatCount int) error
}

// SearchStore runs passenger search queries
type SearchStore interface {
	SearchTrips(ctx context.Context, params models.TripSearchParams) ([]*models.TripSearchResult, error)
	SearchCars(ctx context.Context) ([]*models.CarSearchResult, error)
}

// BookingLister lists bookings for the back office
type BookingLister interface {
	ListForAdmin(ctx context.Context, filter models.BookingFilter) ([]*models.AdminBookingView, error)
}

// CatalogService provisions the bookable catalog and serves searches.
// Creating a trip initializes its seat ledger from the bus seat count.
type CatalogService struct {
	catalog      CatalogStore
	search       SearchStore
	bookings     BookingLister
	availability *AvailabilityService
	audit        AuditRecorder
	logger       *logrus.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	catalog CatalogStore,
	search SearchStore,
	bookings BookingLister,
	availability *AvailabilityService,
	audit AuditRecorder,
	logger *logrus.Logger,
) *CatalogService {
	return &CatalogService{
		catalog:      catalog,
		search:       search,
		bookings:     bookings,
		availability: availability,
		audit:        audit,
		logger:       logger,
	}
}

// ============================================================================
// PROVISIONING (admin)
// ============================================================================

// CreateExpress registers a bus company. Super admins only.
func (s *CatalogService) CreateExpress(ctx context.Context, actor AdminActor, req *models.CreateExpressRequest) (*models.Express, error) {
	if actor.Role != models.AdminRoleSuper {
		return nil, ErrForbidden
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewValidationError("name is required")
	}

	express := &models.Express{Name: name, LogoURL: req.LogoURL}
	if err := s.catalog.CreateExpress(ctx, express); err != nil {
		return nil, mapWriteError(err)
	}

	s.record(ctx, actor, AuditCreateExpress, "expresses", express.ID, express)
	return express, nil
}

// CreateRoute adds a city pair. Super admins only.
func (s *CatalogService) CreateRoute(ctx context.Context, actor AdminActor, req *models.CreateRouteRequest) (*models.Route, error) {
	if actor.Role != models.AdminRoleSuper {
		return nil, ErrForbidden
	}
	from, to := strings.TrimSpace(req.FromCity), strings.TrimSpace(req.ToCity)
	if from == "" || to == "" {
		return nil, NewValidationError("from_city and to_city are required")
	}
	if strings.EqualFold(from, to) {
		return nil, NewValidationError("from_city and to_city must differ")
	}
	if req.DistanceKM != nil && *req.DistanceKM <= 0 {
		return nil, NewValidationError("distance_km must be positive")
	}

	route := &models.Route{FromCity: from, ToCity: to, DistanceKM: req.DistanceKM}
	if err := s.catalog.CreateRoute(ctx, route); err != nil {
		return nil, mapWriteError(err)
	}

	s.record(ctx, actor, AuditCreateRoute, "routes", route.ID, route)
	return route, nil
}

// SetRoutePrice sets the fare an express charges on a route
func (s *CatalogService) SetRoutePrice(ctx context.Context, actor AdminActor, req *models.SetRoutePriceRequest) (*models.ExpressRoute, error) {
	expressID, err := scopedExpress(actor, req.ExpressID)
	if err != nil {
		return nil, err
	}
	if req.RouteID <= 0 {
		return nil, NewValidationError("route_id is required")
	}
	if req.PriceRWF <= 0 {
		return nil, NewValidationError("price_rwf must be a positive integer")
	}

	price := &models.ExpressRoute{ExpressID: expressID, RouteID: req.RouteID, PriceRWF: req.PriceRWF}
	if err := s.catalog.UpsertRoutePrice(ctx, price); err != nil {
		return nil, mapWriteError(err)
	}

	s.record(ctx, actor, AuditSetPrice, "express_routes", price.ID, price)
	return price, nil
}

// CreateBus registers a bus. Express admins always create under their own express.
func (s *CatalogService) CreateBus(ctx context.Context, actor AdminActor, req *models.CreateBusRequest) (*models.Bus, error) {
	expressID, err := scopedExpress(actor, req.ExpressID)
	if err != nil {
		return nil, err
	}
	plate := strings.ToUpper(strings.TrimSpace(req.PlateNumber))
	if plate == "" {
		return nil, NewValidationError("plate_number is required")
	}
	if req.SeatCount < 1 {
		return nil, NewValidationError("seat_count must be at least 1")
	}
	busType := strings.TrimSpace(req.BusType)
	if busType == "" {
		busType = "standard"
	}

	bus := &models.Bus{ExpressID: expressID, PlateNumber: plate, BusType: busType, SeatCount: req.SeatCount}
	if err := s.catalog.CreateBus(ctx, bus); err != nil {
		return nil, mapWriteError(err)
	}

	s.record(ctx, actor, AuditCreateBus, "buses", bus.ID, bus)
	return bus, nil
}

// CreateTrip schedules a departure and initializes its ledger with the bus seat count
func (s *CatalogService) CreateTrip(ctx context.Context, actor AdminActor, req *models.CreateTripRequest) (*models.Trip, error) {
	if actor.Role == models.AdminRoleViewer {
		return nil, ErrForbidden
	}
	if req.BusID <= 0 || req.RouteID <= 0 {
		return nil, NewValidationError("bus_id and route_id are required")
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(req.DepartureDate))
	if err != nil {
		return nil, NewValidationError("departure_date must be YYYY-MM-DD")
	}
	clock, err := time.Parse("15:04", strings.TrimSpace(req.DepartureTime))
	if err != nil {
		return nil, NewValidationError("departure_time must be HH:MM")
	}

	bus, err := s.catalog.GetBus(ctx, req.BusID)
	if err != nil {
		return nil, err
	}
	if bus == nil {
		return nil, ErrBusNotFound
	}
	if actor.Role == models.AdminRoleExpress && (actor.ExpressID == nil || *actor.ExpressID != bus.ExpressID) {
		return nil, ErrForbidden
	}

	trip := &models.Trip{
		BusID:         bus.ID,
		RouteID:       req.RouteID,
		DriverID:      req.DriverID,
		DepartureDate: date,
		DepartureTime: clock.Format("15:04"),
	}
	if err := s.catalog.CreateTrip(ctx, trip, bus.SeatCount); err != nil {
		return nil, mapWriteError(err)
	}

	s.logger.WithFields(logrus.Fields{
		"trip_id":    trip.ID,
		"bus_id":     bus.ID,
		"seat_count": bus.SeatCount,
	}).Info("Trip scheduled and seat ledger initialized")

	s.record(ctx, actor, AuditCreateTrip, "trips", trip.ID, trip)
	return trip, nil
}

// ListBookings returns recent bookings. Express admins only see their express.
func (s *CatalogService) ListBookings(ctx context.Context, actor AdminActor, status string, limit int) ([]*models.AdminBookingView, error) {
	filter := models.BookingFilter{Limit: limit}
	if actor.Role == models.AdminRoleExpress {
		if actor.ExpressID == nil {
			return nil, ErrForbidden
		}
		filter.ExpressID = actor.ExpressID
	}
	if status != "" {
		st := models.BookingStatus(status)
		switch st {
		case models.BookingStatusPending, models.BookingStatusPaid, models.BookingStatusCancelled:
			filter.Status = &st
		default:
			return nil, NewValidationError("status must be pending, paid or cancelled")
		}
	}
	return s.bookings.ListForAdmin(ctx, filter)
}

// ============================================================================
// SEARCH (public)
// ============================================================================

// SearchTrips lists scheduled trips with their available seats. Trips with
// no ledger entry report null availability and are dropped when num_seats is set.
func (s *CatalogService) SearchTrips(ctx context.Context, params models.TripSearchParams) ([]*models.TripSearchResult, error) {
	params.FromCity = strings.TrimSpace(params.FromCity)
	params.ToCity = strings.TrimSpace(params.ToCity)
	if params.FromCity == "" || params.ToCity == "" || params.DepartureDate == "" {
		return nil, NewValidationError("from_city, to_city and departure_date are required")
	}
	if _, err := time.Parse("2006-01-02", params.DepartureDate); err != nil {
		return nil, NewValidationError("departure_date must be YYYY-MM-DD")
	}
	if params.NumSeats < 0 {
		return nil, NewValidationError("num_seats cannot be negative")
	}

	trips, err := s.search.SearchTrips(ctx, params)
	if err != nil {
		return nil, err
	}

	results := make([]*models.TripSearchResult, 0, len(trips))
	for _, trip := range trips {
		available, err := s.availability.Available(ctx, models.TripRef(trip.TripID))
		if err != nil {
			return nil, err
		}
		trip.AvailableSeats = available
		if fits(available, params.NumSeats) {
			results = append(results, trip)
		}
	}
	return results, nil
}

// SearchCars lists active cars with their available seats
func (s *CatalogService) SearchCars(ctx context.Context, params models.CarSearchParams) ([]*models.CarSearchResult, error) {
	if params.NumSeats < 0 {
		return nil, NewValidationError("num_seats cannot be negative")
	}

	cars, err := s.search.SearchCars(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*models.CarSearchResult, 0, len(cars))
	for _, car := range cars {
		available, err := s.availability.Available(ctx, models.CarRef(car.CarID))
		if err != nil {
			return nil, err
		}
		car.AvailableSeats = available
		if fits(available, params.NumSeats) {
			results = append(results, car)
		}
	}
	return results, nil
}

func fits(available *int, wanted int) bool {
	if wanted <= 0 {
		return true
	}
	return available != nil && *available >= wanted
}

// scopedExpress resolves the express an admin acts on
func scopedExpress(actor AdminActor, requested *int64) (int64, error) {
	switch actor.Role {
	case models.AdminRoleSuper:
		if requested == nil || *requested <= 0 {
			return 0, NewValidationError("express_id is required")
		}
		return *requested, nil
	case models.AdminRoleExpress:
		if actor.ExpressID == nil {
			return 0, ErrForbidden
		}
		return *actor.ExpressID, nil
	default:
		return 0, ErrForbidden
	}
}

func mapWriteError(err error) error {
	switch {
	case database.IsUniqueViolation(err):
		return ErrAlreadyExists
	case database.IsForeignKeyViolation(err):
		return NewValidationError("referenced record does not exist")
	}
	return err
}

func (s *CatalogService) record(ctx context.Context, actor AdminActor, action, entityType string, id int64, value interface{}) {
	if s.audit == nil {
		return
	}
	s.audit.LogAdminAction(ctx, actor, AuditEntry{
		Action:     action,
		EntityType: entityType,
		EntityID:   &id,
		NewValue:   value,
	})
}
