package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ihute/transit-backend/internal/middleware"
	"github.com/ihute/transit-backend/internal/models"
	"github.com/ihute/transit-backend/internal/services"
	"github.com/ihute/transit-backend/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCatalog is a mock implementation of CatalogOperations
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) CreateExpress(ctx context.Context, actor services.AdminActor, req *models.CreateExpressRequest) (*models.Express, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Express), args.Error(1)
}

func (m *MockCatalog) CreateRoute(ctx context.Context, actor services.AdminActor, req *models.CreateRouteRequest) (*models.Route, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Route), args.Error(1)
}

func (m *MockCatalog) SetRoutePrice(ctx context.Context, actor services.AdminActor, req *models.SetRoutePriceRequest) (*models.ExpressRoute, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExpressRoute), args.Error(1)
}

func (m *MockCatalog) CreateBus(ctx context.Context, actor services.AdminActor, req *models.CreateBusRequest) (*models.Bus, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bus), args.Error(1)
}

func (m *MockCatalog) CreateTrip(ctx context.Context, actor services.AdminActor, req *models.CreateTripRequest) (*models.Trip, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Trip), args.Error(1)
}

func (m *MockCatalog) ListBookings(ctx context.Context, actor services.AdminActor, status string, limit int) ([]*models.AdminBookingView, error) {
	args := m.Called(ctx, actor, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AdminBookingView), args.Error(1)
}

type stubAdminAuth struct {
	resp *models.AdminLoginResponse
	err  error
}

func (s stubAdminAuth) AdminLogin(context.Context, *models.AdminLoginRequest) (*models.AdminLoginResponse, error) {
	return s.resp, s.err
}

type recordingCash struct {
	actor     services.AdminActor
	bookingID int64
	result    *models.SettlementResult
	err       error
}

func (r *recordingCash) ConfirmCashPayment(_ context.Context, actor services.AdminActor, bookingID int64, _ *models.ConfirmCashPaymentRequest) (*models.SettlementResult, error) {
	r.actor = actor
	r.bookingID = bookingID
	return r.result, r.err
}

type stubAuditReader struct{ limit int }

func (s *stubAuditReader) ListRecent(_ context.Context, limit int) ([]*models.AuditLog, error) {
	s.limit = limit
	return []*models.AuditLog{{ID: 1, Action: services.AuditCreateTrip}}, nil
}

type stubSweeper struct{ released int }

func (s stubSweeper) RunHoldSweepNow(context.Context) (int, error) { return s.released, nil }

func withAccount(account middleware.AccountContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.AccountContextKey, account)
		c.Next()
	}
}

var expressAccount = func() middleware.AccountContext {
	express := int64(3)
	return middleware.AccountContext{AccountID: 7, AccountType: jwt.AccountAdmin, Role: "express_admin", ExpressID: &express}
}()

func TestAdminLogin(t *testing.T) {
	router := setupRouter()
	h := NewAdminHandler(stubAdminAuth{resp: &models.AdminLoginResponse{Token: "tok", ExpiresIn: 3600}}, nil, nil, nil, nil, quietLogger())
	router.POST("/api/admin/login", h.Login)

	w := doJSON(router, http.MethodPost, "/api/admin/login", map[string]string{"email": "ops@ihute.rw", "password": "secret-pass"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token":"tok"`)

	router = setupRouter()
	h = NewAdminHandler(stubAdminAuth{err: services.ErrInvalidCredentials}, nil, nil, nil, nil, quietLogger())
	router.POST("/api/admin/login", h.Login)

	w = doJSON(router, http.MethodPost, "/api/admin/login", map[string]string{"email": "ops@ihute.rw", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_credentials", decodeError(t, w)["error"])
}

func TestAdminCatalogEndpoints_PassActor(t *testing.T) {
	catalog := new(MockCatalog)
	isExpressAdmin := mock.MatchedBy(func(a services.AdminActor) bool {
		return a.AdminID == 7 && a.Role == models.AdminRoleExpress && a.ExpressID != nil && *a.ExpressID == 3 &&
			a.IPAddress == "192.0.2.10" && a.UserAgent == "ihute-admin/1.0"
	})
	catalog.On("CreateBus", mock.Anything, isExpressAdmin, mock.Anything).Return(&models.Bus{ID: 4, ExpressID: 3, SeatCount: 30}, nil)
	catalog.On("CreateTrip", mock.Anything, isExpressAdmin, mock.Anything).Return(&models.Trip{ID: 12, BusID: 4}, nil)
	catalog.On("CreateExpress", mock.Anything, isExpressAdmin, mock.Anything).Return(nil, services.ErrForbidden)

	h := NewAdminHandler(nil, catalog, nil, nil, nil, quietLogger())
	router := setupRouter()
	admin := router.Group("/api/admin", withAccount(expressAccount))
	admin.POST("/buses", h.CreateBus)
	admin.POST("/trips", h.CreateTrip)
	admin.POST("/expresses", h.CreateExpress)

	send := func(path string, body interface{}) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, jsonReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "ihute-admin/1.0")
		req.RemoteAddr = "192.0.2.10:5050"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := send("/api/admin/buses", map[string]interface{}{"plate_number": "RAC001A", "seat_count": 30})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = send("/api/admin/trips", map[string]interface{}{"bus_id": 4, "route_id": 1, "departure_date": "2026-11-02", "departure_time": "14:00"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"trip_id":12`)

	w = send("/api/admin/expresses", map[string]interface{}{"name": "Volcano"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	catalog.AssertExpectations(t)
}

func TestAdminListBookings(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("ListBookings", mock.Anything, mock.Anything, "pending", 20).
		Return([]*models.AdminBookingView{{Booking: models.Booking{ID: 41}}}, nil)
	catalog.On("ListBookings", mock.Anything, mock.Anything, "lost", 0).
		Return(nil, services.NewValidationError("status must be pending, paid or cancelled"))

	h := NewAdminHandler(nil, catalog, nil, nil, nil, quietLogger())
	router := setupRouter()
	router.GET("/api/admin/bookings", withAccount(expressAccount), h.ListBookings)

	w := doJSON(router, http.MethodGet, "/api/admin/bookings?status=pending&limit=20", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w = doJSON(router, http.MethodGet, "/api/admin/bookings?status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminConfirmPayment(t *testing.T) {
	cash := &recordingCash{result: &models.SettlementResult{Booking: &models.Booking{ID: 41, Status: models.BookingStatusPaid}}}
	h := NewAdminHandler(nil, nil, cash, nil, nil, quietLogger())
	router := setupRouter()
	router.POST("/api/admin/bookings/:booking_id/confirm-payment", withAccount(expressAccount), h.ConfirmPayment)

	w := doJSON(router, http.MethodPost, "/api/admin/bookings/41/confirm-payment", map[string]interface{}{"amount_rwf": 5000})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(41), cash.bookingID)
	assert.Equal(t, int64(7), cash.actor.AdminID)

	cash.result, cash.err = nil, services.ErrBookingNotPending
	w = doJSON(router, http.MethodPost, "/api/admin/bookings/41/confirm-payment", map[string]interface{}{"amount_rwf": 5000})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "booking_not_pending", decodeError(t, w)["error"])
}

func TestAdminAuditLogsAndSweep(t *testing.T) {
	audit := &stubAuditReader{}
	h := NewAdminHandler(nil, nil, nil, audit, stubSweeper{released: 3}, quietLogger())
	router := setupRouter()
	router.GET("/api/admin/audit-logs", h.ListAuditLogs)
	router.POST("/api/admin/holds/sweep", h.SweepHolds)

	w := doJSON(router, http.MethodGet, "/api/admin/audit-logs?limit=50", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 50, audit.limit)
	assert.Contains(t, w.Body.String(), services.AuditCreateTrip)

	w = doJSON(router, http.MethodPost, "/api/admin/holds/sweep", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"released":3}`, w.Body.String())
}
