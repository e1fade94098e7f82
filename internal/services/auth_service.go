package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/mail"
	"strings"

	"github.com/ihute/transit-backend/internal/database"
	"github.com/ihute/transit-backend/internal/models"
	"github.com/ihute/transit-backend/pkg/jwt"
	"github.com/ihute/transit-backend/pkg/validator"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AdminStore reads back-office accounts
type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
}

// DriverStore persists drivers and their cars
type DriverStore interface {
	Create(ctx context.Context, driver *models.Driver) error
	GetByEmail(ctx context.Context, email string) (*models.Driver, error)
	GetByID(ctx context.Context, driverID int64) (*models.Driver, error)
	UpdateLocation(ctx context.Context, driverID int64, lat, lng float64) (*models.Driver, error)
	CreateCar(ctx context.Context, car *models.PrivateCar) error
}

const minPasswordLength = 8

// AuthService handles admin and driver authentication business logic
type AuthService struct {
	admins     AdminStore
	drivers    DriverStore
	jwtService *jwt.Service
	phones     *validator.PhoneValidator
	bcryptCost int
	logger     *logrus.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(admins AdminStore, drivers DriverStore, jwtService *jwt.Service, bcryptCost int, logger *logrus.Logger) *AuthService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		admins:     admins,
		drivers:    drivers,
		jwtService: jwtService,
		phones:     validator.NewPhoneValidator(),
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// AdminLogin authenticates an admin. Express admins must also present their permanent code.
func (s *AuthService) AdminLogin(ctx context.Context, req *models.AdminLoginRequest) (*models.AdminLoginResponse, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, NewValidationError("email and password are required")
	}

	admin, err := s.admins.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if admin.Role == models.AdminRoleExpress {
		if admin.PermanentCode == nil ||
			subtle.ConstantTimeCompare([]byte(*admin.PermanentCode), []byte(strings.TrimSpace(req.PermanentCode))) != 1 {
			return nil, ErrInvalidCredentials
		}
	}

	token, err := s.jwtService.GenerateAccessToken(jwt.Identity{
		AccountID:   admin.ID,
		AccountType: jwt.AccountAdmin,
		Role:        string(admin.Role),
		ExpressID:   admin.ExpressID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"admin_id": admin.ID, "role": admin.Role}).Info("Admin logged in")

	return &models.AdminLoginResponse{
		Token:     token,
		ExpiresIn: int64(s.jwtService.Expiry().Seconds()),
		Admin:     admin,
	}, nil
}

// RegisterDriver creates a driver account and signs them in
func (s *AuthService) RegisterDriver(ctx context.Context, req *models.DriverRegisterRequest) (*models.DriverAuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewValidationError("name is required")
	}
	phone, err := s.phones.Validate(req.Phone)
	if err != nil {
		return nil, NewValidationError("phone: %s", err.Error())
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return nil, NewValidationError("email is not a valid address")
	}
	if len(req.Password) < minPasswordLength {
		return nil, NewValidationError("password must be at least %d characters", minPasswordLength)
	}
	license := strings.TrimSpace(req.LicenseNumber)
	if license == "" {
		return nil, NewValidationError("license_number is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	driver := &models.Driver{
		Name:          name,
		Phone:         phone,
		Email:         strings.ToLower(addr.Address),
		PasswordHash:  string(hash),
		LicenseNumber: license,
	}
	if err := s.drivers.Create(ctx, driver); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	s.logger.WithField("driver_id", driver.ID).Info("Driver registered")
	return s.driverSession(driver)
}

// DriverLogin authenticates a driver
func (s *AuthService) DriverLogin(ctx context.Context, req *models.DriverLoginRequest) (*models.DriverAuthResponse, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, NewValidationError("email and password are required")
	}

	driver, err := s.drivers.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(driver.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if driver.Status != "active" {
		return nil, ErrForbidden
	}

	return s.driverSession(driver)
}

func (s *AuthService) driverSession(driver *models.Driver) (*models.DriverAuthResponse, error) {
	token, err := s.jwtService.GenerateAccessToken(jwt.Identity{
		AccountID:   driver.ID,
		AccountType: jwt.AccountDriver,
		Role:        "driver",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &models.DriverAuthResponse{
		Token:     token,
		ExpiresIn: int64(s.jwtService.Expiry().Seconds()),
		Driver:    driver,
	}, nil
}
