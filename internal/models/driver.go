package models

import "time"

// Driver is a registered private car driver
type Driver struct {
	ID            int64     `json:"driver_id" db:"driver_id"`
	Name          string    `json:"name" db:"name"`
	Phone         string    `json:"phone" db:"phone"`
	Email         string    `json:"email" db:"email"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	LicenseNumber string    `json:"license_number" db:"license_number"`
	Status        string    `json:"status" db:"status"`
	Lat           *float64  `json:"lat,omitempty" db:"lat"`
	Lng           *float64  `json:"lng,omitempty" db:"lng"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// PrivateCar is a car a driver offers seats in
type PrivateCar struct {
	ID          int64     `json:"car_id" db:"car_id"`
	DriverID    int64     `json:"driver_id" db:"driver_id"`
	PlateNumber string    `json:"plate_number" db:"plate_number"`
	CarType     string    `json:"car_type" db:"car_type"`
	SeatCount   int       `json:"seat_count" db:"seat_count"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// DriverRegisterRequest is the self-service driver sign up
type DriverRegisterRequest struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	LicenseNumber string `json:"license_number"`
}

// DriverLoginRequest authenticates a driver
type DriverLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DriverAuthResponse carries the driver token
type DriverAuthResponse struct {
	Token     string  `json:"token"`
	ExpiresIn int64   `json:"expires_in"`
	Driver    *Driver `json:"driver"`
}

// RegisterCarRequest adds a car to the driver's fleet
type RegisterCarRequest struct {
	PlateNumber string `json:"plate_number"`
	CarType     string `json:"car_type"`
	SeatCount   int    `json:"seat_count"`
}

// UpdateLocationRequest reports the driver's current position
type UpdateLocationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}
