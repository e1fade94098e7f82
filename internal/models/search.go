package models

// TripSearchParams filters scheduled trips. DepartureDate is YYYY-MM-DD.
type TripSearchParams struct {
	FromCity      string `form:"from_city"`
	ToCity        string `form:"to_city"`
	DepartureDate string `form:"departure_date"`
	NumSeats      int    `form:"num_seats"`
}

// CarSearchParams filters active private cars
type CarSearchParams struct {
	NumSeats int `form:"num_seats"`
}

// TripSearchResult is one bookable trip. AvailableSeats is nil when the trip
// has no ledger entry, which callers must treat as not bookable.
type TripSearchResult struct {
	TripID         int64  `json:"trip_id" db:"trip_id"`
	BusID          int64  `json:"bus_id" db:"bus_id"`
	DepartureDate  string `json:"departure_date" db:"departure_date"`
	DepartureTime  string `json:"departure_time" db:"departure_time"`
	PlateNumber    string `json:"plate_number" db:"plate_number"`
	SeatCount      int    `json:"seat_count" db:"seat_count"`
	BusType        string `json:"bus_type" db:"bus_type"`
	ExpressName    string `json:"express_name" db:"express_name"`
	FromCity       string `json:"from_city" db:"from_city"`
	ToCity         string `json:"to_city" db:"to_city"`
	PriceRWF       int64  `json:"price_rwf" db:"price_rwf"`
	AvailableSeats *int   `json:"available_seats" db:"-"`
}

// CarSearchResult is one active private car
type CarSearchResult struct {
	CarID          int64    `json:"car_id" db:"car_id"`
	DriverName     string   `json:"driver_name" db:"driver_name"`
	Phone          string   `json:"phone" db:"phone"`
	PlateNumber    string   `json:"plate_number" db:"plate_number"`
	CarType        string   `json:"car_type" db:"car_type"`
	SeatCount      int      `json:"seat_count" db:"seat_count"`
	Lat            *float64 `json:"lat,omitempty" db:"lat"`
	Lng            *float64 `json:"lng,omitempty" db:"lng"`
	AvailableSeats *int     `json:"available_seats" db:"-"`
}
