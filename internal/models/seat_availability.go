package models

import "time"

// SeatAvailability is the capacity ledger entry for one trip or car.
// booked_seats + locked_seats never exceeds total_seats.
type SeatAvailability struct {
	ID          int64      `json:"id" db:"id"`
	EntityType  EntityType `json:"entity_type" db:"entity_type"`
	EntityID    int64      `json:"entity_id" db:"entity_id"`
	TotalSeats  int        `json:"total_seats" db:"total_seats"`
	BookedSeats int        `json:"booked_seats" db:"booked_seats"`
	LockedSeats int        `json:"locked_seats" db:"locked_seats"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Available returns the number of seats that can still be locked
func (s *SeatAvailability) Available() int {
	return s.TotalSeats - s.BookedSeats - s.LockedSeats
}

// Ref returns the ledger key of the entry
func (s *SeatAvailability) Ref() EntityRef {
	return EntityRef{Type: s.EntityType, ID: s.EntityID}
}
